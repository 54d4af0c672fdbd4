// Package store persists users, documents, journey progress, and
// notifications in a relational database via GORM.
package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/models"
)

// Store wraps the database handle.
type Store struct {
	db     *gorm.DB
	logger *events.Logger
}

// New opens the database and runs migrations. DSN is a SQLite file path,
// or ":memory:" for tests.
func New(dsn string, log *events.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory SQLite database exists per connection; pin the pool to
	// one connection so every session sees the same data.
	if dsn == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Document{},
		&models.StageProgress{},
		&models.Notification{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{
		db:     db,
		logger: log.WithField("component", "store"),
	}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
