package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/stuverse/visavault/internal/crypto"
	"github.com/stuverse/visavault/internal/models"
)

// CreateUser inserts a new user. Returns models.ErrEmailTaken when the
// email is already registered.
func (s *Store) CreateUser(user *models.User) error {
	err := s.db.Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			return models.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser fetches a user by ID.
func (s *Store) GetUser(id string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// EnsureSalt returns the user's KDF salt, creating and persisting one on
// first use. The write is a conditional UPDATE guarded on the salt still
// being empty, so two racing first uploads converge on a single salt: the
// loser's candidate is discarded and the stored value re-read.
func (s *Store) EnsureSalt(userID string) ([]byte, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if user.KEKSalt != "" {
		return crypto.DecodeSalt(user.KEKSalt)
	}

	candidate, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}

	res := s.db.Model(&models.User{}).
		Where("id = ? AND (kek_salt IS NULL OR kek_salt = '')", userID).
		Update("kek_salt", crypto.EncodeSalt(candidate))
	if res.Error != nil {
		return nil, fmt.Errorf("persist salt: %w", res.Error)
	}

	if res.RowsAffected == 1 {
		s.logger.WithField("user_id", userID).Info("Generated encryption salt")
		return candidate, nil
	}

	// Lost the race; another request persisted a salt first.
	user, err = s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user.KEKSalt == "" {
		return nil, errors.New("salt missing after concurrent create")
	}
	return crypto.DecodeSalt(user.KEKSalt)
}

// CreateSession stores a login session.
func (s *Store) CreateSession(session *models.Session) error {
	if err := s.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession fetches a session by token. Expired sessions are treated as
// absent and removed.
func (s *Store) GetSession(token string) (*models.Session, error) {
	var session models.Session
	err := s.db.First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(time.Now()) {
		_ = s.db.Delete(&session).Error
		return nil, models.ErrNotAuthenticated
	}

	return &session, nil
}

// DeleteSession removes a session (logout).
func (s *Store) DeleteSession(token string) error {
	return s.db.Delete(&models.Session{}, "token = ?", token).Error
}
