// Package app assembles configuration, stores, and services into a
// runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/stuverse/visavault/internal/config"
	"github.com/stuverse/visavault/internal/crypto"
	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/server"
	"github.com/stuverse/visavault/internal/services/auth"
	"github.com/stuverse/visavault/internal/services/documents"
	"github.com/stuverse/visavault/internal/services/journey"
	"github.com/stuverse/visavault/internal/services/notify"
	"github.com/stuverse/visavault/internal/storage"
	"github.com/stuverse/visavault/internal/store"
)

// App holds the wired application.
type App struct {
	Auth      *auth.Service
	Documents *documents.Service
	Journey   *journey.Service
	Notify    *notify.Service
	Server    *server.Server

	config *config.Config
	logger *events.Logger
	store  *store.Store
}

// New wires the application from config. The artifact codec is constructed
// here so a missing secret aborts startup before anything listens.
func New(ctx context.Context, cfg *config.Config, logger *events.Logger) (*App, error) {
	codec, err := crypto.NewArtifactCodec(cfg.Crypto.ArtifactSecret)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Database.DSN, logger)
	if err != nil {
		return nil, err
	}

	objects, err := newObjectStore(ctx, &cfg.Objects, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	provider := crypto.NewProvider()
	if cfg.Crypto.KDFIterations > 0 {
		provider = crypto.NewProviderWithIterations(cfg.Crypto.KDFIterations)
	}

	authSvc := auth.NewService(st, &cfg.Auth, logger)
	notifySvc := notify.NewService(st, logger)
	journeySvc := journey.NewService(st, notifySvc, logger)
	docSvc := documents.NewService(provider, st, objects, codec, nil, logger)

	srv := server.New(&cfg.Server, authSvc, docSvc, journeySvc, notifySvc, logger)

	return &App{
		Auth:      authSvc,
		Documents: docSvc,
		Journey:   journeySvc,
		Notify:    notifySvc,
		Server:    srv,
		config:    cfg,
		logger:    logger,
		store:     st,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() error {
	return a.store.Close()
}

func newObjectStore(ctx context.Context, cfg *config.ObjectsConfig, logger *events.Logger) (storage.ObjectStore, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinioStore(ctx, cfg, logger)
	case "local":
		return storage.NewLocalStore(cfg.LocalDir, logger)
	default:
		return nil, fmt.Errorf("unknown object storage backend: %s", cfg.Backend)
	}
}
