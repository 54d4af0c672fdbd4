// Package server exposes the HTTP and websocket API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/net/netutil"

	"github.com/stuverse/visavault/internal/config"
	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/services/auth"
	"github.com/stuverse/visavault/internal/services/documents"
	"github.com/stuverse/visavault/internal/services/journey"
	"github.com/stuverse/visavault/internal/services/notify"
)

// Server wires services to HTTP routes.
type Server struct {
	cfg       *config.ServerConfig
	engine    *gin.Engine
	auth      *auth.Service
	documents *documents.Service
	journey   *journey.Service
	notify    *notify.Service
	logger    *events.Logger
	upgrader  websocket.Upgrader
}

// New creates a server with all routes registered.
func New(cfg *config.ServerConfig, authSvc *auth.Service, docSvc *documents.Service,
	journeySvc *journey.Service, notifySvc *notify.Service, logger *events.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:       cfg,
		engine:    gin.New(),
		auth:      authSvc,
		documents: docSvc,
		journey:   journeySvc,
		notify:    notifySvc,
		logger:    logger.WithField("component", "server"),
		upgrader:  websocket.Upgrader{},
	}

	s.engine.Use(gin.Recovery())
	s.engine.MaxMultipartMemory = cfg.MaxUploadBytes

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")

	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.requireAuth())
	authed.POST("/logout", s.handleLogout)

	authed.POST("/documents", s.handleUpload)
	authed.GET("/documents", s.handleListDocuments)
	authed.POST("/documents/:id/download", s.handleDownload)
	authed.DELETE("/documents/:id", s.handleDeleteDocument)
	authed.GET("/documents/:id/extraction", s.handleExtraction)

	authed.GET("/journey", s.handleJourney)
	authed.POST("/journey/:slug/complete", s.handleCompleteStage)

	authed.GET("/notifications", s.handleListNotifications)
	authed.POST("/notifications/read", s.handleMarkNotificationsRead)
	authed.GET("/notifications/ws", s.handleNotificationSocket)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled. The listener is capped at the
// configured connection limit.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	listener = netutil.LimitListener(listener, s.cfg.MaxConnections)

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	s.logger.WithField("addr", s.cfg.Addr).Info("Server listening")

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
