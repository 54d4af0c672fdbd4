// Package notify persists user notifications and pushes them live to
// connected websocket clients.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/models"
	"github.com/stuverse/visavault/internal/store"
)

// client wraps a websocket connection with a write lock. gorilla/websocket
// allows only one concurrent writer per connection, so every push must
// hold the lock.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Service fans notifications out to a user's live connections and records
// them for later retrieval.
type Service struct {
	store  *store.Store
	logger *events.Logger

	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]*client // userID -> connections
}

// NewService creates a notify service.
func NewService(st *store.Store, logger *events.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.WithField("service", "notify"),
		conns:  make(map[string]map[*websocket.Conn]*client),
	}
}

// Notify persists a notification and pushes it to the user's connections.
// Push failures only drop the live copy; the persisted row remains.
func (s *Service) Notify(userID string, level models.NotificationLevel, title, body string) error {
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Level:     level,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateNotification(n); err != nil {
		return err
	}

	s.push(userID, n)
	return nil
}

// List returns a user's notifications.
func (s *Service) List(userID string, unreadOnly bool) ([]models.Notification, error) {
	return s.store.ListNotifications(userID, unreadOnly)
}

// MarkRead marks all of a user's notifications read.
func (s *Service) MarkRead(userID string) error {
	return s.store.MarkNotificationsRead(userID)
}

// Register attaches a websocket connection for live delivery. The caller
// owns the connection's read loop and must call Unregister when it ends.
func (s *Service) Register(userID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conns[userID] == nil {
		s.conns[userID] = make(map[*websocket.Conn]*client)
	}
	s.conns[userID][conn] = &client{conn: conn}

	s.logger.WithField("user_id", userID).Debug("Websocket registered")
}

// Unregister detaches a connection.
func (s *Service) Unregister(userID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(s.conns, userID)
		}
	}
}

// ConnectionCount reports live connections for a user.
func (s *Service) ConnectionCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns[userID])
}

func (s *Service) push(userID string, n *models.Notification) {
	s.mu.RLock()
	targets := make([]*client, 0, len(s.conns[userID]))
	for _, cl := range s.conns[userID] {
		targets = append(targets, cl)
	}
	s.mu.RUnlock()

	for _, cl := range targets {
		if err := cl.writeJSON(n); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Debug("Websocket push failed")
			s.Unregister(userID, cl.conn)
			_ = cl.conn.Close()
		}
	}
}
