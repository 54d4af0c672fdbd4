// Package auth handles registration, login, and session verification.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stuverse/visavault/internal/config"
	"github.com/stuverse/visavault/internal/events"
	"github.com/stuverse/visavault/internal/models"
	"github.com/stuverse/visavault/internal/store"
)

// ErrInvalidCredentials is returned for a failed login. It deliberately
// does not say whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service handles account operations.
type Service struct {
	store      *store.Store
	cfg        *config.AuthConfig
	logger     *events.Logger
	bcryptCost int
}

// NewService creates an auth service.
func NewService(st *store.Store, cfg *config.AuthConfig, logger *events.Logger) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		store:      st,
		cfg:        cfg,
		logger:     logger.WithField("service", "auth"),
		bcryptCost: cost,
	}
}

// Register creates a new account. The email's domain must end with one of
// the configured university domains.
func (s *Service) Register(email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.checkEmailDomain(email); err != nil {
		return nil, err
	}

	if password == "" {
		return nil, errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.cfg.SessionTTL),
	}
	if err := s.store.CreateSession(session); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return session, nil
}

// Logout invalidates a session token.
func (s *Service) Logout(token string) error {
	return s.store.DeleteSession(token)
}

// Authenticate resolves a session token to a user ID.
func (s *Service) Authenticate(token string) (string, error) {
	if token == "" {
		return "", models.ErrNotAuthenticated
	}
	session, err := s.store.GetSession(token)
	if err != nil {
		return "", err
	}
	return session.UserID, nil
}

// VerifyPassword checks the live password against the user's login hash.
// Upload handlers call this before encrypting, so a mistyped password is
// rejected instead of silently producing an undecryptable document.
func (s *Service) VerifyPassword(userID, password string) error {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Service) checkEmailDomain(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: malformed address", models.ErrEmailNotAllowed)
	}

	domain := email[at+1:]
	for _, allowed := range s.cfg.AllowedEmailDomains {
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			return nil
		}
	}
	return models.ErrEmailNotAllowed
}
