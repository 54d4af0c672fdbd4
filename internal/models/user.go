package models

import (
	"time"
)

// User is a registered student account.
type User struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// PasswordHash is the bcrypt hash used for login. It is independent of
	// the document-encryption path, which consumes the live password only.
	PasswordHash string `json:"-"`

	// KEKSalt is the per-user key-derivation salt, base64 encoded. Empty
	// until the user's first document upload; immutable afterwards, since
	// replacing it would orphan every wrapped file key the user owns.
	KEKSalt string `json:"-"`
}

// Session is an opaque login token.
type Session struct {
	Token     string    `gorm:"primaryKey;type:text" json:"token"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
