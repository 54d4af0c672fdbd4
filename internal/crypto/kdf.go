package crypto

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

const (
	// Key sizes
	KeySize   = 32 // AES-256
	NonceSize = 12 // GCM standard
	TagSize   = 16 // GCM tag

	// SaltSize is the per-user KDF salt length.
	SaltSize = 16

	// DefaultIterations is the PBKDF2 work factor.
	DefaultIterations = 100000
)

// Errors
var (
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidKey        = errors.New("invalid key size")
	ErrInvalidSalt       = errors.New("invalid salt size")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
)

// provider is the production Provider implementation.
type provider struct {
	iterations int
}

// NewProvider creates a crypto provider with the default KDF work factor.
func NewProvider() Provider {
	return &provider{iterations: DefaultIterations}
}

// NewProviderWithIterations creates a provider with a custom PBKDF2
// iteration count. Counts below DefaultIterations are only appropriate
// for tests.
func NewProviderWithIterations(iterations int) Provider {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &provider{iterations: iterations}
}

// DeriveKey derives a 32-byte key-wrapping key via PBKDF2-HMAC-SHA256.
// The password is NFKC-normalized first so that visually identical
// passwords typed on different platforms derive the same key.
func (p *provider) DeriveKey(password string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}

	normalized := norm.NFKC.String(password)

	key := pbkdf2.Key([]byte(normalized), salt, p.iterations, KeySize, sha256.New)
	return key, nil
}
