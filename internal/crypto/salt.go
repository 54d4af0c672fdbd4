package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// GenerateSalt returns a fresh 16-byte random KDF salt. Generated once per
// user on first upload; the store layer guarantees it is never replaced.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// EncodeSalt encodes a salt for storage on the user record.
func EncodeSalt(salt []byte) string {
	return base64.StdEncoding.EncodeToString(salt)
}

// DecodeSalt reverses EncodeSalt.
func DecodeSalt(encoded string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}
	return salt, nil
}
