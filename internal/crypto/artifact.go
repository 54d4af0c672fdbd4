package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
)

// artifactPrefix tags encrypted artifact payloads. Payloads without it are
// legacy plaintext written before artifact encryption existed.
var artifactPrefix = []byte("vvenc:1:")

// Artifact codec errors.
var (
	ErrMissingSecret   = errors.New("artifact secret not configured")
	ErrArtifactCorrupt = errors.New("artifact payload corrupt")
)

// ArtifactCodec encrypts derived artifacts (extracted text, AI output)
// under a process-wide secret. This is at-rest protection against storage
// compromise only; it is not zero-knowledge, since the operator holds the
// secret. Constructed explicitly and injected so tests can use distinct
// secrets.
type ArtifactCodec struct {
	key []byte
}

// NewArtifactCodec derives the codec key from an operator-supplied secret.
// An empty secret is a configuration error; the process must refuse to
// start rather than store artifacts in the clear.
func NewArtifactCodec(secret string) (*ArtifactCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	sum := sha256.Sum256([]byte(secret))
	return &ArtifactCodec{key: sum[:]}, nil
}

// Encrypt seals an artifact payload and prepends the version prefix.
func (c *ArtifactCodec) Encrypt(data []byte) ([]byte, error) {
	sealed, err := EncryptData(data, c.key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(artifactPrefix)+len(sealed))
	out = append(out, artifactPrefix...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt opens an artifact payload. Payloads without the version prefix
// are returned unchanged (legacy plaintext passthrough). A prefixed payload
// that fails to open is corrupt: this data is never password-gated, so
// failure cannot mean wrong credentials.
func (c *ArtifactCodec) Decrypt(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, artifactPrefix) {
		return data, nil
	}

	plain, err := DecryptData(data[len(artifactPrefix):], c.key)
	if err != nil {
		return nil, ErrArtifactCorrupt
	}
	return plain, nil
}
