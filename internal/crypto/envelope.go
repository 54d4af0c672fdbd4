package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// EncryptFile envelope-encrypts file bytes for one document.
//
// A fresh 32-byte content key is generated, the file is sealed under it,
// and the content key is sealed under the key-wrapping key derived from
// (password, salt). The content key buffer is zeroed before return; only
// the blob and the wrapped key leave this function.
func (p *provider) EncryptFile(plaintext []byte, password string, salt []byte) ([]byte, []byte, error) {
	wrappingKey, err := p.DeriveKey(password, salt)
	if err != nil {
		return nil, nil, err
	}

	contentKey := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, contentKey); err != nil {
		return nil, nil, fmt.Errorf("generate content key: %w", err)
	}
	defer zero(contentKey)

	blob, err := EncryptData(plaintext, contentKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: seal content: %v", ErrEncryptionFailed, err)
	}

	wrappedKey, err := EncryptData(contentKey, wrappingKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: wrap key: %v", ErrEncryptionFailed, err)
	}

	return blob, wrappedKey, nil
}

// DecryptFile recovers file bytes from an envelope-encrypted blob.
//
// Any failure in either step, including malformed or truncated inputs,
// reports the same ErrDecryptionFailed, so a caller cannot tell a wrong
// password from corrupted ciphertext. Callers must surface it as
// "incorrect password or corrupted data".
func (p *provider) DecryptFile(blob, wrappedKey []byte, password string, salt []byte) ([]byte, error) {
	wrappingKey, err := p.DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}

	contentKey, err := DecryptData(wrappedKey, wrappingKey)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	defer zero(contentKey)

	plaintext, err := DecryptData(blob, contentKey)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// zero overwrites key material before the buffer is released. Best effort
// in a garbage-collected runtime, but it shrinks the window where an
// unwrapped key sits in memory.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
