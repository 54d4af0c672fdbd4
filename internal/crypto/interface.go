// Package crypto implements the zero-knowledge document encryption core.
//
// Files are envelope-encrypted: each upload gets a fresh random content key,
// the file bytes are sealed under that key, and the content key itself is
// sealed under a key-wrapping key derived from the user's password and a
// per-user salt. The server stores only the wrapped key and the encrypted
// blob; without the live password neither is recoverable.
package crypto

// Provider defines the interface for the password-gated encryption core.
type Provider interface {
	// DeriveKey derives a key-wrapping key from a password and per-user salt.
	DeriveKey(password string, salt []byte) ([]byte, error)

	// EncryptFile envelope-encrypts file bytes, returning the encrypted
	// blob and the wrapped content key.
	EncryptFile(plaintext []byte, password string, salt []byte) (blob, wrappedKey []byte, err error)

	// DecryptFile reverses EncryptFile. Any authentication failure,
	// including a wrong password, surfaces as ErrDecryptionFailed.
	DecryptFile(blob, wrappedKey []byte, password string, salt []byte) ([]byte, error)
}
