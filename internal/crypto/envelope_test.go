package crypto_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuverse/visavault/internal/crypto"
)

func TestEncryptFile_RoundTrip(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name  string
		plain []byte
	}{
		{"short text", []byte("hello world")},
		{"empty file", []byte{}},
		{"binary", randomBytes(t, 4096)},
		{"large", randomBytes(t, 1<<20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, wrapped, err := provider.EncryptFile(tt.plain, "Str0ng!Pass99", salt)
			require.NoError(t, err)

			recovered, err := provider.DecryptFile(blob, wrapped, "Str0ng!Pass99", salt)
			require.NoError(t, err)
			assert.Equal(t, tt.plain, recovered)
		})
	}
}

func TestDecryptFile_WrongPassword(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	blob, wrapped, err := provider.EncryptFile([]byte("hello world"), "Str0ng!Pass99", salt)
	require.NoError(t, err)

	_, err = provider.DecryptFile(blob, wrapped, "wrong", salt)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestDecryptFile_WrongSalt(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)
	otherSalt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	blob, wrapped, err := provider.EncryptFile([]byte("payload"), "Str0ng!Pass99", salt)
	require.NoError(t, err)

	_, err = provider.DecryptFile(blob, wrapped, "Str0ng!Pass99", otherSalt)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestEncryptFile_FreshContentKey(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	plain := []byte("same input twice")

	blob1, wrapped1, err := provider.EncryptFile(plain, "Str0ng!Pass99", salt)
	require.NoError(t, err)

	blob2, wrapped2, err := provider.EncryptFile(plain, "Str0ng!Pass99", salt)
	require.NoError(t, err)

	// A fresh random content key per call means ciphertext is never
	// deterministic across calls.
	assert.NotEqual(t, blob1, blob2)
	assert.NotEqual(t, wrapped1, wrapped2)
}

func TestDecryptFile_TamperedBlob(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	blob, wrapped, err := provider.EncryptFile([]byte("sensitive"), "Str0ng!Pass99", salt)
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0xFF

	_, err = provider.DecryptFile(blob, wrapped, "Str0ng!Pass99", salt)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestDecryptFile_TamperedWrappedKey(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	blob, wrapped, err := provider.EncryptFile([]byte("sensitive"), "Str0ng!Pass99", salt)
	require.NoError(t, err)

	wrapped[len(wrapped)-1] ^= 0xFF

	// A corrupted wrapped key must be indistinguishable from a wrong
	// password.
	_, err = provider.DecryptFile(blob, wrapped, "Str0ng!Pass99", salt)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
}

func TestDecryptFile_TruncatedInputs(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	blob, wrapped, err := provider.EncryptFile([]byte("sensitive"), "Str0ng!Pass99", salt)
	require.NoError(t, err)

	tests := []struct {
		name    string
		blob    []byte
		wrapped []byte
	}{
		{"both too short", []byte("x"), []byte("y")},
		{"blob below nonce size", blob[:10], wrapped},
		{"wrapped key below nonce size", blob, wrapped[:10]},
		{"empty blob", nil, wrapped},
		{"empty wrapped key", blob, nil},
	}

	// Truncation is just another form of corruption; it must read exactly
	// like a wrong password.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.DecryptFile(tt.blob, tt.wrapped, "Str0ng!Pass99", salt)
			assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
		})
	}
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}
