package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuverse/visavault/internal/crypto"
)

// Tests use a reduced iteration count to keep the suite fast; the default
// work factor is asserted separately in security_test.go.
const testIterations = 1000

func TestProvider_DeriveKey(t *testing.T) {
	provider := crypto.NewProviderWithIterations(testIterations)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)

	t.Run("deterministic", func(t *testing.T) {
		key1, err := provider.DeriveKey("Str0ng!Pass99", salt)
		require.NoError(t, err)
		assert.Len(t, key1, crypto.KeySize)

		key2, err := provider.DeriveKey("Str0ng!Pass99", salt)
		require.NoError(t, err)
		assert.Equal(t, key1, key2)
	})

	t.Run("different salts yield different keys", func(t *testing.T) {
		otherSalt, err := crypto.GenerateSalt()
		require.NoError(t, err)

		key1, err := provider.DeriveKey("Str0ng!Pass99", salt)
		require.NoError(t, err)

		key2, err := provider.DeriveKey("Str0ng!Pass99", otherSalt)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("different passwords yield different keys", func(t *testing.T) {
		key1, err := provider.DeriveKey("password-one", salt)
		require.NoError(t, err)

		key2, err := provider.DeriveKey("password-two", salt)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("unicode password", func(t *testing.T) {
		key, err := provider.DeriveKey("пароль123", salt)
		require.NoError(t, err)
		assert.Len(t, key, crypto.KeySize)
	})

	t.Run("wrong salt size rejected", func(t *testing.T) {
		_, err := provider.DeriveKey("Str0ng!Pass99", []byte("short"))
		assert.ErrorIs(t, err, crypto.ErrInvalidSalt)
	})
}

func TestSaltEncoding(t *testing.T) {
	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)
	require.Len(t, salt, crypto.SaltSize)

	encoded := crypto.EncodeSalt(salt)
	decoded, err := crypto.DecodeSalt(encoded)
	require.NoError(t, err)

	assert.Equal(t, salt, decoded)
}

func TestDecodeSalt_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "!!not-base64!!"},
		{"wrong length", "c2hvcnQ="}, // "short"
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := crypto.DecodeSalt(tt.encoded)
			assert.Error(t, err)
		})
	}
}

func TestGenerateSalt_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		salt, err := crypto.GenerateSalt()
		require.NoError(t, err)

		encoded := crypto.EncodeSalt(salt)
		assert.False(t, seen[encoded], "duplicate salt generated")
		seen[encoded] = true
	}
}
