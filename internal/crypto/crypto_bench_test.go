package crypto_test

import (
	"testing"

	"github.com/stuverse/visavault/internal/crypto"
)

func BenchmarkDeriveKey(b *testing.B) {
	provider := crypto.NewProvider()
	salt, _ := crypto.GenerateSalt()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = provider.DeriveKey("Str0ng!Pass99", salt)
	}
}

func BenchmarkEncryptFile(b *testing.B) {
	provider := crypto.NewProviderWithIterations(testIterations)
	salt, _ := crypto.GenerateSalt()
	data := make([]byte, 1<<20)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = provider.EncryptFile(data, "Str0ng!Pass99", salt)
	}
}
