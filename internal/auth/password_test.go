package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "simple", plaintext: "secret1"},
		{name: "empty", plaintext: ""},
		{name: "unicode", plaintext: "pässwörd-日本語"},
		{name: "spaces", plaintext: "  padded password  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := HashPassword(tt.plaintext)
			require.NoError(t, err)

			assert.True(t, CheckPassword(tt.plaintext, digest))
			assert.False(t, CheckPassword(tt.plaintext+"x", digest))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("secret1")
	require.NoError(t, err)
	second, err := HashPassword("secret1")
	require.NoError(t, err)

	//same input must never yield the same digest twice
	assert.NotEqual(t, first, second)

	//both still verify
	assert.True(t, CheckPassword("secret1", first))
	assert.True(t, CheckPassword("secret1", second))
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	//a garbage digest is a mismatch, not a panic
	assert.False(t, CheckPassword("secret1", "not-a-bcrypt-digest"))
	assert.False(t, CheckPassword("secret1", ""))
}
