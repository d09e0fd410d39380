package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHmacSHA256(t *testing.T) {
	t.Run("deterministic for same key and message", func(t *testing.T) {
		a := HmacSHA256("key", "message")
		b := HmacSHA256("key", "message")
		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
	})

	t.Run("differs for different keys", func(t *testing.T) {
		a := HmacSHA256("key-one", "message")
		b := HmacSHA256("key-two", "message")
		assert.NotEqual(t, a, b)
	})
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc", "abc"))
	assert.False(t, ConstantTimeEqual("abc", "abd"))
	assert.False(t, ConstantTimeEqual("abc", "abcd"))
	assert.True(t, ConstantTimeEqual("", ""))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("swordfish")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("swordfish", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(32)
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
