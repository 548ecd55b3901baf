package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	passwords := []string{"Secret123", "p", "пароль", "with spaces and symbols !@#$%^&*()"}

	for _, p := range passwords {
		h, err := HashPassword(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, h)
		assert.True(t, CheckPassword(h, p), "password %q must verify", p)
		assert.False(t, CheckPassword(h, p+"x"))
		assert.False(t, CheckPassword(h, strings.ToUpper(p)+"!"))
	}
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("Secret123")
	require.NoError(t, err)
	h2, err := HashPassword("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_Rejects(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, CheckPassword("not-a-bcrypt-hash", "Secret123"))
}
