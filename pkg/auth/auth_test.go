package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sapphiretrails/backoffice/pkg/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := auth.NewAccessToken(42, "ops", "", "superadmin", "s3cret", time.Minute)
	require.NoError(t, err)

	claims, err := auth.Parse(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.Sub)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, "superadmin", claims.Role)

	_, err = auth.Parse(tok, "other")
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	tok, err := auth.NewAccessToken(1, "ops", "", "admin", "s3cret", -time.Minute)
	require.NoError(t, err)
	_, err = auth.Parse(tok, "s3cret")
	require.Error(t, err)
	assert.True(t, auth.IsExpired(err))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := auth.VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, auth.NeedsRehash(hash))
}

func TestLegacyBcryptHashes(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("legacy"), bcrypt.MinCost)
	require.NoError(t, err)
	php := "$2y$" + strings.TrimPrefix(string(raw), "$2a$")

	for _, h := range []string{string(raw), php} {
		ok, err := auth.VerifyPassword("legacy", h)
		require.NoError(t, err)
		assert.True(t, ok, h)

		ok, err = auth.VerifyPassword("nope", h)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, auth.NeedsRehash(h))
	}
}

func TestRandomSecret(t *testing.T) {
	a, err := auth.RandomSecret(16)
	require.NoError(t, err)
	b, err := auth.RandomSecret(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
