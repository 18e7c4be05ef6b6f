package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	ok, err := VerifyPassword("secret1", h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("secret2", h)
	require.NoError(t, err, "mismatch is not an error")
	assert.False(t, ok)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	ok, err := VerifyPassword("secret1", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}
