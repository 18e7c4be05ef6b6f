package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("super-secret"), time.Hour)

	tok, err := iss.Issue("user-123", "ana@x.com")
	require.NoError(t, err)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ana@x.com", claims.Email)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestIssue_UsesUserIdClaimName(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("k"), time.Hour)
	tok, err := iss.Issue("42", "a@b.c")
	require.NoError(t, err)

	m := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, m)
	require.NoError(t, err)
	assert.Equal(t, "42", m["userId"])
	assert.NotContains(t, m, "id")
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("secret"), time.Minute)
	start := time.Now()
	iss.now = func() time.Time { return start }

	tok, err := iss.Issue("u1", "u1@x.com")
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.Verify(tok)
	assert.True(t, errors.Is(err, common.ErrTokenExpired), "got %v", err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer([]byte("right-secret"), time.Hour).Issue("u2", "u2@x.com")
	require.NoError(t, err)

	_, err = NewIssuer([]byte("wrong-secret"), time.Hour).Verify(tok)
	assert.True(t, errors.Is(err, common.ErrTokenBadSignature), "got %v", err)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("k"), time.Hour)
	for _, in := range []string{"", "not.a.jwt", "garbage"} {
		_, err := iss.Verify(in)
		assert.True(t, errors.Is(err, common.ErrTokenMalformed), "input %q: got %v", in, err)
	}
}

func TestVerify_MissingUserIDIsMalformed(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    "legacy-7",
		"email": "a@b.c",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewIssuer(secret, time.Hour).Verify(tok)
	assert.True(t, errors.Is(err, common.ErrTokenMalformed), "got %v", err)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"userId": "u",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewIssuer(secret, time.Hour).Verify(tok)
	assert.True(t, errors.Is(err, common.ErrTokenBadSignature), "got %v", err)
}
