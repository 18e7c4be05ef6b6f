// Package auth issues and verifies the HS256 bearer tokens that carry a
// session's user identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload. UserID is the only identity authority;
// Email is informational.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens with a shared secret.
type Issuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewIssuer(secret []byte, validity time.Duration) *Issuer {
	return &Issuer{secret: secret, validity: validity, now: time.Now}
}

// Issue returns a signed token for userID valid for the configured duration.
func (i *Issuer) Issue(userID, email string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}
	return s, nil
}

// Verify parses tokenString and returns its claims. Failures map to
// common.ErrTokenMalformed, common.ErrTokenExpired or
// common.ErrTokenBadSignature.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrTokenBadSignature
		default:
			return nil, fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
		}
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId claim", common.ErrTokenMalformed)
	}
	return claims, nil
}
