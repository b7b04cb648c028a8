// Package auth signs and parses the session tokens handed to clients. A token
// names a server-side session and the account it is bound to; it carries no
// credential material.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the registered claims plus the bound account. The session id
// travels in the standard "jti" claim.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64 `json:"account_id"`
}

// SessionID returns the session id carried by the token.
func (c *Claims) SessionID() string {
	return c.ID
}

func GenerateToken(sessionID string, accountID int64, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AccountID: accountID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry. It returns
// common.ErrTokenExpired for an expired token and common.ErrInvalidToken for
// anything else that fails verification.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	return parse(tokenString, secretKey)
}

// ParseTokenIgnoringExpiry verifies only the signature. Logout uses it so an
// expired session can still be cleaned up.
func ParseTokenIgnoringExpiry(tokenString string, secretKey []byte) (*Claims, error) {
	return parse(tokenString, secretKey, jwt.WithoutClaimsValidation())
}

func parse(tokenString string, secretKey []byte, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
