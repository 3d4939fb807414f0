// Package auth implements account credentials and session tokens.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rosterkeeper/internal/common"
)

// Claims carries the standard JWT claims plus the authenticated account id.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string
}

// GenerateToken signs an HS256 token for accountID valid for validity.
func GenerateToken(accountID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		AccountID: accountID,
	})

	return token.SignedString(secretKey)
}

// AccountIDFromToken verifies tokenString and extracts the account id.
func AccountIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.AccountID, nil
}
