package utils

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	secretMu  sync.RWMutex
	jwtSecret []byte
)

var ErrMissingSecret = errors.New("jwt secret is not configured")

// SetJWTSecret installs the HMAC key used to sign and verify tokens.
func SetJWTSecret(secret string) {
	secretMu.Lock()
	jwtSecret = []byte(secret)
	secretMu.Unlock()
}

func secret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return jwtSecret
}

// GenerateJWT issues an HS256 token for the given user. Tokens are issued by the
// storefront auth service; this exists for tooling and tests.
func GenerateJWT(userID, role string, ttl time.Duration) (string, error) {
	key := secret()
	if len(key) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func ParseJWT(tokenString string) (*Claims, error) {
	key := secret()
	if len(key) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
