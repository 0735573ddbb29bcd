// Package session issues and verifies the service's own bearer tokens.
// The signing secret is independent from the credential encryption key.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is how long an issued session token stays valid.
const TTL = time.Hour

var (
	// ErrExpired means the token was once valid but its lifetime passed.
	ErrExpired = errors.New("session token expired")
	// ErrInvalid means the token failed signature or claim validation.
	ErrInvalid = errors.New("invalid session token")
)

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint `json:"userId"`
}

// Manager signs and verifies session tokens with HMAC-SHA256.
type Manager struct {
	secret []byte
	now    func() time.Time
}

// NewManager builds a Manager from the session signing secret.
func NewManager(secret []byte) *Manager {
	return &Manager{secret: secret, now: time.Now}
}

// Issue creates a signed session token bound to userID.
func (m *Manager) Issue(userID uint) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify validates tokenString and returns the bound user id.
func (m *Manager) Verify(tokenString string) (uint, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalid
	}
	return claims.UserID, nil
}
