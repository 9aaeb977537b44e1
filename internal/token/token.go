// Package token issues and verifies the JWT bearer tokens employees use.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUnexpectedSigningMethod is returned when the signing method is
	// not the HMAC family this service issues.
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")

	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
)

// EmployeeClaims is the JWT claims struct for an employee.
type EmployeeClaims struct {
	jwt.RegisteredClaims
}

// Manager issues and verifies JWT tokens.
type Manager struct {
	secretKey     string
	tokenDuration time.Duration
}

// NewManager creates a new Manager.
func NewManager(secretKey string, tokenDuration time.Duration) *Manager {
	return &Manager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// Generate issues a new token carrying the employee ID.
func (m *Manager) Generate(employeeID string) (string, error) {
	now := time.Now()
	claims := EmployeeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		},
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signedToken, nil
}

// Verify checks the signature and expiry of the given token and returns the
// employee ID it carries.
func (m *Manager) Verify(tokenString string) (string, error) {
	claims := &EmployeeClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: %w", token.Method.Alg(), ErrUnexpectedSigningMethod)
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
