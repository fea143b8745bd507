// Package auth provides JWT issuing/verification and password hashing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/linguachat/linguachat/internal/normalize"
)

// JWTManager signs and validates the JWT tokens used by the API. It holds
// one or more HMAC keys indexed by kid so signing keys can be rotated
// without invalidating previously issued tokens.
type JWTManager struct {
	keys      map[string]string
	activeKID string
	duration  time.Duration
}

// Claims is the custom JWT payload (user id + email).
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWTManager returns a manager with a single signing key.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return NewJWTManagerFromKeys(map[string]string{"default": secretKey}, "default", duration)
}

// NewJWTManagerFromKeys returns a manager that signs with the active kid
// and verifies against every supplied key. If activeKID is empty an
// arbitrary key is picked.
func NewJWTManagerFromKeys(keys map[string]string, activeKID string, duration time.Duration) *JWTManager {
	if activeKID == "" {
		for kid := range keys {
			activeKID = kid
			break
		}
	}
	return &JWTManager{keys: keys, activeKID: activeKID, duration: duration}
}

// GenerateToken issues a signed JWT for a user. The email claim is stored
// normalized so identity comparisons downstream stay consistent.
func (m *JWTManager) GenerateToken(userID, email string) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.duration)

	claims := &Claims{
		UserID: userID,
		Email:  normalize.Email(email),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = m.activeKID

	secret, ok := m.keys[m.activeKID]
	if !ok {
		return "", time.Time{}, fmt.Errorf("no signing key for kid %q", m.activeKID)
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims. Tokens
// signed with any known kid verify, not just the active one.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			kid = m.activeKID
		}
		secret, ok := m.keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown signing key id %q", kid)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
