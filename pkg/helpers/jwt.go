package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager issues and verifies stateless HS256 session tokens.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	Issuer string

	now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		Secret: []byte(secret),
		TTL:    ttl,
		Issuer: issuer,
		now:    time.Now,
	}
}

// WithClock swaps the time source, used by tests to mint expired tokens.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID string) (string, time.Time, error) {
	if len(m.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.Issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// ParseAccessToken checks signature, algorithm and expiry. It never touches
// the network or the store.
func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, errors.New("token subject mismatch")
	}
	return claims, nil
}
