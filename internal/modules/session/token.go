// README: Signs and verifies HS256 session tokens carrying the user's email.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carpool/internal/types"
)

// ErrUnauthorized covers every token or session that cannot be honored.
var ErrUnauthorized = errors.New("invalid or expired session")

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for email with a fresh session id.
func (t *Tokens) Issue(email types.Email) (string, Claims, error) {
	now := t.now()
	claims := Claims{
		Email: string(email),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        types.NewID().String(),
			Subject:   string(email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

func (t *Tokens) Parse(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid || claims.ID == "" || claims.Email == "" {
		return Claims{}, ErrUnauthorized
	}
	return claims, nil
}
