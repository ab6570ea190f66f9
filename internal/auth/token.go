package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/starford/draftdeck/internal/apperr"
)

// Tokens issues and parses HMAC-signed JWT access tokens whose subject is
// the user id.
type Tokens struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer. algorithm is HS256, HS384 or HS512.
func NewTokens(secret, algorithm string, ttl time.Duration) (*Tokens, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: unsupported algorithm %q", algorithm)
	}
	return &Tokens{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for userID.
func (t *Tokens) Issue(userID int64) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its user id. Any failure wraps
// apperr.ErrUnauthorized.
func (t *Tokens) Parse(token string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return 0, fmt.Errorf("auth: %w: %w", apperr.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return 0, fmt.Errorf("auth: invalid token: %w", apperr.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: subject %q: %w", claims.Subject, errors.Join(apperr.ErrUnauthorized, err))
	}
	return id, nil
}
