package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/starford/draftdeck/internal/apperr"
)

func TestHashAndVerifyPassword(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.True(t, VerifyPassword("s3cret", h))
	require.False(t, VerifyPassword("wrong", h))

	h2, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, h, h2, "salts should differ")
}

func TestVerifyPasswordMalformed(t *testing.T) {
	require.False(t, VerifyPassword("x", "not base64!"))
	require.False(t, VerifyPassword("x", "c2hvcnQ="))
	require.False(t, VerifyPassword("x", ""))
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", "HS256", time.Hour)
	require.NoError(t, err)

	tok, err := tokens.Issue(42)
	require.NoError(t, err)

	id, err := tokens.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestTokenExpired(t *testing.T) {
	tokens, err := NewTokens("secret", "HS256", time.Minute)
	require.NoError(t, err)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := tokens.Issue(1)
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(tok)
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestTokenWrongSecret(t *testing.T) {
	a, _ := NewTokens("a", "HS256", time.Hour)
	b, _ := NewTokens("b", "HS256", time.Hour)
	tok, err := a.Issue(1)
	require.NoError(t, err)
	_, err = b.Parse(tok)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenWrongAlgorithm(t *testing.T) {
	hs512, _ := NewTokens("k", "HS512", time.Hour)
	hs256, _ := NewTokens("k", "HS256", time.Hour)
	tok, err := hs512.Issue(1)
	require.NoError(t, err)
	_, err = hs256.Parse(tok)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenNonNumericSubject(t *testing.T) {
	tokens, _ := NewTokens("k", "HS256", time.Hour)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestNewTokensRejectsAsymmetric(t *testing.T) {
	_, err := NewTokens("k", "RS256", time.Hour)
	require.Error(t, err)
}
