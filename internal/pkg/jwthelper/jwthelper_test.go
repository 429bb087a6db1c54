package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("test-signing-key")

func TestGenerateAndParse(t *testing.T) {
	tok, err := GenerateToken(key, "u1", "seller", time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := ParseToken(key, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "seller", claims.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(key, "u1", "buyer", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	otherKey, err := GenerateToken([]byte("other"), "u1", "buyer", time.Hour, time.Now())
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired":   expired,
		"wrong key": otherKey,
		"alg none":  none,
		"garbage":   "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(key, raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateToken_EmptyKey(t *testing.T) {
	_, err := GenerateToken(nil, "u1", "buyer", time.Hour, time.Now())
	assert.Error(t, err)
}
