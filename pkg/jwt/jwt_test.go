package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-shared-secret"

func TestGenerateAndParseTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("user-1", "user1@example.com", "User One", testSecret, 1)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "user1@example.com", claims.Email)
	assert.Equal(t, "User One", claims.DisplayName)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	claims := Claims{
		Subject: "user-1",
		Email:   "user1@example.com",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  gojwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(signed, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsBadSignature(t *testing.T) {
	tok, err := GenerateToken("user-1", "user1@example.com", "User One", testSecret, 1)
	require.NoError(t, err)

	_, err = ParseToken(tok, "a-different-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsEmptySubject(t *testing.T) {
	tok, err := GenerateToken("", "user1@example.com", "User One", testSecret, 1)
	require.NoError(t, err)

	_, err = ParseToken(tok, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not-a-jwt", testSecret)
	assert.Error(t, err)
}
