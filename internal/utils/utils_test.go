package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken_CarriesSubjectAndRoles(t *testing.T) {
	secret := "test-secret"
	tok, err := NewAccessToken(secret, 42, []string{"buyer", "creator"}, 15)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])

	roles, ok := claims["roles"].([]interface{})
	require.True(t, ok)
	require.Len(t, roles, 2)
	assert.Equal(t, "buyer", roles[0])
	assert.Equal(t, "creator", roles[1])
}

func TestNewAccessToken_RejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("right", 1, []string{"buyer"}, 15)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	assert.Error(t, err)
}

func TestNewRefreshToken_RandomAndHashed(t *testing.T) {
	a, err := NewRefreshToken(30)
	require.NoError(t, err)
	b, err := NewRefreshToken(30)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96) // 48 bytes hex encoded
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), a.Exp, 5*time.Second)

	// The stored hash is deterministic for the same raw value and never
	// equal to the raw token itself.
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
	assert.NotEqual(t, a.Raw, HashRefreshRaw(a.Raw))
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
}

func TestNewQRToken_FormatAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewQRToken()
		require.NoError(t, err)
		assert.Len(t, code, QRTokenBytes*2)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.False(t, seen[code], "duplicate token generated")
		seen[code] = true
	}
}

func TestNormalizeQRToken(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeQRToken("  abc123\n"))
	assert.Equal(t, "", NormalizeQRToken("   "))
	assert.Equal(t, "DEADBEEF", NormalizeQRToken("DeadBeef"))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter2"))
}

func TestHashPassword_CostOutOfRange(t *testing.T) {
	// bcrypt errors above MaxCost; a misconfigured cost falls back to the
	// default instead of breaking registration.
	hash, err := HashPassword("hunter2", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
}
