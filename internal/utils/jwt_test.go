package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 17, 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	payload, err := VerifyAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), payload.UserID)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 1, 15)
	require.NoError(t, err)

	_, err = VerifyAccessToken("other", tok.Token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	tok, err := NewAccessToken("secret", 1, -1)
	require.NoError(t, err)

	_, err = VerifyAccessToken("secret", tok.Token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = VerifyAccessToken("secret", raw)
	assert.Error(t, err)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	_, err := VerifyAccessToken("secret", "not.a.jwt")
	assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(30)
	require.NoError(t, err)
	b, err := NewRefreshToken(30)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), a.Exp, 5*time.Second)
}

func TestHashRefreshRaw(t *testing.T) {
	h := HashRefreshRaw("some-token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw("some-token"))
	assert.NotEqual(t, h, HashRefreshRaw("other-token"))
}
