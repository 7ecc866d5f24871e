package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSignAndParse(t *testing.T) {
	issuer := NewIssuer(testSecret, "webshop-api", 15*time.Minute)
	userID := uuid.New()

	token, expiresAt, err := issuer.Sign(userID, []string{"Customer"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 2*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, []string{"Customer"}, claims.Roles)
}

func TestParseExpired(t *testing.T) {
	issuer := NewIssuer(testSecret, "webshop-api", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Sign(uuid.New(), nil)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	other := NewIssuer("ffffffffffffffffffffffffffffffff", "webshop-api", time.Minute)
	token, _, err := other.Sign(uuid.New(), nil)
	require.NoError(t, err)

	_, err = NewIssuer(testSecret, "webshop-api", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, _, err := NewIssuer(testSecret, "someone-else", time.Minute).Sign(uuid.New(), nil)
	require.NoError(t, err)

	_, err = NewIssuer(testSecret, "webshop-api", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokens(t *testing.T) {
	a, err := GenerateRefreshToken(48)
	require.NoError(t, err)
	b, err := GenerateRefreshToken(48)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
}
