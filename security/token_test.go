package security

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = base64.StdEncoding.EncodeToString([]byte("token-test-secret"))

func TestCreateAndParseSessionToken(t *testing.T) {
	identity := &Identity{
		UserID:   "e1",
		Email:    "worker@harborview.test",
		Role:     "employee",
		Provider: "local",
	}

	token, err := CreateSessionToken(identity, secret, 3600)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, *identity, claims.Identity)
	assert.Equal(t, "shiftman", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := CreateSessionToken(&Identity{UserID: "e1"}, secret, 3600)
	require.NoError(t, err)

	other := base64.StdEncoding.EncodeToString([]byte("a-different-secret"))
	_, err = ParseSessionToken(token, other)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := CreateSessionToken(&Identity{UserID: "e1"}, secret, -60)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, secret)
	assert.Error(t, err)
}

func TestCreateRejectsBadSecret(t *testing.T) {
	_, err := CreateSessionToken(&Identity{UserID: "e1"}, "not base64 !!!", 3600)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	token, err := CreateSessionToken(&Identity{UserID: "e1"}, secret, 3600)
	require.NoError(t, err)

	expiry, err := TokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 10*time.Second)
}

func TestTokenExpiryGarbage(t *testing.T) {
	_, err := TokenExpiry("not-a-token")
	assert.Error(t, err)
}
