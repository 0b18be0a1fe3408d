package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnectedCredential(t *testing.T, now time.Time, expiresAt time.Time) *Credential {
	t.Helper()
	cred, err := NewCredential(10, "mercadopago", "mp-user-77",
		[]byte("enc-access"), []byte("enc-refresh"), "APP_USR-pub", expiresAt, false, now)
	require.NoError(t, err)
	cred.SetID(1)
	return cred
}

func TestNewCredential(t *testing.T) {
	now := time.Now().UTC()
	cred := newConnectedCredential(t, now, now.Add(6*time.Hour))

	assert.True(t, cred.Connected())
	assert.Equal(t, "mp-user-77", cred.ExternalAccountID())
	assert.Equal(t, []byte("enc-access"), cred.EncryptedAccessToken())
	assert.Nil(t, cred.DisconnectedReason())
}

func TestNeedsRefresh(t *testing.T) {
	now := time.Now().UTC()
	cred := newConnectedCredential(t, now, now.Add(6*time.Hour))

	assert.False(t, cred.NeedsRefresh(now))
	assert.False(t, cred.NeedsRefresh(now.Add(5*time.Hour)))
	assert.True(t, cred.NeedsRefresh(now.Add(6*time.Hour-time.Minute)), "inside the skew window")
	assert.True(t, cred.NeedsRefresh(now.Add(7*time.Hour)))
}

func TestRotateTokens(t *testing.T) {
	now := time.Now().UTC()
	cred := newConnectedCredential(t, now, now.Add(time.Hour))
	newExpiry := now.Add(6 * time.Hour)

	require.NoError(t, cred.RotateTokens([]byte("enc-access-2"), []byte("enc-refresh-2"), newExpiry, now))

	assert.Equal(t, []byte("enc-access-2"), cred.EncryptedAccessToken())
	assert.Equal(t, []byte("enc-refresh-2"), cred.EncryptedRefreshToken())
	assert.Equal(t, newExpiry, cred.TokenExpiresAt())
	assert.Equal(t, 2, cred.Version())
}

func TestRotateTokens_KeepsRefreshWhenOmitted(t *testing.T) {
	now := time.Now().UTC()
	cred := newConnectedCredential(t, now, now.Add(time.Hour))

	require.NoError(t, cred.RotateTokens([]byte("enc-access-2"), nil, now.Add(6*time.Hour), now))

	assert.Equal(t, []byte("enc-refresh"), cred.EncryptedRefreshToken())
}

func TestRotateTokens_DisconnectedFails(t *testing.T) {
	now := time.Now().UTC()
	cred := newConnectedCredential(t, now, now.Add(time.Hour))
	cred.MarkDisconnected("refresh rejected by gateway", now)

	err := cred.RotateTokens([]byte("enc-access-2"), nil, now.Add(6*time.Hour), now)

	assert.ErrorIs(t, err, ErrCredentialDisconnected)
}

func TestMarkDisconnected_Idempotent(t *testing.T) {
	now := time.Now().UTC()
	cred := newConnectedCredential(t, now, now.Add(time.Hour))

	cred.MarkDisconnected("refresh rejected by gateway", now)
	versionAfterFirst := cred.Version()
	cred.MarkDisconnected("second reason", now)

	assert.False(t, cred.Connected())
	assert.Equal(t, versionAfterFirst, cred.Version())
	assert.Equal(t, "refresh rejected by gateway", *cred.DisconnectedReason())
}

func TestHandshake(t *testing.T) {
	now := time.Now().UTC()
	h, err := NewHandshake(10, true, now)
	require.NoError(t, err)

	assert.NotEmpty(t, h.Nonce())
	assert.True(t, h.Sandbox())
	assert.False(t, h.IsExpired(now.Add(10*time.Minute)))
	assert.True(t, h.IsExpired(now.Add(16*time.Minute)))

	other, err := NewHandshake(10, true, now)
	require.NoError(t, err)
	assert.NotEqual(t, h.Nonce(), other.Nonce(), "nonces are unique per handshake")
}
