package vault

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appgateway "github.com/turnex-app/turnex/internal/application/payment/gateway"
	"github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- fakes ---

type memCredentialRepo struct {
	mu    sync.Mutex
	creds map[uint]*gateway.Credential
	next  uint
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{creds: make(map[uint]*gateway.Credential), next: 1}
}

func (r *memCredentialRepo) Create(_ context.Context, cred *gateway.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cred.ID() == 0 {
		cred.SetID(r.next)
		r.next++
	}
	r.creds[cred.TenantID()] = cred
	return nil
}

func (r *memCredentialRepo) Update(_ context.Context, cred *gateway.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[cred.TenantID()] = cred
	return nil
}

func (r *memCredentialRepo) FindByTenantID(_ context.Context, tenantID uint) (*gateway.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[tenantID]
	if !ok {
		return nil, gateway.ErrCredentialNotFound
	}
	return cred, nil
}

func (r *memCredentialRepo) Delete(_ context.Context, tenantID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[tenantID]; !ok {
		return gateway.ErrCredentialNotFound
	}
	delete(r.creds, tenantID)
	return nil
}

type memHandshakeRepo struct {
	mu      sync.Mutex
	byNonce map[string]*gateway.Handshake
}

func newMemHandshakeRepo() *memHandshakeRepo {
	return &memHandshakeRepo{byNonce: make(map[string]*gateway.Handshake)}
}

func (r *memHandshakeRepo) Replace(_ context.Context, h *gateway.Handshake) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for nonce, existing := range r.byNonce {
		if existing.TenantID() == h.TenantID() {
			delete(r.byNonce, nonce)
		}
	}
	r.byNonce[h.Nonce()] = h
	return nil
}

func (r *memHandshakeRepo) Consume(_ context.Context, nonce string) (*gateway.Handshake, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byNonce[nonce]
	if !ok {
		return nil, gateway.ErrHandshakeNotFound
	}
	delete(r.byNonce, nonce)
	return h, nil
}

type stubOAuthClient struct {
	mu           sync.Mutex
	exchanged    []string
	refreshed    []string
	refreshErr   error
	exchangeErr  error
	tokenCounter int
}

func (c *stubOAuthClient) AuthorizationURL(state string) string {
	return "https://auth.mercadopago.com/authorization?state=" + state
}

func (c *stubOAuthClient) ExchangeAuthCode(_ context.Context, code string) (*appgateway.Tokens, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exchangeErr != nil {
		return nil, c.exchangeErr
	}
	c.exchanged = append(c.exchanged, code)
	return &appgateway.Tokens{
		AccessToken:       "access-initial",
		RefreshToken:      "refresh-initial",
		PublicKey:         "APP_USR-pub",
		ExternalAccountID: "mp-user-77",
		ExpiresAt:         time.Now().UTC().Add(6 * time.Hour),
	}, nil
}

func (c *stubOAuthClient) RefreshToken(_ context.Context, refreshToken string) (*appgateway.Tokens, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshErr != nil {
		return nil, c.refreshErr
	}
	c.refreshed = append(c.refreshed, refreshToken)
	c.tokenCounter++
	return &appgateway.Tokens{
		AccessToken:  "access-refreshed",
		RefreshToken: "refresh-rotated",
		ExpiresAt:    time.Now().UTC().Add(6 * time.Hour),
	}, nil
}

func (c *stubOAuthClient) CreatePreference(_ context.Context, _ string, _ appgateway.PreferenceRequest) (*appgateway.Preference, error) {
	return nil, errors.New("not used")
}

func (c *stubOAuthClient) GetPayment(_ context.Context, _, _ string) (*appgateway.PaymentInfo, error) {
	return nil, errors.New("not used")
}

func newVaultFixture(t *testing.T) (*CredentialVault, *memCredentialRepo, *memHandshakeRepo, *stubOAuthClient) {
	t.Helper()
	cipher, err := NewCipher(testKeyHex)
	require.NoError(t, err)
	credRepo := newMemCredentialRepo()
	hsRepo := newMemHandshakeRepo()
	client := &stubOAuthClient{}
	return NewCredentialVault(credRepo, hsRepo, client, cipher, testLogger()), credRepo, hsRepo, client
}

func linkTenant(t *testing.T, v *CredentialVault, tenantID uint) {
	t.Helper()
	url, err := v.BeginAuthorization(context.Background(), tenantID, false)
	require.NoError(t, err)
	nonce := url[strings.LastIndex(url, "state=")+len("state="):]
	require.NoError(t, v.CompleteAuthorization(context.Background(), nonce, "auth-code"))
}

// --- tests ---

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	require.NoError(t, err)

	blob, err := c.EncryptString("APP_USR-secret-token")
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "secret")

	plain, err := c.DecryptString(blob)
	require.NoError(t, err)
	assert.Equal(t, "APP_USR-secret-token", plain)

	// fresh nonce per call
	blob2, err := c.EncryptString("APP_USR-secret-token")
	require.NoError(t, err)
	assert.NotEqual(t, blob, blob2)
}

func TestCipher_TamperDetected(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	require.NoError(t, err)

	blob, err := c.EncryptString("token")
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xff

	_, err = c.DecryptString(blob)
	assert.Error(t, err)
}

func TestCipher_RejectsBadKey(t *testing.T) {
	_, err := NewCipher("deadbeef")
	assert.Error(t, err)

	_, err = NewCipher("not-hex")
	assert.Error(t, err)
}

func TestVault_AuthorizationFlow(t *testing.T) {
	v, credRepo, _, _ := newVaultFixture(t)

	linkTenant(t, v, 10)

	cred, err := credRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, cred.Connected())
	assert.Equal(t, "mp-user-77", cred.ExternalAccountID())
	assert.NotEqual(t, []byte("access-initial"), cred.EncryptedAccessToken(), "tokens are stored encrypted")

	token, err := v.AccessToken(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "access-initial", token)
}

func TestVault_NonceSingleUse(t *testing.T) {
	v, _, _, _ := newVaultFixture(t)

	url, err := v.BeginAuthorization(context.Background(), 10, false)
	require.NoError(t, err)
	nonce := url[strings.LastIndex(url, "state=")+len("state="):]

	require.NoError(t, v.CompleteAuthorization(context.Background(), nonce, "code-1"))

	err = v.CompleteAuthorization(context.Background(), nonce, "code-2")
	assert.ErrorIs(t, err, gateway.ErrHandshakeNotFound)
}

func TestVault_RestartReplacesNonce(t *testing.T) {
	v, _, _, _ := newVaultFixture(t)

	url1, err := v.BeginAuthorization(context.Background(), 10, false)
	require.NoError(t, err)
	nonce1 := url1[strings.LastIndex(url1, "state=")+len("state="):]

	_, err = v.BeginAuthorization(context.Background(), 10, false)
	require.NoError(t, err)

	err = v.CompleteAuthorization(context.Background(), nonce1, "code")
	assert.ErrorIs(t, err, gateway.ErrHandshakeNotFound, "old nonce is dead after restart")
}

func TestVault_RefreshOnExpiredToken(t *testing.T) {
	v, credRepo, _, client := newVaultFixture(t)
	linkTenant(t, v, 10)

	// force the stored token into the refresh window
	cred, err := credRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	expireCredential(t, credRepo, cred)

	token, err := v.AccessToken(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, "access-refreshed", token)
	require.Len(t, client.refreshed, 1)
	assert.Equal(t, "refresh-initial", client.refreshed[0], "refresh used the decrypted stored token")
}

func TestVault_FailClosedOnRefreshRejection(t *testing.T) {
	v, credRepo, _, client := newVaultFixture(t)
	linkTenant(t, v, 10)

	cred, err := credRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	expireCredential(t, credRepo, cred)
	client.refreshErr = errors.New("invalid_grant")

	_, err = v.AccessToken(context.Background(), 10)
	assert.ErrorIs(t, err, gateway.ErrCredentialDisconnected)

	// every subsequent read fails until relink, even without another refresh attempt
	client.refreshErr = nil
	_, err = v.AccessToken(context.Background(), 10)
	assert.ErrorIs(t, err, gateway.ErrCredentialDisconnected)

	stored, err := credRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, stored.Connected())

	// relink restores service
	linkTenant(t, v, 10)
	token, err := v.AccessToken(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "access-initial", token)
}

func TestVault_ConcurrentReadsRefreshOnce(t *testing.T) {
	v, credRepo, _, client := newVaultFixture(t)
	linkTenant(t, v, 10)

	cred, err := credRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	expireCredential(t, credRepo, cred)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := v.AccessToken(context.Background(), 10)
			assert.NoError(t, err)
			assert.Equal(t, "access-refreshed", token)
		}()
	}
	wg.Wait()

	assert.Len(t, client.refreshed, 1, "one refresh serves all concurrent readers")
}

func TestVault_DisconnectIdempotent(t *testing.T) {
	v, _, _, _ := newVaultFixture(t)
	linkTenant(t, v, 10)

	require.NoError(t, v.Disconnect(context.Background(), 10))
	require.NoError(t, v.Disconnect(context.Background(), 10))
	require.NoError(t, v.Disconnect(context.Background(), 99), "unknown tenant is a no-op")

	_, err := v.AccessToken(context.Background(), 10)
	assert.ErrorIs(t, err, gateway.ErrCredentialDisconnected)
}

func TestVault_StatusForUnlinkedTenant(t *testing.T) {
	v, _, _, _ := newVaultFixture(t)

	status, err := v.Status(context.Background(), 42)

	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "mercadopago", status.Provider)
}

// expireCredential rewrites the stored credential with an expiry in the past.
func expireCredential(t *testing.T, repo *memCredentialRepo, cred *gateway.Credential) {
	t.Helper()
	expired, err := gateway.ReconstructCredential(gateway.CredentialReconstructParams{
		ID:                    cred.ID(),
		TenantID:              cred.TenantID(),
		Provider:              cred.Provider(),
		ExternalAccountID:     cred.ExternalAccountID(),
		EncryptedAccessToken:  cred.EncryptedAccessToken(),
		EncryptedRefreshToken: cred.EncryptedRefreshToken(),
		PublicKey:             cred.PublicKey(),
		TokenExpiresAt:        time.Now().UTC().Add(-time.Hour),
		Connected:             true,
		Sandbox:               cred.Sandbox(),
		Version:               cred.Version(),
		CreatedAt:             cred.CreatedAt(),
		UpdatedAt:             cred.UpdatedAt(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), expired))
}
