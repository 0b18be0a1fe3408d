// Package vault stores tenant gateway credentials encrypted at rest and
// serves access tokens with transparent refresh.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"

	appgateway "github.com/turnex-app/turnex/internal/application/payment/gateway"
	"github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const providerMercadoPago = "mercadopago"

// CredentialVault implements appgateway.Vault on top of the credential
// repository, the handshake store and the gateway OAuth client.
//
// Reads fail closed: when a refresh is rejected the credential is marked
// disconnected before the error propagates, so no caller can keep using a
// token the gateway no longer honors.
type CredentialVault struct {
	credentialRepo gateway.CredentialRepository
	handshakeRepo  gateway.HandshakeRepository
	client         appgateway.Client
	cipher         *Cipher
	logger         logger.Interface

	// serializes refreshes per tenant: concurrent expired reads must not
	// race each other to the gateway with the same refresh token
	refreshMu sync.Map // tenantID -> *sync.Mutex
}

func NewCredentialVault(
	credentialRepo gateway.CredentialRepository,
	handshakeRepo gateway.HandshakeRepository,
	client appgateway.Client,
	cipher *Cipher,
	logger logger.Interface,
) *CredentialVault {
	return &CredentialVault{
		credentialRepo: credentialRepo,
		handshakeRepo:  handshakeRepo,
		client:         client,
		cipher:         cipher,
		logger:         logger,
	}
}

// BeginAuthorization mints a handshake and returns the gateway consent URL.
// A pending handshake for the tenant, if any, is replaced.
func (v *CredentialVault) BeginAuthorization(ctx context.Context, tenantID uint, sandbox bool) (string, error) {
	h, err := gateway.NewHandshake(tenantID, sandbox, biztime.NowUTC())
	if err != nil {
		return "", err
	}
	if err := v.handshakeRepo.Replace(ctx, h); err != nil {
		return "", fmt.Errorf("failed to store handshake: %w", err)
	}

	v.logger.Infow("gateway authorization started", "tenant_id", tenantID, "sandbox", sandbox)
	return v.client.AuthorizationURL(h.Nonce()), nil
}

// CompleteAuthorization consumes the nonce, exchanges the code and stores
// the credential encrypted. The nonce is single use: consuming it again
// fails regardless of the code.
func (v *CredentialVault) CompleteAuthorization(ctx context.Context, nonce, code string) error {
	h, err := v.handshakeRepo.Consume(ctx, nonce)
	if err != nil {
		return err
	}

	now := biztime.NowUTC()
	if h.IsExpired(now) {
		return gateway.ErrHandshakeExpired
	}

	tokens, err := v.client.ExchangeAuthCode(ctx, code)
	if err != nil {
		v.logger.Errorw("authorization code exchange failed", "error", err, "tenant_id", h.TenantID())
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	encAccess, err := v.cipher.EncryptString(tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	encRefresh, err := v.cipher.EncryptString(tokens.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	// relink replaces the whole credential, clearing any disconnect
	if err := v.credentialRepo.Delete(ctx, h.TenantID()); err != nil && !errors.Is(err, gateway.ErrCredentialNotFound) {
		return fmt.Errorf("failed to replace credential: %w", err)
	}
	cred, err := gateway.NewCredential(h.TenantID(), providerMercadoPago, tokens.ExternalAccountID,
		encAccess, encRefresh, tokens.PublicKey, tokens.ExpiresAt, h.Sandbox(), now)
	if err != nil {
		return err
	}
	if err := v.credentialRepo.Create(ctx, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	v.logger.Infow("gateway account linked",
		"tenant_id", h.TenantID(),
		"external_account_id", tokens.ExternalAccountID,
		"sandbox", h.Sandbox(),
	)
	return nil
}

// AccessToken returns a valid plaintext access token for the tenant,
// refreshing first when the stored one is expired or about to expire.
func (v *CredentialVault) AccessToken(ctx context.Context, tenantID uint) (string, error) {
	cred, err := v.credentialRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if !cred.Connected() {
		return "", gateway.ErrCredentialDisconnected
	}

	now := biztime.NowUTC()
	if !cred.NeedsRefresh(now) {
		return v.cipher.DecryptString(cred.EncryptedAccessToken())
	}

	mu := v.tenantMutex(tenantID)
	mu.Lock()
	defer mu.Unlock()

	// reload under the lock: another goroutine may have refreshed already
	cred, err = v.credentialRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if !cred.Connected() {
		return "", gateway.ErrCredentialDisconnected
	}
	if !cred.NeedsRefresh(biztime.NowUTC()) {
		return v.cipher.DecryptString(cred.EncryptedAccessToken())
	}

	if err := v.refresh(ctx, cred); err != nil {
		return "", err
	}
	return v.cipher.DecryptString(cred.EncryptedAccessToken())
}

// refresh rotates the credential's tokens. On a gateway rejection the
// credential is marked disconnected and the error is returned.
func (v *CredentialVault) refresh(ctx context.Context, cred *gateway.Credential) error {
	refreshToken, err := v.cipher.DecryptString(cred.EncryptedRefreshToken())
	if err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	now := biztime.NowUTC()
	tokens, err := v.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		cred.MarkDisconnected(fmt.Sprintf("token refresh failed: %v", err), now)
		if updateErr := v.credentialRepo.Update(ctx, cred); updateErr != nil {
			v.logger.Errorw("failed to persist disconnect after refresh failure",
				"error", updateErr, "tenant_id", cred.TenantID())
		}
		v.logger.Errorw("token refresh rejected, credential disconnected",
			"error", err, "tenant_id", cred.TenantID())
		return fmt.Errorf("%w: %v", gateway.ErrCredentialDisconnected, err)
	}

	encAccess, err := v.cipher.EncryptString(tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	var encRefresh []byte
	if tokens.RefreshToken != "" {
		encRefresh, err = v.cipher.EncryptString(tokens.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}

	if err := cred.RotateTokens(encAccess, encRefresh, tokens.ExpiresAt, now); err != nil {
		return err
	}
	if err := v.credentialRepo.Update(ctx, cred); err != nil {
		return fmt.Errorf("failed to persist rotated tokens: %w", err)
	}

	v.logger.Infow("gateway tokens refreshed",
		"tenant_id", cred.TenantID(), "expires_at", tokens.ExpiresAt)
	return nil
}

// PublicKey returns the tenant's gateway public key.
func (v *CredentialVault) PublicKey(ctx context.Context, tenantID uint) (string, error) {
	cred, err := v.credentialRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if !cred.Connected() {
		return "", gateway.ErrCredentialDisconnected
	}
	return cred.PublicKey(), nil
}

// Status reports the tenant's connection state for display.
func (v *CredentialVault) Status(ctx context.Context, tenantID uint) (*appgateway.ConnectionStatus, error) {
	cred, err := v.credentialRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gateway.ErrCredentialNotFound) {
			return &appgateway.ConnectionStatus{Connected: false, Provider: providerMercadoPago}, nil
		}
		return nil, err
	}

	status := &appgateway.ConnectionStatus{
		Connected:         cred.Connected(),
		Provider:          cred.Provider(),
		ExternalAccountID: cred.ExternalAccountID(),
		Sandbox:           cred.Sandbox(),
		TokenExpiresAt:    cred.TokenExpiresAt(),
	}
	if cred.DisconnectedReason() != nil {
		status.DisconnectedReason = *cred.DisconnectedReason()
	}
	return status, nil
}

// Disconnect severs the tenant's gateway link. Unknown tenants are a no-op.
func (v *CredentialVault) Disconnect(ctx context.Context, tenantID uint) error {
	cred, err := v.credentialRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gateway.ErrCredentialNotFound) {
			return nil
		}
		return err
	}

	cred.MarkDisconnected("disconnected by tenant", biztime.NowUTC())
	if err := v.credentialRepo.Update(ctx, cred); err != nil {
		return fmt.Errorf("failed to persist disconnect: %w", err)
	}

	v.logger.Infow("gateway account disconnected", "tenant_id", tenantID)
	return nil
}

func (v *CredentialVault) tenantMutex(tenantID uint) *sync.Mutex {
	mu, _ := v.refreshMu.LoadOrStore(tenantID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
