package gateway

import (
	"fmt"
	"time"
)

// tokenExpirySkew is subtracted from the stored expiry so tokens are
// refreshed before the gateway actually rejects them.
const tokenExpirySkew = 5 * time.Minute

// Credential holds a tenant's gateway account link. Token material is
// stored encrypted; the aggregate never sees plaintext.
type Credential struct {
	credID                uint
	tenantID              uint
	provider              string
	externalAccountID     string
	encryptedAccessToken  []byte
	encryptedRefreshToken []byte
	publicKey             string
	tokenExpiresAt        time.Time
	connected             bool
	sandbox               bool
	disconnectedReason    *string
	version               int
	createdAt             time.Time
	updatedAt             time.Time
}

// NewCredential links a tenant to a gateway account after a completed
// OAuth exchange.
func NewCredential(tenantID uint, provider, externalAccountID string, encryptedAccess, encryptedRefresh []byte, publicKey string, tokenExpiresAt time.Time, sandbox bool, now time.Time) (*Credential, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if externalAccountID == "" {
		return nil, fmt.Errorf("external account ID is required")
	}
	if len(encryptedAccess) == 0 {
		return nil, fmt.Errorf("encrypted access token is required")
	}
	if len(encryptedRefresh) == 0 {
		return nil, fmt.Errorf("encrypted refresh token is required")
	}

	return &Credential{
		tenantID:              tenantID,
		provider:              provider,
		externalAccountID:     externalAccountID,
		encryptedAccessToken:  encryptedAccess,
		encryptedRefreshToken: encryptedRefresh,
		publicKey:             publicKey,
		tokenExpiresAt:        tokenExpiresAt,
		connected:             true,
		sandbox:               sandbox,
		version:               1,
		createdAt:             now,
		updatedAt:             now,
	}, nil
}

func (c *Credential) ID() uint                      { return c.credID }
func (c *Credential) TenantID() uint                { return c.tenantID }
func (c *Credential) Provider() string              { return c.provider }
func (c *Credential) ExternalAccountID() string     { return c.externalAccountID }
func (c *Credential) EncryptedAccessToken() []byte  { return c.encryptedAccessToken }
func (c *Credential) EncryptedRefreshToken() []byte { return c.encryptedRefreshToken }
func (c *Credential) PublicKey() string             { return c.publicKey }
func (c *Credential) TokenExpiresAt() time.Time     { return c.tokenExpiresAt }
func (c *Credential) Connected() bool               { return c.connected }
func (c *Credential) Sandbox() bool                 { return c.sandbox }
func (c *Credential) DisconnectedReason() *string   { return c.disconnectedReason }
func (c *Credential) Version() int                  { return c.version }
func (c *Credential) CreatedAt() time.Time          { return c.createdAt }
func (c *Credential) UpdatedAt() time.Time          { return c.updatedAt }

// SetID sets the credential ID after persistence.
func (c *Credential) SetID(credID uint) {
	c.credID = credID
}

// NeedsRefresh reports whether the access token is expired or inside the
// refresh skew window.
func (c *Credential) NeedsRefresh(now time.Time) bool {
	return !now.Before(c.tokenExpiresAt.Add(-tokenExpirySkew))
}

// RotateTokens stores freshly encrypted token material after a refresh.
// A disconnected credential cannot rotate; it must be relinked.
func (c *Credential) RotateTokens(encryptedAccess, encryptedRefresh []byte, tokenExpiresAt, now time.Time) error {
	if !c.connected {
		return ErrCredentialDisconnected
	}
	if len(encryptedAccess) == 0 {
		return fmt.Errorf("encrypted access token is required")
	}

	c.encryptedAccessToken = encryptedAccess
	if len(encryptedRefresh) > 0 {
		c.encryptedRefreshToken = encryptedRefresh
	}
	c.tokenExpiresAt = tokenExpiresAt
	c.updatedAt = now
	c.version++

	return nil
}

// MarkDisconnected severs the link. The fail-closed rule: once a refresh
// fails, every credential read fails until the tenant reconnects.
func (c *Credential) MarkDisconnected(reason string, now time.Time) {
	if !c.connected {
		return
	}
	c.connected = false
	if reason != "" {
		c.disconnectedReason = &reason
	}
	c.updatedAt = now
	c.version++
}

// CredentialReconstructParams carries persisted state for rebuilding a Credential.
type CredentialReconstructParams struct {
	ID                    uint
	TenantID              uint
	Provider              string
	ExternalAccountID     string
	EncryptedAccessToken  []byte
	EncryptedRefreshToken []byte
	PublicKey             string
	TokenExpiresAt        time.Time
	Connected             bool
	Sandbox               bool
	DisconnectedReason    *string
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ReconstructCredential rebuilds a Credential from persistence.
func ReconstructCredential(p CredentialReconstructParams) (*Credential, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("credential ID cannot be zero")
	}
	if p.TenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}

	return &Credential{
		credID:                p.ID,
		tenantID:              p.TenantID,
		provider:              p.Provider,
		externalAccountID:     p.ExternalAccountID,
		encryptedAccessToken:  p.EncryptedAccessToken,
		encryptedRefreshToken: p.EncryptedRefreshToken,
		publicKey:             p.PublicKey,
		tokenExpiresAt:        p.TokenExpiresAt,
		connected:             p.Connected,
		sandbox:               p.Sandbox,
		disconnectedReason:    p.DisconnectedReason,
		version:               p.Version,
		createdAt:             p.CreatedAt,
		updatedAt:             p.UpdatedAt,
	}, nil
}
