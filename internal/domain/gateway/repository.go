package gateway

import "context"

// CredentialRepository persists gateway credentials. One credential per
// tenant and provider.
type CredentialRepository interface {
	Create(ctx context.Context, cred *Credential) error
	Update(ctx context.Context, cred *Credential) error
	FindByTenantID(ctx context.Context, tenantID uint) (*Credential, error)
	Delete(ctx context.Context, tenantID uint) error
}

// HandshakeRepository stores pending OAuth handshakes with single-use
// semantics.
type HandshakeRepository interface {
	// Replace stores the handshake, discarding any previous one for the
	// same tenant.
	Replace(ctx context.Context, h *Handshake) error
	// Consume atomically retrieves and deletes the handshake matching the
	// nonce. A second Consume with the same nonce returns
	// ErrHandshakeNotFound.
	Consume(ctx context.Context, nonce string) (*Handshake, error)
}
