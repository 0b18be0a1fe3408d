package gateway

import (
	"context"
	"time"
)

// Tokens is the gateway's answer to an OAuth exchange or refresh.
type Tokens struct {
	AccessToken       string
	RefreshToken      string
	PublicKey         string
	ExternalAccountID string
	LiveMode          bool
	ExpiresAt         time.Time
}

// PreferenceItem is one line of a checkout preference.
type PreferenceItem struct {
	Title        string
	Quantity     int
	UnitPriceRaw int64 // cents
	CurrencyID   string
	Description  string
}

// PreferenceRequest describes a checkout to create at the gateway.
// ExternalReference carries the correlation id; the gateway echoes it back
// on every webhook for this checkout. Metadata repeats the correlation id
// and friends in structured form so payments stay attributable even when
// external_reference is lost or overwritten downstream.
type PreferenceRequest struct {
	Items             []PreferenceItem
	PayerEmail        string
	ExternalReference string
	Metadata          map[string]string
	NotificationURL   string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	ExpiresAt         *time.Time
}

// Preference is the created checkout.
type Preference struct {
	ID          string
	CheckoutURL string
	SandboxURL  string
}

// PaymentInfo is the gateway's view of a payment, fetched after a webhook.
// Raw holds the full decoded response body for the reconciliation ledger.
type PaymentInfo struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	AmountInCents     int64
	CurrencyID        string
	Raw               map[string]any
}

// Gateway payment statuses as reported by the provider.
const (
	PaymentStatusApproved    = "approved"
	PaymentStatusRejected    = "rejected"
	PaymentStatusCancelled   = "cancelled"
	PaymentStatusPending     = "pending"
	PaymentStatusInProcess   = "in_process"
	PaymentStatusRefunded    = "refunded"
	PaymentStatusChargedBack = "charged_back"
)

// Client talks to the payment gateway. Implementations must return bounded
// errors quickly; callers decide retry policy.
type Client interface {
	// AuthorizationURL builds the URL the tenant visits to link their
	// gateway account. state is the handshake nonce.
	AuthorizationURL(state string) string

	// ExchangeAuthCode trades an authorization code for tokens.
	ExchangeAuthCode(ctx context.Context, code string) (*Tokens, error)

	// RefreshToken trades a refresh token for fresh tokens.
	RefreshToken(ctx context.Context, refreshToken string) (*Tokens, error)

	// CreatePreference creates a checkout on behalf of the tenant
	// identified by accessToken.
	CreatePreference(ctx context.Context, accessToken string, req PreferenceRequest) (*Preference, error)

	// GetPayment fetches a payment by gateway id on behalf of the tenant.
	GetPayment(ctx context.Context, accessToken, paymentID string) (*PaymentInfo, error)
}

// ConnectionStatus summarizes a tenant's gateway link for display.
type ConnectionStatus struct {
	Connected          bool
	Provider           string
	ExternalAccountID  string
	Sandbox            bool
	TokenExpiresAt     time.Time
	DisconnectedReason string
}

// Vault manages tenant gateway credentials end to end: the OAuth handshake,
// encrypted storage and transparent refresh. Reads fail closed: any tenant
// whose token cannot be refreshed is disconnected and stays unusable until
// relinked.
type Vault interface {
	// BeginAuthorization mints a handshake and returns the URL to send the
	// tenant to. Restarting replaces any pending handshake.
	BeginAuthorization(ctx context.Context, tenantID uint, sandbox bool) (string, error)

	// CompleteAuthorization consumes the handshake nonce, exchanges the
	// code and stores the credential encrypted.
	CompleteAuthorization(ctx context.Context, nonce, code string) error

	// AccessToken returns a valid plaintext access token for the tenant,
	// refreshing first when needed.
	AccessToken(ctx context.Context, tenantID uint) (string, error)

	// PublicKey returns the tenant's gateway public key for client-side
	// checkout rendering.
	PublicKey(ctx context.Context, tenantID uint) (string, error)

	// Status reports the tenant's connection state.
	Status(ctx context.Context, tenantID uint) (*ConnectionStatus, error)

	// Disconnect severs the tenant's gateway link. Disconnecting an
	// unlinked tenant is a no-op.
	Disconnect(ctx context.Context, tenantID uint) error
}
