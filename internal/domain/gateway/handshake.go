package gateway

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// handshakeTTL bounds how long an OAuth authorization round trip may take.
const handshakeTTL = 15 * time.Minute

// Handshake is the pending OAuth authorization state for one tenant.
// A tenant holds at most one: starting a new authorization replaces any
// previous nonce, and completing one consumes it. A nonce can therefore
// never be used twice.
type Handshake struct {
	tenantID  uint
	nonce     string
	sandbox   bool
	createdAt time.Time
	expiresAt time.Time
}

// NewHandshake mints a fresh handshake with a random nonce.
func NewHandshake(tenantID uint, sandbox bool, now time.Time) (*Handshake, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate handshake nonce: %w", err)
	}

	return &Handshake{
		tenantID:  tenantID,
		nonce:     base64.RawURLEncoding.EncodeToString(buf),
		sandbox:   sandbox,
		createdAt: now,
		expiresAt: now.Add(handshakeTTL),
	}, nil
}

// ReconstructHandshake rebuilds a Handshake from persistence.
func ReconstructHandshake(tenantID uint, nonce string, sandbox bool, createdAt, expiresAt time.Time) *Handshake {
	return &Handshake{
		tenantID:  tenantID,
		nonce:     nonce,
		sandbox:   sandbox,
		createdAt: createdAt,
		expiresAt: expiresAt,
	}
}

func (h *Handshake) TenantID() uint       { return h.tenantID }
func (h *Handshake) Nonce() string        { return h.nonce }
func (h *Handshake) Sandbox() bool        { return h.sandbox }
func (h *Handshake) CreatedAt() time.Time { return h.createdAt }
func (h *Handshake) ExpiresAt() time.Time { return h.expiresAt }

// IsExpired reports whether the authorization window has lapsed.
func (h *Handshake) IsExpired(now time.Time) bool {
	return now.After(h.expiresAt)
}
