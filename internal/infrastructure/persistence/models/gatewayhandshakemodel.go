package models

import "time"

// GatewayHandshakeModel holds a pending OAuth handshake. One row per tenant;
// starting a new handshake replaces the old row, and completing one deletes
// it, so a nonce can never be consumed twice.
type GatewayHandshakeModel struct {
	ID        uint   `gorm:"primarykey"`
	TenantID  uint   `gorm:"uniqueIndex:idx_tenant_handshake;not null"`
	Nonce     string `gorm:"uniqueIndex:idx_handshake_nonce;not null;size:64"`
	Sandbox   bool   `gorm:"not null;default:false"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (GatewayHandshakeModel) TableName() string {
	return "gateway_handshakes"
}
