package models

import "time"

// GatewayCredentialModel stores a tenant's gateway account link. Token
// columns hold AES-GCM ciphertext, never plaintext.
type GatewayCredentialModel struct {
	ID                    uint   `gorm:"primarykey"`
	TenantID              uint   `gorm:"uniqueIndex:idx_tenant_credential;not null"`
	Provider              string `gorm:"not null;size:32"`
	ExternalAccountID     string `gorm:"not null;size:64"`
	EncryptedAccessToken  []byte `gorm:"not null;type:varbinary(2048)"`
	EncryptedRefreshToken []byte `gorm:"not null;type:varbinary(2048)"`
	PublicKey             string `gorm:"size:128"`
	TokenExpiresAt        time.Time `gorm:"not null"`
	Connected             bool      `gorm:"not null;default:true;index:idx_credential_connected"`
	Sandbox               bool      `gorm:"not null;default:false"`
	DisconnectedReason    *string   `gorm:"size:500"`
	Version               int       `gorm:"not null;default:1"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName specifies the table name for GORM
func (GatewayCredentialModel) TableName() string {
	return "gateway_credentials"
}
