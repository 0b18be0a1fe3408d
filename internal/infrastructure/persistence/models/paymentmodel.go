package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentModel represents the database persistence model for the payment
// ledger. CorrelationID is the reconciliation key the gateway echoes back;
// the unique index is what makes webhook replays harmless at the storage
// level.
type PaymentModel struct {
	ID               uint   `gorm:"primarykey"`
	SID              string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: pay_xxx"`
	TenantID         uint   `gorm:"not null;index:idx_tenant_payment"`
	PlanID           uint   `gorm:"not null"`
	CorrelationID    string `gorm:"uniqueIndex:idx_correlation;not null;size:128"`
	AmountCents      int64  `gorm:"not null"`
	Currency         string `gorm:"not null;size:10;default:'ARS'"`
	BillingPeriod    string `gorm:"not null;size:10"`
	Status           string `gorm:"not null;size:20;index:idx_payment_status"`
	StatusDetail     *string `gorm:"size:100"`
	PreferenceID     *string `gorm:"size:128"`
	CheckoutURL      *string `gorm:"type:text"`
	GatewayPaymentID *string `gorm:"size:128;index:idx_gateway_payment"`
	RawPayload       datatypes.JSON
	ApprovedAt       *time.Time
	Version          int       `gorm:"not null;default:1"`
	CreatedAt        time.Time `gorm:"index:idx_payment_created"`
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}
