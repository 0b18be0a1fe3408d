package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionModel represents the database persistence model for subscriptions.
// At most one row per tenant; the unique index enforces it.
type SubscriptionModel struct {
	ID                 uint   `gorm:"primarykey"`
	SID                string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: sub_xxx"`
	TenantID           uint   `gorm:"uniqueIndex:idx_tenant_subscription;not null"`
	PlanID             uint   `gorm:"not null;index:idx_plan_subscription"`
	Status             string `gorm:"not null;size:20;index:idx_subscription_status"`
	BillingPeriod      string `gorm:"not null;size:10"`
	TrialStartAt       *time.Time
	TrialEndAt         *time.Time
	CurrentPeriodStart time.Time `gorm:"not null"`
	CurrentPeriodEnd   time.Time `gorm:"not null;index:idx_current_period_end"`
	CancelledAt        *time.Time
	CancelReason       *string `gorm:"size:500"`
	GatewaySubID       *string `gorm:"size:128"`
	Version            int     `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
