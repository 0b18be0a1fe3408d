package models

import "time"

// BookingModel represents the database persistence model for bookings and
// their deposit hold.
type BookingModel struct {
	ID                 uint   `gorm:"primarykey"`
	SID                string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: bkg_xxx"`
	TenantID           uint   `gorm:"not null;index:idx_tenant_booking"`
	CustomerID         uint   `gorm:"not null;index:idx_customer_booking"`
	ServiceID          uint   `gorm:"not null"`
	StartAt            time.Time `gorm:"not null;index:idx_booking_start"`
	EndAt              time.Time `gorm:"not null"`
	Status             string    `gorm:"not null;size:20;index:idx_booking_status"`
	DepositRequired    bool      `gorm:"not null;default:false"`
	DepositAmountCents int64     `gorm:"not null;default:0"`
	DepositCurrency    string    `gorm:"not null;size:10;default:'ARS'"`
	DepositStatus      string    `gorm:"not null;size:20;index:idx_deposit_status"`
	DepositDueAt       *time.Time `gorm:"index:idx_deposit_due"`
	CancelledAt        *time.Time
	CancelReason       *string `gorm:"size:500"`
	Version            int     `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}
