package payment

import (
	"context"
	"time"
)

// PaymentRepository persists reconciliation ledger rows.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, payID uint) (*Payment, error)
	FindBySID(ctx context.Context, sid string) (*Payment, error)
	FindByCorrelationID(ctx context.Context, correlationID string) (*Payment, error)
	ListByTenantID(ctx context.Context, tenantID uint, limit, offset int) ([]*Payment, error)
	// ListStalePending returns pending rows created before the cutoff,
	// capped at limit. Used by the intent expiry job.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*Payment, error)
}
