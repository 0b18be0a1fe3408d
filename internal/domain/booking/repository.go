package booking

import (
	"context"
	"time"
)

// BookingRepository persists booking aggregates.
type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, bookingID uint) (*Booking, error)
	FindBySID(ctx context.Context, sid string) (*Booking, error)
	// ListOverdueDeposits returns pending-deposit bookings whose deadline
	// is before now, capped at limit. Results are ordered oldest first so
	// repeated sweeps make progress even with a small cap.
	ListOverdueDeposits(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
}
