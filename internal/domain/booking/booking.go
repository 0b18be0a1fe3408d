package booking

import (
	"fmt"
	"time"

	vo "github.com/turnex-app/turnex/internal/domain/booking/valueobjects"
	payvo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/id"
)

// Booking is a reserved slot. Bookings that require a deposit are created
// pending and hold the slot only until the deposit deadline; the sweep
// releases unpaid ones.
type Booking struct {
	bookingID  uint
	sid        string
	tenantID   uint
	customerID uint
	serviceID  uint
	startAt    time.Time
	endAt      time.Time
	status     vo.BookingStatus

	depositRequired bool
	depositAmount   payvo.Money
	depositStatus   vo.DepositStatus
	depositDueAt    *time.Time

	cancelledAt  *time.Time
	cancelReason *string

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking reserves a slot. When depositTTL is positive the booking
// requires a deposit paid within that window.
func NewBooking(tenantID, customerID, serviceID uint, startAt, endAt time.Time, depositAmount payvo.Money, depositTTL time.Duration, now time.Time) (*Booking, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if customerID == 0 {
		return nil, fmt.Errorf("customer ID is required")
	}
	if serviceID == 0 {
		return nil, fmt.Errorf("service ID is required")
	}
	if !endAt.After(startAt) {
		return nil, fmt.Errorf("booking end must be after start")
	}

	sid, err := id.NewBookingID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking SID: %w", err)
	}

	b := &Booking{
		sid:        sid,
		tenantID:   tenantID,
		customerID: customerID,
		serviceID:  serviceID,
		startAt:    startAt,
		endAt:      endAt,
		status:     vo.BookingStatusPending,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}

	if depositAmount.IsPositive() && depositTTL > 0 {
		dueAt := now.Add(depositTTL)
		b.depositRequired = true
		b.depositAmount = depositAmount
		b.depositStatus = vo.DepositStatusPending
		b.depositDueAt = &dueAt
	} else {
		b.status = vo.BookingStatusConfirmed
	}

	return b, nil
}

func (b *Booking) ID() uint                     { return b.bookingID }
func (b *Booking) SID() string                  { return b.sid }
func (b *Booking) TenantID() uint               { return b.tenantID }
func (b *Booking) CustomerID() uint             { return b.customerID }
func (b *Booking) ServiceID() uint              { return b.serviceID }
func (b *Booking) StartAt() time.Time           { return b.startAt }
func (b *Booking) EndAt() time.Time             { return b.endAt }
func (b *Booking) Status() vo.BookingStatus     { return b.status }
func (b *Booking) DepositRequired() bool        { return b.depositRequired }
func (b *Booking) DepositAmount() payvo.Money   { return b.depositAmount }
func (b *Booking) DepositStatus() vo.DepositStatus { return b.depositStatus }
func (b *Booking) DepositDueAt() *time.Time     { return b.depositDueAt }
func (b *Booking) CancelledAt() *time.Time      { return b.cancelledAt }
func (b *Booking) CancelReason() *string        { return b.cancelReason }
func (b *Booking) Version() int                 { return b.version }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }

// SetID sets the booking ID after persistence.
func (b *Booking) SetID(bookingID uint) {
	b.bookingID = bookingID
}

// IsDepositOverdue reports whether the deposit window has lapsed unpaid.
func (b *Booking) IsDepositOverdue(now time.Time) bool {
	return b.depositRequired &&
		b.depositStatus == vo.DepositStatusPending &&
		b.depositDueAt != nil &&
		now.After(*b.depositDueAt)
}

// ConfirmDeposit marks the deposit paid and confirms the booking.
// Confirming an already paid deposit is a no-op.
func (b *Booking) ConfirmDeposit(now time.Time) error {
	if !b.depositRequired {
		return fmt.Errorf("booking %s does not require a deposit", b.sid)
	}
	if b.depositStatus == vo.DepositStatusPaid {
		return nil
	}
	if b.depositStatus != vo.DepositStatusPending {
		return fmt.Errorf("cannot confirm deposit with status %s", b.depositStatus)
	}
	if b.status.IsFinal() {
		return fmt.Errorf("cannot confirm deposit on %s booking", b.status)
	}

	b.depositStatus = vo.DepositStatusPaid
	b.status = vo.BookingStatusConfirmed
	b.updatedAt = now
	b.version++

	return nil
}

// ExpireDeposit releases the slot held by an unpaid deposit: the deposit
// moves to expired and the booking is cancelled.
func (b *Booking) ExpireDeposit(now time.Time) error {
	if !b.IsDepositOverdue(now) {
		return fmt.Errorf("deposit for booking %s is not overdue", b.sid)
	}

	reason := "deposit not paid in time"
	b.depositStatus = vo.DepositStatusExpired
	b.status = vo.BookingStatusCancelled
	b.cancelledAt = &now
	b.cancelReason = &reason
	b.updatedAt = now
	b.version++

	return nil
}

// Cancel cancels the booking with a reason.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if reason == "" {
		return fmt.Errorf("cancel reason is required")
	}
	if b.status.IsFinal() {
		return fmt.Errorf("cannot cancel %s booking", b.status)
	}

	b.status = vo.BookingStatusCancelled
	b.cancelledAt = &now
	b.cancelReason = &reason
	b.updatedAt = now
	b.version++

	return nil
}

// Complete marks a confirmed booking completed.
func (b *Booking) Complete(now time.Time) error {
	if b.status != vo.BookingStatusConfirmed {
		return fmt.Errorf("cannot complete %s booking", b.status)
	}
	b.status = vo.BookingStatusCompleted
	b.updatedAt = now
	b.version++
	return nil
}

// MarkNoShow marks a confirmed booking as a no-show.
func (b *Booking) MarkNoShow(now time.Time) error {
	if b.status != vo.BookingStatusConfirmed {
		return fmt.Errorf("cannot mark %s booking as no-show", b.status)
	}
	b.status = vo.BookingStatusNoShow
	b.updatedAt = now
	b.version++
	return nil
}

// BookingReconstructParams carries persisted state for rebuilding a Booking.
type BookingReconstructParams struct {
	ID              uint
	SID             string
	TenantID        uint
	CustomerID      uint
	ServiceID       uint
	StartAt         time.Time
	EndAt           time.Time
	Status          vo.BookingStatus
	DepositRequired bool
	DepositAmount   payvo.Money
	DepositStatus   vo.DepositStatus
	DepositDueAt    *time.Time
	CancelledAt     *time.Time
	CancelReason    *string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructBooking rebuilds a Booking from persistence.
func ReconstructBooking(p BookingReconstructParams) (*Booking, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("booking ID cannot be zero")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid booking status: %s", p.Status)
	}
	if p.DepositRequired && !p.DepositStatus.IsValid() {
		return nil, fmt.Errorf("invalid deposit status: %s", p.DepositStatus)
	}

	return &Booking{
		bookingID:       p.ID,
		sid:             p.SID,
		tenantID:        p.TenantID,
		customerID:      p.CustomerID,
		serviceID:       p.ServiceID,
		startAt:         p.StartAt,
		endAt:           p.EndAt,
		status:          p.Status,
		depositRequired: p.DepositRequired,
		depositAmount:   p.DepositAmount,
		depositStatus:   p.DepositStatus,
		depositDueAt:    p.DepositDueAt,
		cancelledAt:     p.CancelledAt,
		cancelReason:    p.CancelReason,
		version:         p.Version,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}, nil
}
