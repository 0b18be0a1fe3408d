package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/turnex-app/turnex/internal/domain/booking/valueobjects"
	payvo "github.com/turnex-app/turnex/internal/domain/payment/valueobjects"
)

func newDepositBooking(t *testing.T, now time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(10, 5, 3, now.Add(48*time.Hour), now.Add(49*time.Hour),
		payvo.NewMoney(200000, "ARS"), 20*time.Minute, now)
	require.NoError(t, err)
	b.SetID(1)
	return b
}

func TestNewBooking_WithDeposit(t *testing.T) {
	now := time.Now().UTC()
	b := newDepositBooking(t, now)

	assert.Equal(t, vo.BookingStatusPending, b.Status())
	assert.True(t, b.DepositRequired())
	assert.Equal(t, vo.DepositStatusPending, b.DepositStatus())
	require.NotNil(t, b.DepositDueAt())
	assert.Equal(t, now.Add(20*time.Minute), *b.DepositDueAt())
}

func TestNewBooking_WithoutDepositConfirmsImmediately(t *testing.T) {
	now := time.Now().UTC()
	b, err := NewBooking(10, 5, 3, now.Add(time.Hour), now.Add(2*time.Hour),
		payvo.NewMoney(0, "ARS"), 0, now)

	require.NoError(t, err)
	assert.Equal(t, vo.BookingStatusConfirmed, b.Status())
	assert.False(t, b.DepositRequired())
	assert.Nil(t, b.DepositDueAt())
}

func TestConfirmDeposit(t *testing.T) {
	now := time.Now().UTC()
	b := newDepositBooking(t, now)

	require.NoError(t, b.ConfirmDeposit(now.Add(5*time.Minute)))

	assert.Equal(t, vo.DepositStatusPaid, b.DepositStatus())
	assert.Equal(t, vo.BookingStatusConfirmed, b.Status())

	// paying twice is harmless
	require.NoError(t, b.ConfirmDeposit(now.Add(6*time.Minute)))
}

func TestIsDepositOverdue(t *testing.T) {
	now := time.Now().UTC()
	b := newDepositBooking(t, now)

	assert.False(t, b.IsDepositOverdue(now.Add(10*time.Minute)))
	assert.True(t, b.IsDepositOverdue(now.Add(21*time.Minute)))

	require.NoError(t, b.ConfirmDeposit(now.Add(5*time.Minute)))
	assert.False(t, b.IsDepositOverdue(now.Add(time.Hour)), "paid deposits are never overdue")
}

func TestExpireDeposit(t *testing.T) {
	now := time.Now().UTC()
	b := newDepositBooking(t, now)
	sweepAt := now.Add(25 * time.Minute)

	require.NoError(t, b.ExpireDeposit(sweepAt))

	assert.Equal(t, vo.DepositStatusExpired, b.DepositStatus())
	assert.Equal(t, vo.BookingStatusCancelled, b.Status())
	require.NotNil(t, b.CancelReason())
	assert.Equal(t, "deposit not paid in time", *b.CancelReason())
}

func TestExpireDeposit_NotOverdue(t *testing.T) {
	now := time.Now().UTC()
	b := newDepositBooking(t, now)

	err := b.ExpireDeposit(now.Add(5 * time.Minute))

	assert.Error(t, err)
	assert.Equal(t, vo.BookingStatusPending, b.Status())
}

func TestExpireDeposit_PaidDeposit(t *testing.T) {
	now := time.Now().UTC()
	b := newDepositBooking(t, now)
	require.NoError(t, b.ConfirmDeposit(now))

	err := b.ExpireDeposit(now.Add(time.Hour))

	assert.Error(t, err)
	assert.Equal(t, vo.BookingStatusConfirmed, b.Status())
}

func TestCancelAndComplete(t *testing.T) {
	now := time.Now().UTC()
	b := newDepositBooking(t, now)
	require.NoError(t, b.ConfirmDeposit(now))

	require.NoError(t, b.Complete(now.Add(50*time.Hour)))
	assert.Equal(t, vo.BookingStatusCompleted, b.Status())

	err := b.Cancel("late", now)
	assert.Error(t, err, "completed bookings cannot be cancelled")
}
