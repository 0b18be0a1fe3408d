package usecases

import (
	"context"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/booking"
	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const sweepBatchSize = 200

// ExpireDepositsUseCase is the deposit sweep: it releases slots held by
// bookings whose deposit window lapsed unpaid. Each booking is handled on
// its own; a failure on one is logged and skipped so the rest of the batch
// still settles.
type ExpireDepositsUseCase struct {
	bookingRepo booking.BookingRepository
	publisher   events.EventPublisher
	logger      logger.Interface
}

func NewExpireDepositsUseCase(
	bookingRepo booking.BookingRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *ExpireDepositsUseCase {
	return &ExpireDepositsUseCase{
		bookingRepo: bookingRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Execute sweeps one batch and returns how many bookings it released.
func (uc *ExpireDepositsUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()

	overdue, err := uc.bookingRepo.ListOverdueDeposits(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue deposits: %w", err)
	}

	released := 0
	for _, b := range overdue {
		if err := ctx.Err(); err != nil {
			return released, err
		}

		if err := b.ExpireDeposit(now); err != nil {
			// the booking settled between listing and processing
			uc.logger.Debugw("skipping booking during sweep",
				"error", err, "booking_sid", b.SID())
			continue
		}
		if err := uc.bookingRepo.Update(ctx, b); err != nil {
			uc.logger.Errorw("failed to persist deposit expiry",
				"error", err, "booking_sid", b.SID(), "tenant_id", b.TenantID())
			continue
		}

		if err := uc.publisher.Publish(booking.NewDepositExpiredEvent(b)); err != nil {
			uc.logger.Warnw("failed to publish deposit expired event",
				"error", err, "booking_sid", b.SID())
		}
		released++
	}

	return released, nil
}
