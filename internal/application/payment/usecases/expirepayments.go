package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/turnex-app/turnex/internal/domain/payment"
	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

const expireBatchSize = 100

// ExpirePaymentsUseCase closes checkout intents the payer abandoned. Runs as
// a scheduled batch job; one bad row never stops the rest of the batch.
type ExpirePaymentsUseCase struct {
	paymentRepo payment.PaymentRepository
	publisher   events.EventPublisher
	intentTTL   time.Duration
	logger      logger.Interface
}

func NewExpirePaymentsUseCase(
	paymentRepo payment.PaymentRepository,
	publisher events.EventPublisher,
	intentTTL time.Duration,
	logger logger.Interface,
) *ExpirePaymentsUseCase {
	return &ExpirePaymentsUseCase{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		intentTTL:   intentTTL,
		logger:      logger,
	}
}

// Execute expires one batch of stale pending intents and returns how many
// rows it settled.
func (uc *ExpirePaymentsUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	cutoff := now.Add(-uc.intentTTL)

	stale, err := uc.paymentRepo.ListStalePending(ctx, cutoff, expireBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale payment intents: %w", err)
	}

	expired := 0
	for _, row := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		if err := row.MarkAsExpired(now); err != nil {
			uc.logger.Warnw("failed to expire payment intent",
				"error", err, "payment_sid", row.SID())
			continue
		}
		if err := uc.paymentRepo.Update(ctx, row); err != nil {
			uc.logger.Errorw("failed to persist payment expiry",
				"error", err, "payment_sid", row.SID())
			continue
		}

		if err := uc.publisher.Publish(payment.NewPaymentExpiredEvent(row)); err != nil {
			uc.logger.Warnw("failed to publish payment expired event",
				"error", err, "payment_sid", row.SID())
		}
		expired++
	}

	return expired, nil
}
