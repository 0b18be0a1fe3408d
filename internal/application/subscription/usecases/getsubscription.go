package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type GetSubscriptionQuery struct {
	TenantID uint
}

type SubscriptionDTO struct {
	SID                string  `json:"sid"`
	PlanSlug           string  `json:"plan_slug"`
	PlanName           string  `json:"plan_name"`
	Status             string  `json:"status"`
	BillingPeriod      string  `json:"billing_period"`
	TrialEndAt         *string `json:"trial_end_at,omitempty"`
	TrialDaysRemaining int     `json:"trial_days_remaining"`
	CurrentPeriodStart string  `json:"current_period_start"`
	CurrentPeriodEnd   string  `json:"current_period_end"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`
	CancelReason       *string `json:"cancel_reason,omitempty"`
	HasAccess          bool    `json:"has_access"`
}

// GetSubscriptionUseCase returns the tenant's subscription after settling
// lazy trial expiry. While a trial is inside its warning window it also
// emits a trial-expiring event, at most once per business day; a failed
// emission leaves the stamp alone so the next read retries.
type GetSubscriptionUseCase struct {
	resolver         *SubscriptionResolver
	planRepo         subscription.PlanRepository
	stampRepo        TrialWarningStampRepository
	publisher        events.EventPublisher
	trialWarningDays int
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(
	resolver *SubscriptionResolver,
	planRepo subscription.PlanRepository,
	stampRepo TrialWarningStampRepository,
	publisher events.EventPublisher,
	trialWarningDays int,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		resolver:         resolver,
		planRepo:         planRepo,
		stampRepo:        stampRepo,
		publisher:        publisher,
		trialWarningDays: trialWarningDays,
		logger:           logger,
	}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, query GetSubscriptionQuery) (*SubscriptionDTO, error) {
	sub, err := uc.resolver.Resolve(ctx, query.TenantID)
	if err != nil {
		return nil, err
	}

	plan, err := uc.planRepo.FindByID(ctx, sub.PlanID())
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %d: %w", sub.PlanID(), err)
	}

	now := biztime.NowUTC()
	uc.maybeWarnTrialExpiring(ctx, sub, now)

	dto := &SubscriptionDTO{
		SID:                sub.SID(),
		PlanSlug:           plan.Slug(),
		PlanName:           plan.Name(),
		Status:             sub.Status().String(),
		BillingPeriod:      sub.BillingPeriod().String(),
		TrialDaysRemaining: sub.TrialDaysRemaining(now),
		CurrentPeriodStart: biztime.FormatMetadataTime(sub.CurrentPeriodStart()),
		CurrentPeriodEnd:   biztime.FormatMetadataTime(sub.CurrentPeriodEnd()),
		CancelReason:       sub.CancelReason(),
		HasAccess:          sub.HasAccess(now),
	}
	if sub.TrialEndAt() != nil {
		s := biztime.FormatMetadataTime(*sub.TrialEndAt())
		dto.TrialEndAt = &s
	}
	if sub.CancelledAt() != nil {
		s := biztime.FormatMetadataTime(*sub.CancelledAt())
		dto.CancelledAt = &s
	}

	return dto, nil
}

func (uc *GetSubscriptionUseCase) maybeWarnTrialExpiring(ctx context.Context, sub *subscription.Subscription, now time.Time) {
	days := sub.TrialDaysRemaining(now)
	if days == 0 || days > uc.trialWarningDays {
		return
	}

	today := biztime.DateInBizTimezone(now)
	lastWarned, err := uc.stampRepo.LastWarnedDate(ctx, sub.TenantID())
	if err != nil {
		uc.logger.Warnw("failed to read trial warning stamp", "error", err, "tenant_id", sub.TenantID())
		return
	}
	if lastWarned == today {
		return
	}

	event := subscription.NewTrialExpiringEvent(sub.SID(), sub.TenantID(), sub.PlanID(), days, *sub.TrialEndAt())
	if err := uc.publisher.Publish(event); err != nil {
		// stamp untouched so the next read retries
		uc.logger.Warnw("failed to publish trial expiring event", "error", err, "tenant_id", sub.TenantID())
		return
	}

	if err := uc.stampRepo.SetLastWarnedDate(ctx, sub.TenantID(), today); err != nil {
		uc.logger.Warnw("failed to advance trial warning stamp", "error", err, "tenant_id", sub.TenantID())
	}
}
