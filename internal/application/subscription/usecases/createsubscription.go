package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type CreateSubscriptionCommand struct {
	TenantID      uint
	PlanSlug      string
	BillingPeriod string
}

type CreateSubscriptionResult struct {
	SubscriptionSID  string
	PlanSlug         string
	Status           string
	CurrentPeriodEnd string
}

// CreateSubscriptionUseCase creates a subscription without a trial, used for
// direct free-plan signups.
type CreateSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	logger           logger.Interface
}

func NewCreateSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		logger:           logger,
	}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*CreateSubscriptionResult, error) {
	existing, err := uc.subscriptionRepo.FindByTenantID(ctx, cmd.TenantID)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}
	if existing != nil {
		return nil, subscription.ErrSubscriptionExists
	}

	plan, err := uc.planRepo.FindBySlug(ctx, cmd.PlanSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", cmd.PlanSlug, err)
	}

	period := vo.BillingPeriodMonthly
	if cmd.BillingPeriod != "" {
		period, err = vo.ParseBillingPeriod(cmd.BillingPeriod)
		if err != nil {
			return nil, err
		}
	}

	now := biztime.NowUTC()
	sub, err := subscription.NewDirectSubscription(cmd.TenantID, plan, period, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		uc.logger.Errorw("failed to persist subscription", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to persist subscription: %w", err)
	}

	uc.logger.Infow("subscription created",
		"tenant_id", cmd.TenantID,
		"subscription_sid", sub.SID(),
		"plan_slug", plan.Slug(),
	)

	return &CreateSubscriptionResult{
		SubscriptionSID:  sub.SID(),
		PlanSlug:         plan.Slug(),
		Status:           sub.Status().String(),
		CurrentPeriodEnd: biztime.FormatMetadataTime(sub.CurrentPeriodEnd()),
	}, nil
}
