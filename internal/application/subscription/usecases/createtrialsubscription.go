package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

type CreateTrialSubscriptionCommand struct {
	TenantID uint
	PlanSlug string
}

type CreateTrialSubscriptionResult struct {
	SubscriptionSID string
	PlanSlug        string
	Status          string
	TrialEndAt      string
}

type CreateTrialSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	publisher        events.EventPublisher
	logger           logger.Interface
}

func NewCreateTrialSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *CreateTrialSubscriptionUseCase {
	return &CreateTrialSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

func (uc *CreateTrialSubscriptionUseCase) Execute(ctx context.Context, cmd CreateTrialSubscriptionCommand) (*CreateTrialSubscriptionResult, error) {
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

	now := biztime.NowUTC()
	sub, err := subscription.NewTrialSubscription(cmd.TenantID, plan, now)
	if err != nil {
		uc.logger.Errorw("failed to create trial subscription", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to create trial subscription: %w", err)
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		uc.logger.Errorw("failed to persist trial subscription", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to persist trial subscription: %w", err)
	}

	uc.logger.Infow("trial subscription created",
		"tenant_id", cmd.TenantID,
		"subscription_sid", sub.SID(),
		"plan_slug", plan.Slug(),
		"trial_end_at", sub.TrialEndAt(),
	)

	if err := uc.publisher.Publish(subscription.NewTrialStartedEvent(sub.SID(), cmd.TenantID, plan.ID(), *sub.TrialEndAt())); err != nil {
		uc.logger.Warnw("failed to publish trial started event", "error", err, "tenant_id", cmd.TenantID)
	}

	return &CreateTrialSubscriptionResult{
		SubscriptionSID: sub.SID(),
		PlanSlug:        plan.Slug(),
		Status:          sub.Status().String(),
		TrialEndAt:      biztime.FormatMetadataTime(*sub.TrialEndAt()),
	}, nil
}
