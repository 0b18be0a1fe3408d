package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
)

func TestCreateSubscription(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	uc := NewCreateSubscriptionUseCase(subRepo, newFakePlanRepo(t), testLogger())

	result, err := uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: 10, PlanSlug: "gratis",
	})

	require.NoError(t, err)
	assert.Equal(t, "gratis", result.PlanSlug)
	assert.Equal(t, "active", result.Status, "no trial on a direct signup")
	assert.NotEmpty(t, result.SubscriptionSID)

	sub, err := subRepo.FindByTenantID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, sub.Status())
}

func TestCreateSubscription_AlreadySubscribed(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	uc := NewCreateSubscriptionUseCase(subRepo, newFakePlanRepo(t), testLogger())

	_, err := uc.Execute(context.Background(), CreateSubscriptionCommand{TenantID: 10, PlanSlug: "gratis"})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), CreateSubscriptionCommand{TenantID: 10, PlanSlug: "profesional"})

	assert.ErrorIs(t, err, subscription.ErrSubscriptionExists)
}

func TestCreateSubscription_UnknownPlan(t *testing.T) {
	uc := NewCreateSubscriptionUseCase(newFakeSubscriptionRepo(), newFakePlanRepo(t), testLogger())

	_, err := uc.Execute(context.Background(), CreateSubscriptionCommand{TenantID: 10, PlanSlug: "enterprise"})

	assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
}

func TestCreateSubscription_InvalidBillingPeriod(t *testing.T) {
	uc := NewCreateSubscriptionUseCase(newFakeSubscriptionRepo(), newFakePlanRepo(t), testLogger())

	_, err := uc.Execute(context.Background(), CreateSubscriptionCommand{
		TenantID: 10, PlanSlug: "profesional", BillingPeriod: "weekly",
	})

	require.Error(t, err)
}
