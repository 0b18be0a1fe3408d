package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnex-app/turnex/internal/domain/subscription"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
)

func seedActive(t *testing.T, repo *fakeSubscriptionRepo, tenantID uint, periodEnd time.Time) *subscription.Subscription {
	t.Helper()
	now := time.Now().UTC()
	sub, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:                 tenantID,
		SID:                "sub_test_active",
		TenantID:           tenantID,
		PlanID:             2,
		Status:             vo.StatusActive,
		BillingPeriod:      vo.BillingPeriodMonthly,
		CurrentPeriodStart: periodEnd.AddDate(0, -1, 0),
		CurrentPeriodEnd:   periodEnd,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), sub))
	return sub
}

func TestExpireSubscriptions_MarksOnlyLapsed(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	publisher := &fakePublisher{}
	now := time.Now().UTC()

	lapsed := seedActive(t, subRepo, 10, now.Add(-time.Hour))
	current := seedActive(t, subRepo, 11, now.AddDate(0, 0, 15))

	uc := NewExpireSubscriptionsUseCase(subRepo, publisher, testLogger())
	count, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, vo.StatusExpired, lapsed.Status())
	assert.Equal(t, vo.StatusActive, current.Status())
	assert.Len(t, publisher.published(subscription.EventTypeExpired), 1)
}

func TestExpireSubscriptions_SecondRunFindsNothing(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	publisher := &fakePublisher{}

	seedActive(t, subRepo, 10, time.Now().UTC().Add(-time.Hour))

	uc := NewExpireSubscriptionsUseCase(subRepo, publisher, testLogger())
	_, err := uc.Execute(context.Background())
	require.NoError(t, err)

	count, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Len(t, publisher.published(subscription.EventTypeExpired), 1)
}

func TestExpireSubscriptions_StopsOnCancelledContext(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	seedActive(t, subRepo, 10, time.Now().UTC().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewExpireSubscriptionsUseCase(subRepo, &fakePublisher{}, testLogger())
	_, err := uc.Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
