package subscription

import "errors"

var (
	// ErrSubscriptionNotFound is returned when no subscription exists for a tenant.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrSubscriptionExists is returned on duplicate trial/free creation for a tenant.
	ErrSubscriptionExists = errors.New("tenant already has a subscription")

	// ErrInvalidTransition is returned for undefined (state, trigger) combinations.
	ErrInvalidTransition = errors.New("invalid subscription state transition")

	// ErrPlanNotFound is returned when the referenced plan does not exist.
	ErrPlanNotFound = errors.New("subscription plan not found")

	// ErrNotTrialing is returned when a trial-only operation targets a
	// subscription that is not in trial.
	ErrNotTrialing = errors.New("subscription is not trialing")
)
