package handlers

import (
	stderrors "errors"

	"github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/domain/payment"
	"github.com/turnex-app/turnex/internal/domain/subscription"
	"github.com/turnex-app/turnex/internal/shared/errors"
)

// asAppError translates domain sentinel errors into transport-level errors
// so handlers never leak raw internals. Unknown errors pass through and
// surface as 500s.
func asAppError(err error) error {
	if err == nil || errors.IsAppError(err) {
		return err
	}

	switch {
	case stderrors.Is(err, subscription.ErrSubscriptionNotFound):
		return errors.NewNotFoundError("Subscription not found")
	case stderrors.Is(err, subscription.ErrPlanNotFound):
		return errors.NewNotFoundError("Plan not found")
	case stderrors.Is(err, subscription.ErrSubscriptionExists):
		return errors.NewConflictError("Tenant already has a subscription")
	case stderrors.Is(err, subscription.ErrInvalidTransition):
		return errors.NewInvalidTransitionError("Subscription state does not allow this operation")
	case stderrors.Is(err, subscription.ErrNotTrialing):
		return errors.NewInvalidTransitionError("Operation is only available during trial")
	case stderrors.Is(err, payment.ErrPaymentNotFound):
		return errors.NewNotFoundError("Payment not found")
	case stderrors.Is(err, gateway.ErrCredentialNotFound),
		stderrors.Is(err, gateway.ErrCredentialDisconnected):
		return errors.NewGatewayUnavailableError("Payment gateway is not connected for this tenant")
	case stderrors.Is(err, gateway.ErrHandshakeNotFound),
		stderrors.Is(err, gateway.ErrHandshakeExpired):
		return errors.NewInvalidOAuthStateError("Authorization request is invalid or expired")
	default:
		return err
	}
}
