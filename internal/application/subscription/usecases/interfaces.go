package usecases

import (
	"context"

	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
)

// PlanLimitCache caches per-plan resource limits so hot-path limit checks
// skip the database. A cache miss or error is never fatal; callers fall
// back to the plan repository.
type PlanLimitCache interface {
	Get(ctx context.Context, planID uint) (*vo.ResourceLimits, bool)
	Set(ctx context.Context, planID uint, limits vo.ResourceLimits)
	Invalidate(ctx context.Context, planID uint)
}

// UsageReader reports a tenant's current consumption of a limited resource.
type UsageReader interface {
	CurrentUsage(ctx context.Context, tenantID uint, resource vo.Resource) (int64, error)
}

// TrialWarningStampRepository remembers the last business day a tenant was
// warned about their expiring trial. Dates use YYYY-MM-DD in the business
// timezone.
type TrialWarningStampRepository interface {
	LastWarnedDate(ctx context.Context, tenantID uint) (string, error)
	SetLastWarnedDate(ctx context.Context, tenantID uint, date string) error
}
