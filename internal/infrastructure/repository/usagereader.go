package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/application/subscription/usecases"
	vo "github.com/turnex-app/turnex/internal/domain/subscription/valueobjects"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

// resourceTables maps countable resources to the tables that hold them.
// These tables live in the same schema but belong to the scheduling side
// of the product, so they are counted raw rather than through models.
var resourceTables = map[vo.Resource]string{
	vo.ResourceBranches:  "branches",
	vo.ResourceEmployees: "employees",
	vo.ResourceServices:  "services",
	vo.ResourceCustomers: "customers",
}

// GormUsageReader reports tenant consumption with count queries.
type GormUsageReader struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageReader(
	db *gorm.DB,
	logger logger.Interface,
) usecases.UsageReader {
	return &GormUsageReader{
		db:     db,
		logger: logger,
	}
}

func (r *GormUsageReader) CurrentUsage(ctx context.Context, tenantID uint, resource vo.Resource) (int64, error) {
	if resource == vo.ResourceBookingsPerMonth {
		return r.bookingsThisMonth(ctx, tenantID)
	}

	table, ok := resourceTables[resource]
	if !ok {
		return 0, fmt.Errorf("no usage source for resource %q", resource)
	}

	var count int64
	err := r.db.WithContext(ctx).
		Table(table).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count resource usage",
			"tenant_id", tenantID, "resource", resource.String(), "error", err)
		return 0, fmt.Errorf("failed to count %s usage: %w", resource.String(), err)
	}

	return count, nil
}

// bookingsThisMonth counts bookings created in the current calendar month
// of the business timezone. The monthly window resets when the business
// does, not at UTC midnight.
func (r *GormUsageReader) bookingsThisMonth(ctx context.Context, tenantID uint) (int64, error) {
	loc := biztime.Location()
	now := time.Now().In(loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).UTC()
	monthEnd := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, loc).UTC()

	var count int64
	err := r.db.WithContext(ctx).
		Table("bookings").
		Where("tenant_id = ?", tenantID).
		Where("created_at >= ? AND created_at < ?", monthStart, monthEnd).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count monthly bookings",
			"tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count monthly bookings: %w", err)
	}

	return count, nil
}
