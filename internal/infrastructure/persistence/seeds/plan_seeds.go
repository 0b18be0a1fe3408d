package seeds

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/id"
)

// SeedPlans seeds the plan catalog. Plans are matched by slug so reruns
// never duplicate rows or overwrite admin edits.
func SeedPlans(db *gorm.DB) error {
	gratisSID, err := id.NewPlanID()
	if err != nil {
		return err
	}
	profesionalSID, err := id.NewPlanID()
	if err != nil {
		return err
	}
	empresaSID, err := id.NewPlanID()
	if err != nil {
		return err
	}

	plans := []models.PlanModel{
		{
			SID:          gratisSID,
			Name:         "Gratis",
			Slug:         "gratis",
			PriceMonthly: 0,
			PriceYearly:  0,
			Currency:     "ARS",
			TrialDays:    0,
			Features:     datatypes.JSON(`["online_booking","booking_reminders"]`),
			Limits:       datatypes.JSON(`{"max_branches":1,"max_employees":2,"max_services":5,"max_bookings_per_month":50,"max_customers":100}`),
			Status:       "active",
			SortOrder:    1,
		},
		{
			SID:          profesionalSID,
			Name:         "Profesional",
			Slug:         "profesional",
			PriceMonthly: 1499900,
			PriceYearly:  14999000,
			Currency:     "ARS",
			TrialDays:    14,
			Features:     datatypes.JSON(`["online_booking","booking_reminders","deposits","custom_branding","reports"]`),
			Limits:       datatypes.JSON(`{"max_branches":3,"max_employees":10,"max_services":50,"max_bookings_per_month":1000,"max_customers":null}`),
			Status:       "active",
			SortOrder:    2,
		},
		{
			SID:          empresaSID,
			Name:         "Empresa",
			Slug:         "empresa",
			PriceMonthly: 3999900,
			PriceYearly:  39999000,
			Currency:     "ARS",
			TrialDays:    14,
			Features:     datatypes.JSON(`["online_booking","booking_reminders","deposits","custom_branding","reports","multi_branch","priority_support"]`),
			Limits:       datatypes.JSON(`{"max_branches":null,"max_employees":null,"max_services":null,"max_bookings_per_month":null,"max_customers":null}`),
			Status:       "active",
			SortOrder:    3,
		},
	}

	for _, plan := range plans {
		if err := db.FirstOrCreate(&plan, models.PlanModel{
			Slug: plan.Slug,
		}).Error; err != nil {
			return err
		}
	}

	return nil
}
