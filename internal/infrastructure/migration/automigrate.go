package migration

import (
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.PaymentModel{},
		&models.BookingModel{},
		&models.GatewayCredentialModel{},
		&models.GatewayHandshakeModel{},
		&models.TenantSettingModel{},
	}
}
