package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

// HandshakeRepositoryImpl maps models inline; the handshake row is five
// columns and never leaves this package except as a domain entity.
type HandshakeRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewHandshakeRepository(
	db *gorm.DB,
	logger logger.Interface,
) gateway.HandshakeRepository {
	return &HandshakeRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *HandshakeRepositoryImpl) Replace(ctx context.Context, h *gateway.Handshake) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", h.TenantID()).
			Delete(&models.GatewayHandshakeModel{}).Error; err != nil {
			return err
		}

		model := &models.GatewayHandshakeModel{
			TenantID:  h.TenantID(),
			Nonce:     h.Nonce(),
			Sandbox:   h.Sandbox(),
			ExpiresAt: h.ExpiresAt(),
			CreatedAt: h.CreatedAt(),
		}
		return tx.Create(model).Error
	})
	if err != nil {
		r.logger.Errorw("failed to replace gateway handshake",
			"tenant_id", h.TenantID(), "error", err)
		return fmt.Errorf("failed to replace gateway handshake: %w", err)
	}

	return nil
}

func (r *HandshakeRepositoryImpl) Consume(ctx context.Context, nonce string) (*gateway.Handshake, error) {
	var model models.GatewayHandshakeModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("nonce = ?", nonce).First(&model).Error; err != nil {
			return err
		}

		// The delete doubles as the single-use guard: two concurrent
		// consumers can both read the row, but only one delete removes it.
		result := tx.Where("id = ?", model.ID).Delete(&models.GatewayHandshakeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateway.ErrHandshakeNotFound
		}
		r.logger.Errorw("failed to consume gateway handshake", "error", err)
		return nil, fmt.Errorf("failed to consume gateway handshake: %w", err)
	}

	return gateway.ReconstructHandshake(
		model.TenantID, model.Nonce, model.Sandbox, model.CreatedAt, model.ExpiresAt,
	), nil
}
