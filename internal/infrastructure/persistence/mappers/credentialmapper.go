package mappers

import (
	"fmt"

	"github.com/turnex-app/turnex/internal/domain/gateway"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/models"
)

type CredentialMapper interface {
	ToEntity(model *models.GatewayCredentialModel) (*gateway.Credential, error)
	ToModel(entity *gateway.Credential) (*models.GatewayCredentialModel, error)
}

type CredentialMapperImpl struct{}

func NewCredentialMapper() CredentialMapper {
	return &CredentialMapperImpl{}
}

func (m *CredentialMapperImpl) ToEntity(model *models.GatewayCredentialModel) (*gateway.Credential, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := gateway.ReconstructCredential(gateway.CredentialReconstructParams{
		ID:                    model.ID,
		TenantID:              model.TenantID,
		Provider:              model.Provider,
		ExternalAccountID:     model.ExternalAccountID,
		EncryptedAccessToken:  model.EncryptedAccessToken,
		EncryptedRefreshToken: model.EncryptedRefreshToken,
		PublicKey:             model.PublicKey,
		TokenExpiresAt:        model.TokenExpiresAt,
		Connected:             model.Connected,
		Sandbox:               model.Sandbox,
		DisconnectedReason:    model.DisconnectedReason,
		Version:               model.Version,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct credential entity: %w", err)
	}

	return entity, nil
}

func (m *CredentialMapperImpl) ToModel(entity *gateway.Credential) (*models.GatewayCredentialModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.GatewayCredentialModel{
		ID:                    entity.ID(),
		TenantID:              entity.TenantID(),
		Provider:              entity.Provider(),
		ExternalAccountID:     entity.ExternalAccountID(),
		EncryptedAccessToken:  entity.EncryptedAccessToken(),
		EncryptedRefreshToken: entity.EncryptedRefreshToken(),
		PublicKey:             entity.PublicKey(),
		TokenExpiresAt:        entity.TokenExpiresAt(),
		Connected:             entity.Connected(),
		Sandbox:               entity.Sandbox(),
		DisconnectedReason:    entity.DisconnectedReason(),
		Version:               entity.Version(),
		CreatedAt:             entity.CreatedAt(),
		UpdatedAt:             entity.UpdatedAt(),
	}, nil
}
