package mapper

import (
	"time"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/model"
)

type VaultMapper struct{}

func NewVaultMapper() *VaultMapper {
	return &VaultMapper{}
}

func (m *VaultMapper) ToEntity(v *model.Vault) *entity.Vault {
	if v == nil {
		return nil
	}
	var updatedAt *time.Time
	if !v.UpdatedAt.IsZero() {
		t := v.UpdatedAt
		updatedAt = &t
	}
	return &entity.Vault{
		Id:           v.Id,
		Name:         v.Name,
		PasswordHash: v.PasswordHash,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *VaultMapper) ToModel(v *entity.Vault) *model.Vault {
	if v == nil {
		return nil
	}
	var updatedAt time.Time
	if v.UpdatedAt != nil {
		updatedAt = *v.UpdatedAt
	}
	return &model.Vault{
		Id:           v.Id,
		Name:         v.Name,
		PasswordHash: v.PasswordHash,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}
