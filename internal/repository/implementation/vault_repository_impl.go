package implementation

import (
	"context"
	"errors"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/mapper"
	"notefiber-editor-be/internal/model"
	"notefiber-editor-be/internal/repository/contract"
	"notefiber-editor-be/internal/repository/specification"

	"gorm.io/gorm"
)

type VaultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VaultMapper
}

func NewVaultRepository(db *gorm.DB) contract.VaultRepository {
	return &VaultRepositoryImpl{
		db:     db,
		mapper: mapper.NewVaultMapper(),
	}
}

func (r *VaultRepositoryImpl) Create(ctx context.Context, vault *entity.Vault) error {
	m := r.mapper.ToModel(vault)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*vault = *r.mapper.ToEntity(m)
	return nil
}

func (r *VaultRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Vault, error) {
	var m model.Vault
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
