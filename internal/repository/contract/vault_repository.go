package contract

import (
	"context"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/repository/specification"
)

type VaultRepository interface {
	Create(ctx context.Context, vault *entity.Vault) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Vault, error)
}
