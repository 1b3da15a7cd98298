package contract

import (
	"context"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/repository/specification"

	"github.com/google/uuid"
)

// NoteRepository is the editor's view of the note table. Reads skip
// soft-deleted rows unless specification.IncludeDeleted is passed.
type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// Update writes the editable columns and returns gorm.ErrRecordNotFound
	// when the row is gone or soft-deleted.
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetVault(ctx context.Context, id uuid.UUID, vaultId *uuid.UUID) error
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
}
