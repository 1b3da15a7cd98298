package implementation

import (
	"context"
	"errors"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/mapper"
	"notefiber-editor-be/internal/model"
	"notefiber-editor-be/internal/repository/contract"
	"notefiber-editor-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

// Update writes only the editable columns so a concurrent soft delete is not
// resurrected by a full-row save.
func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	res := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", note.Id).
		Updates(map[string]interface{}{
			"title":        note.Title,
			"content":      note.Content,
			"content_type": note.ContentType,
			"headline":     note.Headline,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Note{}, id).Error
}

func (r *NoteRepositoryImpl) SetVault(ctx context.Context, id uuid.UUID, vaultId *uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Note{}).Where("id = ?", id).Update("vault_id", vaultId)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
