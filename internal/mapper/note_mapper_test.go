package mapper

import (
	"testing"
	"time"

	"notefiber-editor-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNoteMapperSoftDelete(t *testing.T) {
	m := NewNoteMapper()
	vault := uuid.New()
	deletedAt := time.Now().Add(-time.Minute)

	e := m.ToEntity(&model.Note{
		Id:        uuid.New(),
		Title:     "t",
		VaultId:   &vault,
		DeletedAt: gorm.DeletedAt{Time: deletedAt, Valid: true},
	})
	require.NotNil(t, e)
	assert.True(t, e.IsDeleted)
	assert.True(t, e.Locked())
	assert.Nil(t, e.UpdatedAt)

	// The vault id is copied, not shared.
	*e.VaultId = uuid.New()
	assert.NotEqual(t, *e.VaultId, vault)

	back := m.ToModel(e)
	assert.True(t, back.DeletedAt.Valid)
	assert.WithinDuration(t, deletedAt, back.DeletedAt.Time, time.Millisecond)
}

func TestNoteMapperNil(t *testing.T) {
	m := NewNoteMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
}
