package service

import (
	"context"
	"testing"
	"time"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/internal/repository/memory"
	"notefiber-editor-be/pkg/editor/autosave"
	"notefiber-editor-be/pkg/lexical"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteStoreCreatesThenUpdates(t *testing.T) {
	db := newMemoryDB()
	store := NewNoteStore(db, memory.NewUnlockRepository(time.Minute), logger.NewNopLogger())
	ctx := context.Background()

	id, err := store.Persist(ctx, autosave.PendingEdit{Title: "Groceries", Content: "milk and eggs"})
	require.NoError(t, err)

	created := db.note(id)
	require.NotNil(t, created)
	assert.Equal(t, "Groceries", created.Title)
	assert.Equal(t, lexical.ContentType, created.ContentType)
	assert.Equal(t, "milk and eggs", created.Headline)

	again, err := store.Persist(ctx, autosave.PendingEdit{NoteID: &id, Title: "Groceries", Content: "milk, eggs, bread", Type: "lexical"})
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, "milk, eggs, bread", db.note(id).Content)
	assert.Len(t, db.notes, 1)
}

func TestNoteStoreDeletedNote(t *testing.T) {
	db := newMemoryDB()
	store := NewNoteStore(db, memory.NewUnlockRepository(time.Minute), logger.NewNopLogger())
	missing := uuid.New()

	_, err := store.Persist(context.Background(), autosave.PendingEdit{NoteID: &missing, Content: "x"})
	assert.ErrorIs(t, err, autosave.ErrNoteDeleted)
}

func TestNoteStoreRespectsVaultLock(t *testing.T) {
	db := newMemoryDB()
	unlocks := memory.NewUnlockRepository(time.Minute)
	store := NewNoteStore(db, unlocks, logger.NewNopLogger())
	ctx := context.Background()

	vault := uuid.New()
	note := &entity.Note{Id: uuid.New(), Title: "secret", VaultId: &vault}
	db.put(note)

	_, err := store.Persist(ctx, autosave.PendingEdit{NoteID: &note.Id, Title: "secret", Content: "changed"})
	require.ErrorIs(t, err, autosave.ErrVaultLocked)
	assert.Empty(t, db.note(note.Id).Content)

	unlocks.Grant(vault)
	_, err = store.Persist(ctx, autosave.PendingEdit{NoteID: &note.Id, Title: "secret", Content: "changed"})
	require.NoError(t, err)
	assert.Equal(t, "changed", db.note(note.Id).Content)
}
