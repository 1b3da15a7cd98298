package implementation_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/model"
	"notefiber-editor-be/internal/repository/specification"
	"notefiber-editor-be/internal/repository/unitofwork"
	"notefiber-editor-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.Open(dsn, database.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Vault{}, &model.Note{}))
	return db
}

func TestNoteRepositoryAgainstPostgres(t *testing.T) {
	db := openTestDB(t)

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	notes := uow.NoteRepository()

	note := &entity.Note{Id: uuid.New(), Title: "integration", Content: "first", ContentType: "lexical"}
	require.NoError(t, notes.Create(ctx, note))
	t.Cleanup(func() {
		db.Unscoped().Delete(&model.Note{}, note.Id)
	})

	t.Run("update writes editable columns", func(t *testing.T) {
		note.Content = "second"
		note.Headline = "second"
		require.NoError(t, notes.Update(ctx, note))

		got, err := notes.FindOne(ctx, specification.ByID{ID: note.Id})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "second", got.Content)
	})

	t.Run("update after delete reports not found", func(t *testing.T) {
		require.NoError(t, notes.Delete(ctx, note.Id))

		err := notes.Update(ctx, note)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		got, err := notes.FindOne(ctx, specification.ByID{ID: note.Id})
		require.NoError(t, err)
		assert.Nil(t, got)

		deleted, err := notes.FindOne(ctx, specification.ByID{ID: note.Id}, specification.IncludeDeleted{})
		require.NoError(t, err)
		assert.NotNil(t, deleted)
	})
}

func TestInTransactionRollsBack(t *testing.T) {
	db := openTestDB(t)

	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(db)
	id := uuid.New()
	boom := errors.New("boom")

	err := unitofwork.InTransaction(ctx, factory, func(uow unitofwork.UnitOfWork) error {
		if err := uow.NoteRepository().Create(ctx, &entity.Note{Id: id, Title: "rolled back", ContentType: "lexical"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := factory.NewUnitOfWork(ctx).NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	require.NoError(t, err)
	assert.Nil(t, got)
}
