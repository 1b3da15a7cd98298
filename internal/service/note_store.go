package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/internal/repository/memory"
	"notefiber-editor-be/internal/repository/specification"
	"notefiber-editor-be/internal/repository/unitofwork"
	"notefiber-editor-be/pkg/editor/autosave"
	"notefiber-editor-be/pkg/lexical"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const headlineLength = 140

// NoteStore is the autosave persister backed by the note repository.
type NoteStore struct {
	uowFactory unitofwork.RepositoryFactory
	unlocks    *memory.UnlockRepository
	logger     logger.ILogger
}

func NewNoteStore(uowFactory unitofwork.RepositoryFactory, unlocks *memory.UnlockRepository, log logger.ILogger) *NoteStore {
	return &NoteStore{
		uowFactory: uowFactory,
		unlocks:    unlocks,
		logger:     log,
	}
}

// Persist creates the note when the edit has no id yet, otherwise updates it.
// A note that is gone maps to autosave.ErrNoteDeleted; a vault note whose
// vault is not unlocked maps to autosave.ErrVaultLocked.
func (s *NoteStore) Persist(ctx context.Context, edit autosave.PendingEdit) (uuid.UUID, error) {
	contentType := edit.Type
	if contentType == "" {
		contentType = lexical.ContentType
	}
	headline := lexical.Headline(edit.Content, headlineLength)

	if edit.NoteID == nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		note := entity.Note{
			Id:          uuid.New(),
			Title:       edit.Title,
			Content:     edit.Content,
			ContentType: contentType,
			Headline:    headline,
			CreatedAt:   time.Now(),
		}
		if err := uow.NoteRepository().Create(ctx, &note); err != nil {
			return uuid.Nil, fmt.Errorf("create note: %w", err)
		}
		s.logger.Info("NoteStore", "Note created", map[string]interface{}{"note_id": note.Id})
		return note.Id, nil
	}

	noteID := *edit.NoteID
	err := unitofwork.InTransaction(ctx, s.uowFactory, func(tx unitofwork.UnitOfWork) error {
		note, err := tx.NoteRepository().FindOne(ctx, specification.ByID{ID: noteID})
		if err != nil {
			return fmt.Errorf("load note %s: %w", noteID, err)
		}
		if note == nil {
			return autosave.ErrNoteDeleted
		}
		if note.Locked() && !s.unlocks.Granted(*note.VaultId) {
			return autosave.ErrVaultLocked
		}

		note.Title = edit.Title
		note.Content = edit.Content
		note.ContentType = contentType
		note.Headline = headline

		if err := tx.NoteRepository().Update(ctx, note); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return autosave.ErrNoteDeleted
			}
			return fmt.Errorf("update note %s: %w", noteID, err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return noteID, nil
}
