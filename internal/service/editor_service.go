package service

import (
	"context"
	"fmt"

	"notefiber-editor-be/internal/dto"
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/internal/pkg/serverutils"
	"notefiber-editor-be/internal/repository/specification"
	"notefiber-editor-be/internal/repository/unitofwork"
	"notefiber-editor-be/pkg/editor"
	"notefiber-editor-be/pkg/events"

	"github.com/google/uuid"
)

// SessionController is the part of the editor controller the HTTP surface drives.
type SessionController interface {
	OpenNote(ctx context.Context, doc editor.Document) error
	OpenNewNote(ctx context.Context) error
	CloseNote(ctx context.Context) error
	Retry(ctx context.Context) error
	UpdateTheme(ctx context.Context, theme editor.Theme) error
	SetTitle(ctx context.Context, title string) error
	NoteDeleted(ctx context.Context, noteID uuid.UUID)
	Snapshot() editor.Snapshot
}

// IEventPublisher sends events to the cluster bus.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IEditorService interface {
	State() editor.Snapshot
	Open(ctx context.Context, noteID uuid.UUID) error
	OpenNew(ctx context.Context) error
	Close(ctx context.Context) error
	Retry(ctx context.Context) error
	UpdateTheme(ctx context.Context, req *dto.ThemeRequest) error
	SetTitle(ctx context.Context, req *dto.SetTitleRequest) error
	ListNotes(ctx context.Context, req *dto.ListNotesRequest) ([]*dto.NoteSummary, error)
	DeleteNote(ctx context.Context, noteID uuid.UUID) error
}

type editorService struct {
	uowFactory   unitofwork.RepositoryFactory
	controller   SessionController
	vaultService IVaultService
	cluster      IEventPublisher
	logger       logger.ILogger
}

func NewEditorService(
	uowFactory unitofwork.RepositoryFactory,
	controller SessionController,
	vaultService IVaultService,
	cluster IEventPublisher,
	log logger.ILogger,
) IEditorService {
	return &editorService{
		uowFactory:   uowFactory,
		controller:   controller,
		vaultService: vaultService,
		cluster:      cluster,
		logger:       log,
	}
}

func (s *editorService) State() editor.Snapshot {
	return s.controller.Snapshot()
}

// Open loads the note, asks for the vault password when needed and hands the
// document to the controller.
func (s *editorService) Open(ctx context.Context, noteID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteID})
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNoteNotFound
	}

	if err := s.vaultService.EnsureUnlocked(ctx, note); err != nil {
		return err
	}

	return editorError(s.controller.OpenNote(ctx, editor.Document{
		ID:      note.Id,
		Title:   note.Title,
		Content: note.Content,
		Type:    note.ContentType,
		Locked:  note.Locked(),
	}))
}

func (s *editorService) OpenNew(ctx context.Context) error {
	return editorError(s.controller.OpenNewNote(ctx))
}

func (s *editorService) Close(ctx context.Context) error {
	return editorError(s.controller.CloseNote(ctx))
}

func (s *editorService) Retry(ctx context.Context) error {
	return editorError(s.controller.Retry(ctx))
}

func (s *editorService) UpdateTheme(ctx context.Context, req *dto.ThemeRequest) error {
	return s.controller.UpdateTheme(ctx, editor.Theme{
		Name:   req.Name,
		Dark:   req.Dark,
		Colors: req.Colors,
	})
}

func (s *editorService) SetTitle(ctx context.Context, req *dto.SetTitleRequest) error {
	return s.controller.SetTitle(ctx, req.Title)
}

func (s *editorService) ListNotes(ctx context.Context, req *dto.ListNotesRequest) ([]*dto.NoteSummary, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 20
	}
	specs := []specification.Specification{
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	}
	if req.Query != "" {
		specs = append(specs, specification.NoteSearchQuery{Query: req.Query})
	}
	if req.VaultId != "" {
		vaultID, err := uuid.Parse(req.VaultId)
		if err != nil {
			return nil, serverutils.BadRequest("Invalid vault id", nil)
		}
		specs = append(specs, specification.InVault{VaultID: vaultID})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NoteSummary, 0, len(notes))
	for _, n := range notes {
		res = append(res, &dto.NoteSummary{
			Id:        n.Id,
			Title:     n.Title,
			Headline:  n.Headline,
			Locked:    n.Locked(),
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		})
	}
	return res, nil
}

// DeleteNote removes the note, drops it from the editor without saving and
// tells the other instances.
func (s *editorService) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteID})
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNoteNotFound
	}

	s.controller.NoteDeleted(ctx, noteID)

	if err := uow.NoteRepository().Delete(ctx, noteID); err != nil {
		return fmt.Errorf("delete note %s: %w", noteID, err)
	}

	if s.cluster != nil {
		evt := events.New(events.NoteDeleted, map[string]interface{}{events.KeyNoteID: noteID.String()})
		if err := s.cluster.Publish(ctx, evt); err != nil {
			s.logger.Warn("EditorService", "Failed to publish NOTE_DELETED", map[string]interface{}{"note_id": noteID, "error": err.Error()})
		}
	}
	return nil
}
