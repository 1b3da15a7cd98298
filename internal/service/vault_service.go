package service

import (
	"context"
	"sync"
	"time"

	"notefiber-editor-be/internal/dto"
	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/internal/repository/memory"
	"notefiber-editor-be/internal/repository/specification"
	"notefiber-editor-be/internal/repository/unitofwork"
	"notefiber-editor-be/pkg/editor/autosave"
	"notefiber-editor-be/pkg/eventbus"
	"notefiber-editor-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IVaultService interface {
	// Unlock is the autosave unlock prompt for a single note.
	Unlock(ctx context.Context, noteID uuid.UUID) error
	EnsureUnlocked(ctx context.Context, note *entity.Note) error
	SubmitPassword(ctx context.Context, req *dto.UnlockRequest) error
	Create(ctx context.Context, req *dto.CreateVaultRequest) (*dto.CreateVaultResponse, error)
	AddNote(ctx context.Context, vaultID, noteID uuid.UUID) error
	Lock(vaultID uuid.UUID)
	// LockAll forgets every unlocked vault.
	LockAll()
}

type vaultService struct {
	uowFactory unitofwork.RepositoryFactory
	unlocks    *memory.UnlockRepository
	publisher  eventbus.Publisher
	timeout    time.Duration
	logger     logger.ILogger

	mu      sync.Mutex
	waiters map[uuid.UUID][]chan struct{}
}

func NewVaultService(
	uowFactory unitofwork.RepositoryFactory,
	unlocks *memory.UnlockRepository,
	publisher eventbus.Publisher,
	timeout time.Duration,
	log logger.ILogger,
) IVaultService {
	return &vaultService{
		uowFactory: uowFactory,
		unlocks:    unlocks,
		publisher:  publisher,
		timeout:    timeout,
		logger:     log,
		waiters:    make(map[uuid.UUID][]chan struct{}),
	}
}

func (s *vaultService) Unlock(ctx context.Context, noteID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteID})
	if err != nil {
		return err
	}
	if note == nil {
		return autosave.ErrNoteDeleted
	}
	return s.EnsureUnlocked(ctx, note)
}

// EnsureUnlocked returns at once for unlocked vaults. Otherwise it announces
// EDITOR_UNLOCK_REQUIRED and waits for a matching SubmitPassword.
func (s *vaultService) EnsureUnlocked(ctx context.Context, note *entity.Note) error {
	if !note.Locked() {
		return nil
	}
	vaultID := *note.VaultId
	if s.unlocks.Granted(vaultID) {
		return nil
	}

	ch := make(chan struct{})
	s.mu.Lock()
	s.waiters[vaultID] = append(s.waiters[vaultID], ch)
	s.mu.Unlock()
	defer s.dropWaiter(vaultID, ch)

	s.publisher.Publish(events.New(events.EditorUnlockRequired, map[string]interface{}{
		events.KeyNoteID:  note.Id.String(),
		events.KeyVaultID: vaultID.String(),
	}))
	s.logger.Info("Vault", "Waiting for vault password", map[string]interface{}{"vault_id": vaultID, "note_id": note.Id})

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return nil
	case <-timer.C:
		return ErrUnlockTimedOut
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *vaultService) SubmitPassword(ctx context.Context, req *dto.UnlockRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	vault, err := uow.VaultRepository().FindOne(ctx, specification.ByID{ID: req.VaultId})
	if err != nil {
		return err
	}
	if vault == nil {
		return ErrVaultNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(vault.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Vault", "Wrong vault password", map[string]interface{}{"vault_id": vault.Id})
		return ErrWrongVaultPassword
	}

	s.unlocks.Grant(vault.Id)

	s.mu.Lock()
	waiting := s.waiters[vault.Id]
	delete(s.waiters, vault.Id)
	s.mu.Unlock()

	for _, ch := range waiting {
		close(ch)
	}
	s.logger.Info("Vault", "Vault unlocked", map[string]interface{}{"vault_id": vault.Id, "waiters": len(waiting)})
	return nil
}

func (s *vaultService) Create(ctx context.Context, req *dto.CreateVaultRequest) (*dto.CreateVaultResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	vault := entity.Vault{
		Id:           uuid.New(),
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.VaultRepository().Create(ctx, &vault); err != nil {
		return nil, err
	}
	return &dto.CreateVaultResponse{Id: vault.Id}, nil
}

func (s *vaultService) AddNote(ctx context.Context, vaultID, noteID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	vault, err := uow.VaultRepository().FindOne(ctx, specification.ByID{ID: vaultID})
	if err != nil {
		return err
	}
	if vault == nil {
		return ErrVaultNotFound
	}

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteID})
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNoteNotFound
	}
	return uow.NoteRepository().SetVault(ctx, noteID, &vaultID)
}

func (s *vaultService) Lock(vaultID uuid.UUID) {
	s.unlocks.Revoke(vaultID)
	s.logger.Info("Vault", "Vault locked", map[string]interface{}{"vault_id": vaultID})
}

func (s *vaultService) LockAll() {
	s.unlocks.RevokeAll()
	s.logger.Info("Vault", "All vaults locked", nil)
}

func (s *vaultService) dropWaiter(vaultID uuid.UUID, ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	waiting := s.waiters[vaultID]
	for i, w := range waiting {
		if w == ch {
			s.waiters[vaultID] = append(waiting[:i], waiting[i+1:]...)
			break
		}
	}
	if len(s.waiters[vaultID]) == 0 {
		delete(s.waiters, vaultID)
	}
}
