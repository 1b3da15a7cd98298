package service

import (
	"context"
	"sync"

	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/repository/contract"
	"notefiber-editor-be/internal/repository/specification"
	"notefiber-editor-be/internal/repository/unitofwork"
	"notefiber-editor-be/pkg/editor"
	"notefiber-editor-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memoryDB backs the fake repositories. Specifications other than ByID are
// ignored, which is enough for the services under test.
type memoryDB struct {
	mu      sync.Mutex
	notes   map[uuid.UUID]*entity.Note
	vaults  map[uuid.UUID]*entity.Vault
	updates int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		notes:  make(map[uuid.UUID]*entity.Note),
		vaults: make(map[uuid.UUID]*entity.Vault),
	}
}

func (db *memoryDB) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUow{db: db}
}

func (db *memoryDB) put(n *entity.Note) {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *n
	db.notes[n.Id] = &cp
}

func (db *memoryDB) note(id uuid.UUID) *entity.Note {
	db.mu.Lock()
	defer db.mu.Unlock()
	n, ok := db.notes[id]
	if !ok {
		return nil
	}
	cp := *n
	return &cp
}

func (db *memoryDB) remove(id uuid.UUID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.notes, id)
}

type memoryUow struct {
	db *memoryDB
}

func (u *memoryUow) Begin(ctx context.Context) error { return nil }
func (u *memoryUow) Commit() error                   { return nil }
func (u *memoryUow) Rollback() error                 { return nil }

func (u *memoryUow) NoteRepository() contract.NoteRepository   { return &memoryNotes{db: u.db} }
func (u *memoryUow) VaultRepository() contract.VaultRepository { return &memoryVaults{db: u.db} }

func byID(specs []specification.Specification) (uuid.UUID, bool) {
	for _, s := range specs {
		if id, ok := s.(specification.ByID); ok {
			return id.ID, true
		}
	}
	return uuid.Nil, false
}

type memoryNotes struct {
	db *memoryDB
}

func (r *memoryNotes) Create(ctx context.Context, note *entity.Note) error {
	r.db.put(note)
	return nil
}

func (r *memoryNotes) Update(ctx context.Context, note *entity.Note) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.notes[note.Id]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *note
	r.db.notes[note.Id] = &cp
	r.db.updates++
	return nil
}

func (r *memoryNotes) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.remove(id)
	return nil
}

func (r *memoryNotes) SetVault(ctx context.Context, id uuid.UUID, vaultId *uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n, ok := r.db.notes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.VaultId = vaultId
	return nil
}

func (r *memoryNotes) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	id, ok := byID(specs)
	if !ok {
		return nil, nil
	}
	return r.db.note(id), nil
}

func (r *memoryNotes) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Note, 0, len(r.db.notes))
	for _, n := range r.db.notes {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

type memoryVaults struct {
	db *memoryDB
}

func (r *memoryVaults) Create(ctx context.Context, vault *entity.Vault) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *vault
	r.db.vaults[vault.Id] = &cp
	return nil
}

func (r *memoryVaults) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Vault, error) {
	id, ok := byID(specs)
	if !ok {
		return nil, nil
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.vaults[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(evt events.Event) {
	b.mu.Lock()
	b.events = append(b.events, evt)
	b.mu.Unlock()
}

func (b *recordingBus) ofType(eventType string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type recordingCluster struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (c *recordingCluster) Publish(ctx context.Context, evt events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *recordingCluster) published() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}

type fakeController struct {
	mu      sync.Mutex
	opened  []editor.Document
	newOps  int
	closes  int
	deleted []uuid.UUID
	theme   *editor.Theme
	title   string
	openErr error
}

func (c *fakeController) OpenNote(ctx context.Context, doc editor.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, doc)
	return c.openErr
}

func (c *fakeController) OpenNewNote(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.newOps++
	return nil
}

func (c *fakeController) CloseNote(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeController) Retry(ctx context.Context) error {
	return editor.ErrNothingToRetry
}

func (c *fakeController) UpdateTheme(ctx context.Context, theme editor.Theme) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.theme = &theme
	return nil
}

func (c *fakeController) SetTitle(ctx context.Context, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	return nil
}

func (c *fakeController) NoteDeleted(ctx context.Context, noteID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, noteID)
}

func (c *fakeController) Snapshot() editor.Snapshot {
	return editor.Snapshot{Readiness: "ready"}
}

func (c *fakeController) deletions() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uuid.UUID(nil), c.deleted...)
}
