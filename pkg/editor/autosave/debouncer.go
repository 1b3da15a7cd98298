// Package autosave coalesces rapid edits into a single persisted write after
// a quiet period, with an explicit flush for session switches.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/lexical"

	"github.com/google/uuid"
)

var (
	// ErrNoteDeleted means the note disappeared while it was being edited.
	ErrNoteDeleted = errors.New("note was deleted")
	// ErrVaultLocked means the note is password protected and not unlocked.
	ErrVaultLocked = errors.New("note is locked")
	// ErrUnlockPending means FlushNow gave up waiting for a vault password.
	// The edit is kept and written if the vault is unlocked later.
	ErrUnlockPending = errors.New("waiting for vault unlock")
)

// Edit is one inbound change. A nil field was not part of the change.
type Edit struct {
	SessionID string
	Title     *string
	Content   *string
	Type      string
}

// PendingEdit is the latest known state of the note in the session.
type PendingEdit struct {
	SessionID string
	NoteID    *uuid.UUID
	Title     string
	Content   string
	Type      string
	Dirty     bool
}

// Seed is the state a session starts from.
type Seed struct {
	Title   string
	Content string
	Type    string
}

// Persister writes a pending edit. It creates the note when NoteID is nil and
// returns the id that was written.
type Persister interface {
	Persist(ctx context.Context, edit PendingEdit) (uuid.UUID, error)
}

// Unlocker prompts for the vault password of a note. It returns nil once the
// note can be written.
type Unlocker interface {
	Unlock(ctx context.Context, noteID uuid.UUID) error
}

// Hooks report outcomes of timer-driven saves, which have no caller to return to.
type Hooks struct {
	OnSaved   func(edit PendingEdit, noteID uuid.UUID, created bool)
	OnDeleted func(sessionID string, noteID uuid.UUID)
	OnError   func(sessionID string, err error)
}

type Debouncer struct {
	delay     time.Duration
	persister Persister
	unlocker  Unlocker
	hooks     Hooks
	logger    logger.ILogger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending PendingEdit
	timer   *time.Timer
	gen     uint64
	seq     uint64

	// sem serialises writes so a create is never issued twice.
	sem    chan struct{}
	parked map[uuid.UUID]*lockedEdit
}

// lockedEdit is an edit held back while its vault waits for a password.
// Newer edits of the same note replace snap; the latest one is written
// once the vault unlocks, whether or not a caller still waits.
type lockedEdit struct {
	snap      PendingEdit
	seq       uint64
	version   int
	observers int
	finished  bool
	err       error
	done      chan struct{}
}

func NewDebouncer(delay time.Duration, persister Persister, unlocker Unlocker, hooks Hooks, log logger.ILogger) *Debouncer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		delay:     delay,
		persister: persister,
		unlocker:  unlocker,
		hooks:     hooks,
		logger:    log,
		baseCtx:   ctx,
		cancel:    cancel,
		sem:       make(chan struct{}, 1),
		parked:    make(map[uuid.UUID]*lockedEdit),
	}
}

// Reset binds the buffer to a new session. Any timer is cancelled; callers
// flush first if the old buffer matters.
func (d *Debouncer) Reset(sessionID string, noteID *uuid.UUID, seed Seed) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending.Dirty {
		d.logger.Warn("Autosave", "Discarding unsaved edit on reset", map[string]interface{}{"session_id": d.pending.SessionID})
	}
	d.stopTimerLocked()

	var id *uuid.UUID
	if noteID != nil {
		v := *noteID
		id = &v
	}
	d.pending = PendingEdit{
		SessionID: sessionID,
		NoteID:    id,
		Title:     seed.Title,
		Content:   seed.Content,
		Type:      seed.Type,
	}
}

// Clear unbinds the buffer; every edit is rejected until the next Reset.
func (d *Debouncer) Clear() {
	d.Reset("", nil, Seed{})
}

// OnEdit records an edit and restarts the quiet-period timer. It returns
// false when the edit belongs to another session.
func (d *Debouncer) OnEdit(edit Edit) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if edit.SessionID == "" || edit.SessionID != d.pending.SessionID {
		return false
	}
	if edit.Title == nil && edit.Content == nil {
		return false
	}

	if edit.Title != nil {
		d.pending.Title = *edit.Title
	}
	if edit.Content != nil {
		d.pending.Content = *edit.Content
		if edit.Type != "" {
			d.pending.Type = edit.Type
		}
	}
	d.pending.Dirty = true
	d.seq++

	d.stopTimerLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	return true
}

// Pending returns a copy of the buffer.
func (d *Debouncer) Pending() PendingEdit {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending.Dirty
}

// FlushNow cancels the timer and persists immediately. A clean buffer is a
// no-op. When the note's vault is locked it waits for the unlock until ctx
// ends, then returns ErrUnlockPending and leaves the edit parked.
func (d *Debouncer) FlushNow(ctx context.Context) error {
	d.mu.Lock()
	d.stopTimerLocked()
	d.mu.Unlock()

	le, err := d.persist(ctx)
	if le == nil {
		return err
	}
	return d.awaitUnlock(ctx, le)
}

// Close stops the timer and aborts timer-driven saves in flight.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.stopTimerLocked()
	d.mu.Unlock()
	d.cancel()
}

// stopTimerLocked also bumps the generation so a timer that already fired
// but has not taken the lock yet becomes a no-op.
func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	sessionID := d.pending.SessionID
	d.mu.Unlock()

	le, err := d.persist(d.baseCtx)
	if err == nil || le != nil {
		return
	}
	d.report(sessionID, err)
}

// report routes the outcome of a save nobody waits for to the hooks.
func (d *Debouncer) report(sessionID string, err error) {
	var deleted *deletedError
	switch {
	case errors.As(err, &deleted):
		if d.hooks.OnDeleted != nil {
			d.hooks.OnDeleted(sessionID, deleted.noteID)
		}
	case errors.Is(err, context.Canceled):
	default:
		if d.hooks.OnError != nil {
			d.hooks.OnError(sessionID, err)
		}
	}
}

func (d *Debouncer) acquire(ctx context.Context) error {
	select {
	case d.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Debouncer) release() {
	<-d.sem
}

// persist writes the buffer once. A locked vault parks the edit and returns
// it instead of an error.
func (d *Debouncer) persist(ctx context.Context) (*lockedEdit, error) {
	if err := d.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.release()

	d.mu.Lock()
	if !d.pending.Dirty {
		d.mu.Unlock()
		return nil, nil
	}
	snap := d.pending
	seq := d.seq
	d.pending.Dirty = false

	if snap.NoteID == nil && strings.TrimSpace(snap.Title) == "" && lexical.IsEmpty(snap.Content) {
		d.mu.Unlock()
		d.logger.Debug("Autosave", "Skipping save of empty new note", map[string]interface{}{"session_id": snap.SessionID})
		return nil, nil
	}
	d.mu.Unlock()

	noteID, err := d.persister.Persist(ctx, snap)
	if errors.Is(err, ErrVaultLocked) && d.unlocker != nil && snap.NoteID != nil {
		return d.park(snap, seq), nil
	}
	return nil, d.settle(snap, seq, noteID, err)
}

// settle applies the result of one write to the buffer.
func (d *Debouncer) settle(snap PendingEdit, seq uint64, noteID uuid.UUID, err error) error {
	d.mu.Lock()
	sameSession := d.pending.SessionID == snap.SessionID
	if err != nil {
		if errors.Is(err, ErrNoteDeleted) {
			if sameSession {
				d.pending.Dirty = false
			}
			d.mu.Unlock()
			d.logger.Warn("Autosave", "Dropping edit for deleted note", map[string]interface{}{"session_id": snap.SessionID})
			var id uuid.UUID
			if snap.NoteID != nil {
				id = *snap.NoteID
			}
			return &deletedError{noteID: id}
		}
		d.restoreLocked(snap, seq)
		d.mu.Unlock()
		return err
	}

	created := snap.NoteID == nil
	if created && sameSession {
		d.pending.NoteID = &noteID
	}
	d.mu.Unlock()

	d.logger.Debug("Autosave", "Edit persisted", map[string]interface{}{"note_id": noteID, "created": created})
	if d.hooks.OnSaved != nil {
		d.hooks.OnSaved(snap, noteID, created)
	}
	return nil
}

// restoreLocked puts a failed edit back unless something newer replaced it.
func (d *Debouncer) restoreLocked(snap PendingEdit, seq uint64) {
	if d.pending.SessionID == snap.SessionID && d.seq == seq {
		d.pending.Dirty = true
	}
}

func (d *Debouncer) park(snap PendingEdit, seq uint64) *lockedEdit {
	d.mu.Lock()
	defer d.mu.Unlock()

	noteID := *snap.NoteID
	if le, ok := d.parked[noteID]; ok {
		le.snap, le.seq = snap, seq
		le.version++
		return le
	}
	le := &lockedEdit{snap: snap, seq: seq, done: make(chan struct{})}
	d.parked[noteID] = le
	d.logger.Info("Autosave", "Note is locked, waiting for unlock", map[string]interface{}{"note_id": noteID, "session_id": snap.SessionID})
	go d.unlockAndReplay(noteID, le)
	return le
}

// unlockAndReplay runs the unlock prompt on the debouncer's own context, so
// its deadline is the Unlocker's and not a flush deadline.
func (d *Debouncer) unlockAndReplay(noteID uuid.UUID, le *lockedEdit) {
	if err := d.unlocker.Unlock(d.baseCtx, noteID); err != nil {
		err = fmt.Errorf("unlock note %s: %w", noteID, err)
		d.mu.Lock()
		snap := le.snap
		d.restoreLocked(snap, le.seq)
		observed := d.finishLocked(noteID, le, err)
		d.mu.Unlock()
		if !observed {
			d.report(snap.SessionID, err)
		}
		return
	}

	for {
		d.mu.Lock()
		snap, seq, version := le.snap, le.seq, le.version
		d.mu.Unlock()

		err := d.replay(snap, seq)

		d.mu.Lock()
		if err == nil && le.version != version {
			d.mu.Unlock()
			continue
		}
		observed := d.finishLocked(noteID, le, err)
		d.mu.Unlock()
		if err != nil && !observed {
			d.report(snap.SessionID, err)
		}
		return
	}
}

func (d *Debouncer) replay(snap PendingEdit, seq uint64) error {
	if err := d.acquire(d.baseCtx); err != nil {
		return err
	}
	defer d.release()

	noteID, err := d.persister.Persist(d.baseCtx, snap)
	return d.settle(snap, seq, noteID, err)
}

// finishLocked reports whether a FlushNow caller is waiting for the result.
func (d *Debouncer) finishLocked(noteID uuid.UUID, le *lockedEdit, err error) bool {
	le.err = err
	le.finished = true
	if d.parked[noteID] == le {
		delete(d.parked, noteID)
	}
	close(le.done)
	return le.observers > 0
}

func (d *Debouncer) awaitUnlock(ctx context.Context, le *lockedEdit) error {
	d.mu.Lock()
	if le.finished {
		err := le.err
		d.mu.Unlock()
		return err
	}
	le.observers++
	d.mu.Unlock()

	select {
	case <-le.done:
		return le.err
	case <-ctx.Done():
		d.mu.Lock()
		defer d.mu.Unlock()
		if le.finished {
			return le.err
		}
		le.observers--
		return fmt.Errorf("%w: %w", ErrUnlockPending, ctx.Err())
	}
}

// deletedError keeps ErrNoteDeleted matchable while carrying the note id.
type deletedError struct {
	noteID uuid.UUID
}

func (e *deletedError) Error() string {
	return fmt.Sprintf("note %s: %v", e.noteID, ErrNoteDeleted)
}

func (e *deletedError) Unwrap() error {
	return ErrNoteDeleted
}
