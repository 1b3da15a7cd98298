// Package session tracks the one open editing session and fences messages
// that belong to sessions which have already ended.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session identifies one open edit interaction. NoteID is nil while the
// session is composing a note that has never been saved.
type Session struct {
	ID       string
	NoteID   *uuid.UUID
	OpenedAt time.Time
}

// IsNew reports whether the session has not produced a saved note yet.
func (s Session) IsNew() bool {
	return s.NoteID == nil
}

// SameNote reports whether the session is editing noteID.
func (s Session) SameNote(noteID uuid.UUID) bool {
	return s.NoteID != nil && *s.NoteID == noteID
}

type Registry struct {
	mu      sync.RWMutex
	current *Session
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// Begin replaces any current session with a fresh one.
func (r *Registry) Begin(noteID *uuid.UUID) Session {
	s := Session{
		ID:       newSessionID(noteID),
		OpenedAt: r.now(),
	}
	if noteID != nil {
		id := *noteID
		s.NoteID = &id
	}

	r.mu.Lock()
	r.current = &s
	r.mu.Unlock()
	return s
}

// IsCurrent is the fencing check applied to every inbound message.
func (r *Registry) IsCurrent(sessionID string) bool {
	if sessionID == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current != nil && r.current.ID == sessionID
}

func (r *Registry) Current() (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Session{}, false
	}
	return *r.current, true
}

// Promote records the note id a new session produced on its first save.
// It is a no-op when sessionID is no longer current.
func (r *Registry) Promote(sessionID string, noteID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.ID != sessionID {
		return false
	}
	id := noteID
	r.current.NoteID = &id
	return true
}

// End clears the current session and returns what was open.
func (r *Registry) End() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Session{}, false
	}
	prev := *r.current
	r.current = nil
	return prev, true
}

func newSessionID(noteID *uuid.UUID) string {
	token := uuid.NewString()
	if noteID == nil {
		return "new." + token
	}
	return noteID.String()[:8] + "." + token
}
