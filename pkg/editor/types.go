package editor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSurfaceUnresponsive = errors.New("editing surface did not respond")
	ErrNothingToRetry      = errors.New("no note to retry")
	ErrTornDown            = errors.New("editor controller torn down")
)

// Document is a note as handed to the editor.
type Document struct {
	ID      uuid.UUID
	Title   string
	Content string
	Type    string
	Locked  bool
}

// Theme is forwarded verbatim to the surface.
type Theme struct {
	Name   string            `json:"name"`
	Dark   bool              `json:"dark"`
	Colors map[string]string `json:"colors,omitempty"`
}

type Options struct {
	DebounceDelay time.Duration
	ProbeTimeout  time.Duration
	ProbeInterval time.Duration
	FlushTimeout  time.Duration
}

// Snapshot is a read-only view of the controller for status endpoints.
type Snapshot struct {
	SessionID       string     `json:"session_id,omitempty"`
	NoteID          *uuid.UUID `json:"note_id,omitempty"`
	OpenedAt        *time.Time `json:"opened_at,omitempty"`
	Editing         bool       `json:"editing"`
	Dirty           bool       `json:"dirty"`
	Locked          bool       `json:"locked"`
	Readiness       string     `json:"readiness"`
	LastProbeAt     *time.Time `json:"last_probe_at,omitempty"`
	ScrollPosition  float64    `json:"scroll_position"`
	SurfaceAttached bool       `json:"surface_attached"`
	SurfaceResets   int        `json:"surface_resets"`
}

// Reasons carried by EDITOR_SESSION_ENDED.
const (
	ReasonSwitched     = "switched"
	ReasonClosed       = "closed"
	ReasonDeleted      = "deleted"
	ReasonUnresponsive = "unresponsive"
	ReasonTeardown     = "teardown"
)
