package events

// Editor lifecycle events announced to the rest of the application
// (headers, overlays, list refreshers). Names and payload keys are the contract.
const (
	EditorLoadingNote         = "EDITOR_LOADING_NOTE"
	EditorNoteLoaded          = "EDITOR_NOTE_LOADED"
	EditorSessionEnded        = "EDITOR_SESSION_ENDED"
	EditorSurfaceUnresponsive = "EDITOR_SURFACE_UNRESPONSIVE"
	EditorToast               = "EDITOR_TOAST"
	EditorUnlockRequired      = "EDITOR_UNLOCK_REQUIRED"
	EditorNoteSaved           = "EDITOR_NOTE_SAVED"

	// NoteDeleted arrives from the sync layer over NATS.
	NoteDeleted = "NOTE_DELETED"
)

// EditorEventTypes lists every event the editor publishes.
var EditorEventTypes = []string{
	EditorLoadingNote,
	EditorNoteLoaded,
	EditorSessionEnded,
	EditorSurfaceUnresponsive,
	EditorToast,
	EditorUnlockRequired,
	EditorNoteSaved,
}

// Payload keys.
const (
	KeyNoteID    = "note_id"
	KeySessionID = "session_id"
	KeyMessage   = "message"
	KeyLevel     = "level"
	KeyCreated   = "created"
	KeyReason    = "reason"
	KeyVaultID   = "vault_id"
)

// Toast levels.
const (
	LevelInfo  = "info"
	LevelError = "error"
)
