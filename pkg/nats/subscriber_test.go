package nats

import (
	"testing"
	"time"

	"notefiber-editor-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := []byte(`{"type":"NOTE_DELETED","data":{"note_id":"abc"},"occurred_at":"2026-03-01T10:00:00Z"}`)

	evt, err := decode("events.NOTE_DELETED", raw)
	require.NoError(t, err)
	assert.Equal(t, events.NoteDeleted, evt.EventType())
	assert.Equal(t, "abc", evt.Payload()[events.KeyNoteID])
	assert.True(t, at.Equal(evt.Timestamp()))
}

func TestDecodeBarePayloadUsesSubject(t *testing.T) {
	evt, err := decode("events.NOTE_DELETED", []byte(`{"note_id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, events.NoteDeleted, evt.EventType())
	assert.Equal(t, "abc", evt.Payload()[events.KeyNoteID])
}

func TestDecodeGarbage(t *testing.T) {
	_, err := decode("events.X", []byte(`not json`))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.EDITOR_TOAST", Subject(events.EditorToast))
}
