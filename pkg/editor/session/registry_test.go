package session

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginIssuesFreshIDs(t *testing.T) {
	r := NewRegistry()
	noteID := uuid.New()

	first := r.Begin(&noteID)
	second := r.Begin(&noteID)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, strings.HasPrefix(first.ID, noteID.String()[:8]+"."))
	assert.False(t, r.IsCurrent(first.ID), "older session must be fenced")
	assert.True(t, r.IsCurrent(second.ID))
}

func TestNewSessionHasNoNote(t *testing.T) {
	r := NewRegistry()
	s := r.Begin(nil)

	assert.True(t, s.IsNew())
	assert.True(t, strings.HasPrefix(s.ID, "new."))
}

func TestIsCurrentRejectsEmptyAndEnded(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.IsCurrent(""))

	s := r.Begin(nil)
	prev, ok := r.End()
	require.True(t, ok)
	assert.Equal(t, s.ID, prev.ID)
	assert.False(t, r.IsCurrent(s.ID))

	_, ok = r.End()
	assert.False(t, ok)
}

func TestPromote(t *testing.T) {
	r := NewRegistry()
	s := r.Begin(nil)
	noteID := uuid.New()

	assert.False(t, r.Promote("other", noteID))
	assert.True(t, r.Promote(s.ID, noteID))

	cur, ok := r.Current()
	require.True(t, ok)
	assert.True(t, cur.SameNote(noteID))
	assert.Equal(t, s.ID, cur.ID, "promotion keeps the session id")
}
