package main

import (
	"testing"

	"notefiber-editor-be/pkg/lexical"

	"github.com/stretchr/testify/assert"
)

func TestDemoNotes(t *testing.T) {
	notes := demoNotes()
	assert.Len(t, notes, 3)

	var locked int
	for _, n := range notes {
		assert.Equal(t, lexical.ContentType, n.ContentType)
		assert.NotEmpty(t, n.Headline, n.Title)
		assert.False(t, lexical.IsEmpty(n.Content), n.Title)
		if n.VaultId != nil {
			locked++
			assert.Equal(t, demoVaultID, *n.VaultId)
		}
	}
	assert.Equal(t, 1, locked)
}
