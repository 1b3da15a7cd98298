package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEditorDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, DefaultEditorConfig(), cfg.Editor)
	assert.NotEmpty(t, cfg.App.InstanceID)
}

func TestLoadEditorOverrides(t *testing.T) {
	t.Setenv("EDITOR_DEBOUNCE_MS", "150")
	t.Setenv("EDITOR_PROBE_INTERVAL_MS", "0")
	t.Setenv("EDITOR_PROBE_TIMEOUT_MS", "not-a-number")
	t.Setenv("INSTANCE_ID", "node-7")

	cfg := Load()
	assert.Equal(t, 150*time.Millisecond, cfg.Editor.DebounceDelay)
	assert.Equal(t, time.Duration(0), cfg.Editor.ProbeInterval)
	assert.Equal(t, time.Second, cfg.Editor.ProbeTimeout)
	assert.Equal(t, "node-7", cfg.App.InstanceID)
}
