package bridge

import (
	"encoding/json"
	"fmt"
)

// Outbound command types (host -> surface).
const (
	CmdLoadContent  = "load-content"
	CmdSetTitle     = "set-title"
	CmdThemeUpdate  = "theme-update"
	CmdCheckStatus  = "check-status"
	CmdClearContent = "clear-content"
)

// Inbound event types (surface -> host).
const (
	EvtEditedContent  = "edited-content"
	EvtEditedTitle    = "edited-title"
	EvtScrollPosition = "scroll-position"
	EvtStatusAck      = "status-ack"
	EvtError          = "error"
)

// Message is the single frame shape in both directions.
type Message struct {
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

// Decode unmarshals Value into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Value) == 0 {
		return fmt.Errorf("message %s has no value", m.Type)
	}
	if err := json.Unmarshal(m.Value, v); err != nil {
		return fmt.Errorf("decode %s value: %w", m.Type, err)
	}
	return nil
}

// ContentPayload travels with load-content and edited-content.
type ContentPayload struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Type    string `json:"type"`
	// Locked marks a vault note on load-content so the surface can show it.
	Locked bool `json:"locked,omitempty"`
}

// ErrorPayload is what the surface reports when its own code throws.
type ErrorPayload struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}
