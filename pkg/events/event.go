package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "EDITOR_NOTE_LOADED").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

// BaseEvent is the only Event implementation shipped with the service. Its
// JSON form is the envelope used on every transport: the in-process bus,
// NATS subjects and listener websockets.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New stamps an event with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

// Marshal encodes any Event as the shared envelope.
func Marshal(evt Event) ([]byte, error) {
	return json.Marshal(BaseEvent{
		Type:       evt.EventType(),
		Data:       evt.Payload(),
		OccurredAt: evt.Timestamp(),
	})
}

// Unmarshal decodes an envelope. An envelope without a type is an error;
// a missing data object decodes as an empty payload.
func Unmarshal(data []byte) (BaseEvent, error) {
	var evt BaseEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return BaseEvent{}, err
	}
	if evt.Type == "" {
		return BaseEvent{}, fmt.Errorf("event envelope has no type")
	}
	if evt.Data == nil {
		evt.Data = map[string]interface{}{}
	}
	return evt, nil
}

// StringField reads a string payload value, returning "" when the key is
// missing or holds another type.
func StringField(evt Event, key string) string {
	s, _ := evt.Payload()[key].(string)
	return s
}
