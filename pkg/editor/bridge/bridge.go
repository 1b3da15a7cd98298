// Package bridge carries JSON messages between the host and the embedded
// editing surface. The transport is injected as a Surface so the same bridge
// serves the websocket client and in-memory test doubles.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"notefiber-editor-be/internal/pkg/logger"
)

var ErrNoSurface = errors.New("no editing surface attached")

// Surface is one live connection to an editing surface.
type Surface interface {
	Send(msg Message) error
	Close() error
}

// InboundHandler receives every decoded inbound message.
type InboundHandler func(msg Message)

type Bridge struct {
	mu      sync.RWMutex
	surface Surface
	handler InboundHandler
	resets  int
	logger  logger.ILogger
}

func New(log logger.ILogger) *Bridge {
	return &Bridge{logger: log}
}

// OnMessage installs the inbound handler. There is only ever one.
func (b *Bridge) OnMessage(handler InboundHandler) {
	b.mu.Lock()
	b.handler = handler
	b.mu.Unlock()
}

// Attach replaces the current surface. The previous one, if any, is closed.
func (b *Bridge) Attach(surface Surface) {
	b.mu.Lock()
	prev := b.surface
	b.surface = surface
	b.mu.Unlock()

	if prev != nil && prev != surface {
		_ = prev.Close()
	}
	b.logger.Info("Bridge", "Surface attached", nil)
}

// Detach drops surface only if it is still the attached one, so a stale
// connection closing late cannot knock out its replacement.
func (b *Bridge) Detach(surface Surface) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface == surface {
		b.surface = nil
	}
}

// Reset tears the surface down. Sends issued afterwards are dropped until a
// new surface attaches.
func (b *Bridge) Reset() {
	b.mu.Lock()
	prev := b.surface
	b.surface = nil
	b.resets++
	resets := b.resets
	b.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	b.logger.Warn("Bridge", "Surface hard reset", map[string]interface{}{"resets": resets})
}

func (b *Bridge) Attached() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.surface != nil
}

// Resets is the number of hard resets since start.
func (b *Bridge) Resets() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resets
}

// Send posts one command. ErrNoSurface is returned, not logged, so callers
// decide whether a dropped frame matters.
func (b *Bridge) Send(ctx context.Context, msgType string, value interface{}, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := Message{Type: msgType, SessionID: sessionID}
	if value != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", msgType, err)
		}
		msg.Value = raw
	}

	b.mu.RLock()
	surface := b.surface
	b.mu.RUnlock()
	if surface == nil {
		return ErrNoSurface
	}

	if err := surface.Send(msg); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}

// Dispatch decodes a raw frame and hands it to the inbound handler.
func (b *Bridge) Dispatch(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		b.logger.Warn("Bridge", "Dropping malformed surface frame", map[string]interface{}{"error": err.Error()})
		return
	}
	if msg.Type == "" {
		b.logger.Warn("Bridge", "Dropping untyped surface frame", nil)
		return
	}
	b.Deliver(msg)
}

// Deliver hands an already-decoded message to the handler.
func (b *Bridge) Deliver(msg Message) {
	b.mu.RLock()
	handler := b.handler
	b.mu.RUnlock()
	if handler == nil {
		return
	}
	handler(msg)
}
