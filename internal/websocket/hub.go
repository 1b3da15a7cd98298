package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

const fanoutChannel = "editor_events"

// fanout wraps a frame on the redis channel. Origin lets an instance skip
// its own broadcasts.
type fanout struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

// Hub pushes editor events to every connected UI listener, on this instance
// and, through redis, on every other one.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, instanceID string, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceID: instanceID,
		logger:     log,
	}
}

// Start runs the registration loop until ctx ends and subscribes to the
// fanout channel. When redis is unreachable the hub keeps serving local
// listeners and the subscribe error is returned.
func (h *Hub) Start(ctx context.Context) error {
	go h.run(ctx)

	rdb := h.fanoutClient()
	if rdb == nil {
		return nil
	}
	pubsub := rdb.Subscribe(ctx, fanoutChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		h.mu.Lock()
		h.rdb = nil
		h.mu.Unlock()
		h.logger.Warn("Hub", "Redis fanout unavailable, serving local listeners only", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("subscribe %s: %w", fanoutChannel, err)
	}
	go h.consumeRedis(ctx, pubsub)
	return nil
}

func (h *Hub) fanoutClient() *redis.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rdb
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub", "Listener registered", map[string]interface{}{"user_id": client.UserID, "listeners": count})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// Register adds client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Listeners is the number of local clients.
func (h *Hub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleEvent lets the hub subscribe directly to the editor event bus.
func (h *Hub) HandleEvent(ctx context.Context, evt events.Event) {
	h.BroadcastEvent(ctx, evt)
}

// BroadcastEvent delivers evt to local listeners and publishes it for the
// other instances.
func (h *Hub) BroadcastEvent(ctx context.Context, evt events.Event) {
	data, err := events.Marshal(evt)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode event", map[string]interface{}{"type": evt.EventType(), "error": err.Error()})
		return
	}

	h.deliver(data)

	rdb := h.fanoutClient()
	if rdb == nil {
		return
	}
	payload, _ := json.Marshal(fanout{Origin: h.instanceID, Message: data})
	if err := rdb.Publish(ctx, fanoutChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis fanout failed", map[string]interface{}{"type": evt.EventType(), "error": err.Error()})
	}
}

func (h *Hub) deliver(data []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Listener buffer full, disconnecting", map[string]interface{}{"user_id": client.UserID})
		h.Unregister(client)
	}
}

func (h *Hub) consumeRedis(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload fanout
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Dropping malformed fanout message", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliver(payload.Message)
		}
	}
}
