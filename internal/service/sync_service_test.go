package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/eventbus"
	"notefiber-editor-be/pkg/events"
	pktNats "notefiber-editor-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	subject  string
	durable  string
	handlers []pktNats.EventHandler
}

func (s *fakeSubscriber) Subscribe(subject string, durableName string, handler pktNats.EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject = subject
	s.durable = durableName
	s.handlers = append(s.handlers, handler)
	return nil
}

func (s *fakeSubscriber) deliver(t *testing.T, evt events.Event) {
	t.Helper()
	s.mu.Lock()
	handlers := append([]pktNats.EventHandler(nil), s.handlers...)
	s.mu.Unlock()
	for _, h := range handlers {
		require.NoError(t, h(context.Background(), evt))
	}
}

func TestSyncServiceConsumesDeletions(t *testing.T) {
	log := logger.NewNopLogger()
	bus := eventbus.New(log)
	defer bus.Close()

	sub := &fakeSubscriber{}
	ctrl := &fakeController{}
	svc := NewSyncService(bus, sub, nil, ctrl, "node-a", log)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	assert.Equal(t, "events.NOTE_DELETED", sub.subject)
	assert.Equal(t, "editor-sync-node-a", sub.durable)

	id := uuid.New()
	sub.deliver(t, events.New(events.NoteDeleted, map[string]interface{}{events.KeyNoteID: id.String()}))
	sub.deliver(t, events.New(events.NoteDeleted, map[string]interface{}{events.KeyNoteID: "not-a-uuid"}))

	assert.Equal(t, []uuid.UUID{id}, ctrl.deletions())
}

func TestSyncServiceMirrorsEditorEvents(t *testing.T) {
	log := logger.NewNopLogger()
	bus := eventbus.New(log)
	defer bus.Close()

	cluster := &recordingCluster{}
	svc := NewSyncService(bus, nil, cluster, &fakeController{}, "node-a", log)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	bus.Publish(events.New(events.EditorNoteSaved, map[string]interface{}{events.KeyNoteID: "n1"}))

	assert.Eventually(t, func() bool { return len(cluster.published()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, events.EditorNoteSaved, cluster.published()[0].EventType())
}
