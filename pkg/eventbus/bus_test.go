package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *collector) handle(_ context.Context, evt events.Event) {
	c.mu.Lock()
	c.events = append(c.events, evt)
	c.mu.Unlock()
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) first() events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[0]
}

func TestPublishReachesSubscriber(t *testing.T) {
	bus := New(logger.NewNopLogger())
	defer bus.Close()

	c := &collector{}
	sub, err := bus.Subscribe(c.handle, events.EditorNoteLoaded, events.EditorToast)
	require.NoError(t, err)
	defer sub.Close()

	bus.Publish(events.New(events.EditorNoteLoaded, map[string]interface{}{events.KeySessionID: "s1"}))
	bus.Publish(events.New(events.EditorSessionEnded, nil))

	assert.Eventually(t, func() bool { return c.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, c.count())

	evt := c.first()
	assert.Equal(t, events.EditorNoteLoaded, evt.EventType())
	assert.Equal(t, "s1", evt.Payload()[events.KeySessionID])
	assert.False(t, evt.Timestamp().IsZero())
}

func TestEachSubscriberGetsOneCopy(t *testing.T) {
	bus := New(logger.NewNopLogger())
	defer bus.Close()

	a, b := &collector{}, &collector{}
	subA, err := bus.Subscribe(a.handle, events.EditorToast)
	require.NoError(t, err)
	defer subA.Close()
	subB, err := bus.Subscribe(b.handle, events.EditorToast)
	require.NoError(t, err)
	defer subB.Close()

	bus.Publish(events.New(events.EditorToast, map[string]interface{}{events.KeyMessage: "hi"}))

	assert.Eventually(t, func() bool { return a.count() == 1 && b.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestClosedSubscriptionStopsDelivery(t *testing.T) {
	bus := New(logger.NewNopLogger())
	defer bus.Close()

	c := &collector{}
	sub, err := bus.Subscribe(c.handle, events.EditorToast)
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	bus.Publish(events.New(events.EditorToast, nil))
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, c.count())
}

func TestClosedBus(t *testing.T) {
	bus := New(logger.NewNopLogger())
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	bus.Publish(events.New(events.EditorToast, nil))

	_, err := bus.Subscribe(func(context.Context, events.Event) {}, events.EditorToast)
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestSubscribeNeedsEventTypes(t *testing.T) {
	bus := New(logger.NewNopLogger())
	defer bus.Close()

	_, err := bus.Subscribe(func(context.Context, events.Event) {})
	assert.Error(t, err)
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.EventType())
	}
	return out
}

func TestDeliveryKeepsPublishOrder(t *testing.T) {
	bus := New(logger.NewNopLogger())
	defer bus.Close()

	triple := []string{events.EditorSessionEnded, events.EditorLoadingNote, events.EditorNoteLoaded}
	a, b := &collector{}, &collector{}
	subA, err := bus.Subscribe(a.handle, triple...)
	require.NoError(t, err)
	defer subA.Close()
	subB, err := bus.Subscribe(b.handle, events.EditorEventTypes...)
	require.NoError(t, err)
	defer subB.Close()

	const rounds = 300
	for i := 0; i < rounds; i++ {
		for _, eventType := range triple {
			bus.Publish(events.New(eventType, nil))
		}
	}

	want := make([]string, 0, rounds*len(triple))
	for i := 0; i < rounds; i++ {
		want = append(want, triple...)
	}
	for _, c := range []*collector{a, b} {
		require.Eventually(t, func() bool { return c.count() == len(want) }, 5*time.Second, 10*time.Millisecond)
		assert.Equal(t, want, c.types())
	}
}

func TestCloseDeliversQueuedEvents(t *testing.T) {
	bus := New(logger.NewNopLogger())

	c := &collector{}
	sub, err := bus.Subscribe(c.handle, events.EditorToast)
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 10; i++ {
		bus.Publish(events.New(events.EditorToast, nil))
	}
	require.NoError(t, bus.Close())
	assert.Equal(t, 10, c.count())
}
