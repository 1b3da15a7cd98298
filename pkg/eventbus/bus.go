// Package eventbus is the in-process publish/subscribe channel the editor uses
// to announce lifecycle changes. It is a thin typed layer over a watermill
// gochannel. Every event goes through one topic in publish order, and each
// subscription filters the types it asked for.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

var ErrBusClosed = errors.New("event bus closed")

const (
	topic = "editor.events"
	// queueSize bounds events waiting for slow subscribers before Publish
	// starts dropping.
	queueSize = 1024
)

// Handler receives one event. It runs on the subscription goroutine, so it
// must not close its own subscription synchronously.
type Handler func(ctx context.Context, evt events.Event)

// Publisher is the narrow side handed to producers.
type Publisher interface {
	Publish(evt events.Event)
}

type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
	queue  chan *message.Message
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func New(log logger.ILogger) *Bus {
	// Blocking until every subscriber acked keeps delivery in publish order;
	// the dispatch goroutine absorbs that wait so producers do not.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		newWatermillLogger(log),
	)
	b := &Bus{
		pubSub: pubSub,
		logger: log,
		queue:  make(chan *message.Message, queueSize),
		done:   make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Publish never blocks on subscribers and never fails the caller.
func (b *Bus) Publish(evt events.Event) {
	payload, err := events.Marshal(evt)
	if err != nil {
		b.logger.Error("EventBus", "Failed to encode event", map[string]interface{}{"type": evt.EventType(), "error": err.Error()})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.queue <- msg:
	default:
		b.logger.Warn("EventBus", "Queue full, dropping event", map[string]interface{}{"type": evt.EventType()})
	}
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for msg := range b.queue {
		if err := b.pubSub.Publish(topic, msg); err != nil {
			b.logger.Warn("EventBus", "Failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Subscribe registers handler for every listed event type. Events reach the
// handler one at a time in the order they were published.
func (b *Bus) Subscribe(handler Handler, eventTypes ...string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	if len(eventTypes) == 0 {
		return nil, fmt.Errorf("subscribe: no event types given")
	}

	wanted := make(map[string]struct{}, len(eventTypes))
	for _, eventType := range eventTypes {
		wanted[eventType] = struct{}{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	sub := &Subscription{cancel: cancel}
	sub.wg.Add(1)
	go b.consume(ctx, ch, handler, wanted, &sub.wg)
	return sub, nil
}

func (b *Bus) consume(ctx context.Context, ch <-chan *message.Message, handler Handler, wanted map[string]struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for msg := range ch {
		evt, err := events.Unmarshal(msg.Payload)
		if err != nil {
			b.logger.Warn("EventBus", "Dropping undecodable event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}
		if _, ok := wanted[evt.EventType()]; ok && ctx.Err() == nil {
			handler(ctx, evt)
		}
		msg.Ack()
	}
}

// Close delivers what is already queued, then shuts the bus down.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	<-b.done
	return b.pubSub.Close()
}

// Subscription is released exactly once; further Close calls are no-ops.
type Subscription struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}
