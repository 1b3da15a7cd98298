package service

import (
	"context"
	"fmt"
	"time"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/eventbus"
	"notefiber-editor-be/pkg/events"
	pktNats "notefiber-editor-be/pkg/nats"

	"github.com/google/uuid"
)

const mirrorTimeout = 5 * time.Second

// IEventSubscriber consumes events from the cluster bus.
type IEventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

// DeletionHandler is told when a note disappears elsewhere.
type DeletionHandler interface {
	NoteDeleted(ctx context.Context, noteID uuid.UUID)
}

// SyncService connects the local editor to the cluster: editor events are
// mirrored out, NOTE_DELETED events from other instances come in.
type SyncService struct {
	bus        *eventbus.Bus
	subscriber IEventSubscriber
	publisher  IEventPublisher
	deletions  DeletionHandler
	instanceID string
	logger     logger.ILogger

	mirror *eventbus.Subscription
}

func NewSyncService(
	bus *eventbus.Bus,
	subscriber IEventSubscriber,
	publisher IEventPublisher,
	deletions DeletionHandler,
	instanceID string,
	log logger.ILogger,
) *SyncService {
	return &SyncService{
		bus:        bus,
		subscriber: subscriber,
		publisher:  publisher,
		deletions:  deletions,
		instanceID: instanceID,
		logger:     log,
	}
}

// Start wires both directions. Either side may be absent when NATS is down.
func (s *SyncService) Start() error {
	if s.subscriber != nil {
		subject := "events." + events.NoteDeleted
		durable := fmt.Sprintf("editor-sync-%s", s.instanceID)
		if err := s.subscriber.Subscribe(subject, durable, s.handleNoteDeleted); err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.logger.Info("SyncService", "Listening for note deletions", map[string]interface{}{"durable": durable})
	}

	if s.publisher != nil {
		sub, err := s.bus.Subscribe(s.forward, events.EditorEventTypes...)
		if err != nil {
			return fmt.Errorf("mirror editor events: %w", err)
		}
		s.mirror = sub
	}
	return nil
}

func (s *SyncService) Stop() {
	if s.mirror != nil {
		s.mirror.Close()
	}
}

func (s *SyncService) handleNoteDeleted(ctx context.Context, event events.Event) error {
	raw := events.StringField(event, events.KeyNoteID)
	noteID, err := uuid.Parse(raw)
	if err != nil {
		// Redelivery will not fix a bad payload.
		s.logger.Warn("SyncService", "NOTE_DELETED without a valid note id", map[string]interface{}{"note_id": raw})
		return nil
	}

	s.deletions.NoteDeleted(ctx, noteID)
	return nil
}

func (s *SyncService) forward(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("SyncService", "Failed to mirror editor event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
