package nats

import (
	"context"
	"fmt"
	"time"

	"notefiber-editor-be/internal/pkg/logger"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "EVENTS"
	subjectPrefix = "events."
)

// Conn is one NATS connection shared by the publisher and the subscriber.
type Conn struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger
}

// Connect dials NATS and makes sure the EVENTS stream exists.
func Connect(url string, log logger.ILogger) (*Conn, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Every instance consumes deletions with its own durable, so the stream
	// keeps messages by age instead of removing them on first ack.
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		log.Warn("NATS", "Failed to ensure stream", map[string]interface{}{"stream": StreamName, "error": err.Error()})
	}

	return &Conn{nc: nc, js: js, logger: log}, nil
}

func (c *Conn) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// Subject maps an event type to its subject.
func Subject(eventType string) string {
	return subjectPrefix + eventType
}
