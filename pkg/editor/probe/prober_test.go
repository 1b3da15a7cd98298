package probe

import (
	"context"
	"sync"
	"testing"
	"time"

	"notefiber-editor-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type senderFunc func(ctx context.Context, sessionID string) error

func (f senderFunc) SendCheckStatus(ctx context.Context, sessionID string) error {
	return f(ctx, sessionID)
}

func silent() Sender {
	return senderFunc(func(context.Context, string) error { return nil })
}

func TestProbeReadyOnAck(t *testing.T) {
	var p *Prober
	p = NewProber(senderFunc(func(ctx context.Context, sessionID string) error {
		go p.Ack(sessionID)
		return nil
	}), time.Second, logger.NewNopLogger())

	assert.Equal(t, Unknown, p.Readiness())
	r, err := p.Probe(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, Ready, r)
	assert.Equal(t, Ready, p.Readiness())
	assert.False(t, p.State().LastProbeAt.IsZero())
}

func TestProbeTimeoutMarksUnresponsive(t *testing.T) {
	p := NewProber(silent(), 20*time.Millisecond, logger.NewNopLogger())

	r, err := p.Probe(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, Unresponsive, r)

	// A late acknowledgement changes nothing.
	assert.False(t, p.Ack("s1"))
	assert.Equal(t, Unresponsive, p.Readiness())

	p.MarkReset()
	assert.Equal(t, Unknown, p.Readiness())
}

func TestStaleAckIsIgnored(t *testing.T) {
	p := NewProber(silent(), 50*time.Millisecond, logger.NewNopLogger())

	done := make(chan Readiness, 1)
	go func() {
		r, _ := p.Probe(context.Background(), "current")
		done <- r
	}()

	assert.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.waitingFor == "current"
	}, time.Second, time.Millisecond)

	assert.False(t, p.Ack("previous"))
	assert.Equal(t, Unresponsive, <-done)
}

func TestProbeCancelledKeepsState(t *testing.T) {
	p := NewProber(silent(), time.Second, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := p.Probe(ctx, "s1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Unknown, r)
}

type recordingTarget struct {
	mu           sync.Mutex
	session      string
	unresponsive []string
}

func (t *recordingTarget) ProbeTarget() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session, t.session != ""
}

func (t *recordingTarget) OnUnresponsive(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unresponsive = append(t.unresponsive, sessionID)
	t.session = ""
}

func TestRunReportsUnresponsiveTarget(t *testing.T) {
	p := NewProber(silent(), 10*time.Millisecond, logger.NewNopLogger())
	target := &recordingTarget{session: "s1"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go p.Run(ctx, 10*time.Millisecond, target)

	assert.Eventually(t, func() bool {
		target.mu.Lock()
		defer target.mu.Unlock()
		return len(target.unresponsive) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "s1", target.unresponsive[0])
}
