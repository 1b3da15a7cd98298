// Package probe checks that the editing surface is alive by sending a
// check-status command and racing its acknowledgement against a timeout.
package probe

import (
	"context"
	"errors"
	"sync"
	"time"

	"notefiber-editor-be/internal/pkg/logger"
)

type Readiness int

const (
	Unknown Readiness = iota
	Ready
	Unresponsive
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case Unresponsive:
		return "unresponsive"
	default:
		return "unknown"
	}
}

// Sender posts the check-status command for a session.
type Sender interface {
	SendCheckStatus(ctx context.Context, sessionID string) error
}

type State struct {
	Readiness   Readiness
	LastProbeAt time.Time
}

type Prober struct {
	sender  Sender
	timeout time.Duration
	logger  logger.ILogger

	mu          sync.Mutex
	readiness   Readiness
	lastProbeAt time.Time
	waitingFor  string
	ack         chan struct{}
}

func NewProber(sender Sender, timeout time.Duration, log logger.ILogger) *Prober {
	return &Prober{sender: sender, timeout: timeout, logger: log}
}

func (p *Prober) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Readiness: p.readiness, LastProbeAt: p.lastProbeAt}
}

func (p *Prober) Readiness() Readiness {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readiness
}

// Probe returns Ready on acknowledgement and Unresponsive on timeout. A send
// failure (no surface attached) counts as unresponsive once the timeout has
// elapsed, exactly like a silent surface. ctx cancellation leaves the state
// untouched and returns ctx.Err().
func (p *Prober) Probe(ctx context.Context, sessionID string) (Readiness, error) {
	ack := make(chan struct{})

	p.mu.Lock()
	if p.ack != nil && p.waitingFor == sessionID {
		// A probe for this session is already in flight; share it.
		ack = p.ack
	} else {
		p.waitingFor = sessionID
		p.ack = ack
	}
	p.lastProbeAt = time.Now()
	p.mu.Unlock()

	if err := p.sender.SendCheckStatus(ctx, sessionID); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Debug("Prober", "check-status not delivered", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-ack:
		p.mu.Lock()
		p.readiness = Ready
		p.mu.Unlock()
		return Ready, nil
	case <-timer.C:
		p.mu.Lock()
		if p.ack != ack {
			// Superseded by a probe for a newer session, or already timed out
			// by a waiter sharing this probe.
			r := p.readiness
			p.mu.Unlock()
			return r, nil
		}
		p.ack = nil
		p.waitingFor = ""
		p.readiness = Unresponsive
		p.mu.Unlock()
		p.logger.Warn("Prober", "Surface did not acknowledge in time", map[string]interface{}{"session_id": sessionID, "timeout_ms": p.timeout.Milliseconds()})
		return Unresponsive, nil
	case <-ctx.Done():
		p.mu.Lock()
		if p.ack == ack {
			p.ack = nil
			p.waitingFor = ""
		}
		p.mu.Unlock()
		return p.Readiness(), ctx.Err()
	}
}

// Ack resolves the in-flight probe if it was sent for sessionID. Late or
// stale acknowledgements are ignored.
func (p *Prober) Ack(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ack == nil || sessionID == "" || p.waitingFor != sessionID {
		return false
	}
	close(p.ack)
	p.ack = nil
	p.waitingFor = ""
	return true
}

// MarkReset moves an unresponsive surface back to unknown after a hard reset.
func (p *Prober) MarkReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readiness = Unknown
}

// Target is what the background loop needs from its owner.
type Target interface {
	// ProbeTarget returns the session to probe, or false to skip this tick.
	ProbeTarget() (string, bool)
	// OnUnresponsive runs when a background probe times out.
	OnUnresponsive(sessionID string)
}

// Run probes the target every interval until ctx is done.
func (p *Prober) Run(ctx context.Context, interval time.Duration, target Target) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessionID, ok := target.ProbeTarget()
			if !ok {
				continue
			}
			readiness, err := p.Probe(ctx, sessionID)
			if err != nil {
				return
			}
			if readiness == Unresponsive {
				target.OnUnresponsive(sessionID)
			}
		}
	}
}
