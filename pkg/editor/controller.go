// Package editor coordinates note-editing sessions between the host and the
// embedded editing surface: one open session at a time, stale-message fencing,
// debounced autosave, liveness probing and open/close/switch orchestration.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/pkg/editor/autosave"
	"notefiber-editor-be/pkg/editor/bridge"
	"notefiber-editor-be/pkg/editor/probe"
	"notefiber-editor-be/pkg/editor/session"
	"notefiber-editor-be/pkg/eventbus"
	"notefiber-editor-be/pkg/events"

	"github.com/google/uuid"
)

type requestKind int

const (
	requestOpen requestKind = iota
	requestNew
	requestClose
)

type request struct {
	kind requestKind
	doc  Document
	// waiters are the callers whose requests were merged into this one.
	waiters []*ticket
}

// ticket carries the result of the request that finally ran to one caller.
type ticket struct {
	done chan struct{}
	err  error
}

func (t *ticket) settle(err error) {
	t.err = err
	close(t.done)
}

func settleAll(waiters []*ticket, err error) {
	for _, w := range waiters {
		w.settle(err)
	}
}

// errSuperseded marks a request dropped in favour of a newer queued one.
var errSuperseded = errors.New("superseded by a newer request")

// Controller owns the editing session. All lifecycle operations are
// serialised by opMu; inbound surface messages never take it.
type Controller struct {
	bridge    *bridge.Bridge
	registry  *session.Registry
	autosave  *autosave.Debouncer
	prober    *probe.Prober
	publisher eventbus.Publisher
	logger    logger.ILogger
	opts      Options

	opMu sync.Mutex

	mu       sync.Mutex
	queued   *request // LoadQueueSlot, last request wins
	last     *request // for Retry
	inFlight int
	editing  bool
	locked   bool
	scroll   float64
	torn     bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewController(
	b *bridge.Bridge,
	persister autosave.Persister,
	unlocker autosave.Unlocker,
	publisher eventbus.Publisher,
	opts Options,
	log logger.ILogger,
) *Controller {
	c := &Controller{
		bridge:    b,
		registry:  session.NewRegistry(),
		publisher: publisher,
		logger:    log,
		opts:      opts,
	}
	c.prober = probe.NewProber(c, opts.ProbeTimeout, log)
	c.autosave = autosave.NewDebouncer(opts.DebounceDelay, persister, unlocker, autosave.Hooks{
		OnSaved:   c.onSaved,
		OnDeleted: c.onDeleted,
		OnError:   c.onSaveError,
	}, log)
	b.OnMessage(c.HandleInbound)
	return c
}

// Start launches the background liveness loop.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil || c.torn {
		c.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.prober.Run(runCtx, c.opts.ProbeInterval, c)
	}()
}

// AttachSurface connects a (re)created surface and clears the unresponsive mark.
func (c *Controller) AttachSurface(s bridge.Surface) {
	c.bridge.Attach(s)
	c.prober.MarkReset()
}

// DetachSurface forgets s if it is still the attached surface.
func (c *Controller) DetachSurface(s bridge.Surface) {
	c.bridge.Detach(s)
}

// OpenNote opens doc, flushing and closing whatever session is open first.
// A call made while another lifecycle operation runs overwrites the queue
// slot; only the latest queued request is processed.
func (c *Controller) OpenNote(ctx context.Context, doc Document) error {
	return c.submit(ctx, request{kind: requestOpen, doc: doc})
}

// OpenNewNote starts a session for a note that does not exist yet.
func (c *Controller) OpenNewNote(ctx context.Context) error {
	return c.submit(ctx, request{kind: requestNew})
}

// CloseNote flushes pending edits and ends the session.
func (c *Controller) CloseNote(ctx context.Context) error {
	return c.submit(ctx, request{kind: requestClose})
}

// Retry reopens the last requested note in a fresh session, typically after
// the surface was reset.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	if last == nil {
		return ErrNothingToRetry
	}
	return c.submit(ctx, *last)
}

// submit queues req and returns the result of the request it ended up
// merged into: its own, or a newer one that replaced it in the slot.
func (c *Controller) submit(ctx context.Context, req request) error {
	t := &ticket{done: make(chan struct{})}
	req.waiters = []*ticket{t}

	c.mu.Lock()
	if c.torn {
		c.mu.Unlock()
		return ErrTornDown
	}
	if c.queued != nil {
		c.logger.Debug("Editor", "Replacing queued request", nil)
		req.waiters = append(c.queued.waiters, t)
	}
	c.queued = &req
	c.mu.Unlock()

	c.drain(ctx)

	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain processes the slot until it is empty. Whoever holds opMu runs the
// requests of every caller queued behind it.
func (c *Controller) drain(ctx context.Context) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	for {
		c.mu.Lock()
		next := c.queued
		c.queued = nil
		if next == nil {
			c.mu.Unlock()
			return
		}
		c.inFlight++
		c.mu.Unlock()

		err := c.process(ctx, *next)

		c.mu.Lock()
		c.inFlight--
		if errors.Is(err, errSuperseded) {
			if c.queued != nil {
				c.queued.waiters = append(c.queued.waiters, next.waiters...)
				c.mu.Unlock()
				continue
			}
			err = ErrTornDown
		}
		c.mu.Unlock()

		if err != nil {
			c.logger.Warn("Editor", "Lifecycle request failed", map[string]interface{}{"error": err.Error()})
		}
		settleAll(next.waiters, err)
	}
}

func (c *Controller) process(ctx context.Context, req request) error {
	cur, open := c.registry.Current()

	if req.kind == requestOpen && open && cur.SameNote(req.doc.ID) && c.isEditing() {
		return nil
	}

	if open {
		reason := ReasonSwitched
		if req.kind == requestClose {
			reason = ReasonClosed
		}
		c.endSession(ctx, reason, true)
	}

	if req.kind == requestClose {
		if err := c.bridge.Send(ctx, bridge.CmdClearContent, nil, ""); err != nil && !errors.Is(err, bridge.ErrNoSurface) {
			c.logger.Warn("Editor", "Failed to clear surface", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	// A newer request arrived while we were flushing; it wins.
	c.mu.Lock()
	superseded := c.queued != nil
	c.mu.Unlock()
	if superseded {
		return errSuperseded
	}

	return c.load(ctx, req)
}

func (c *Controller) load(ctx context.Context, req request) error {
	var noteID *uuid.UUID
	var seed autosave.Seed
	if req.kind == requestOpen {
		id := req.doc.ID
		noteID = &id
		seed = autosave.Seed{Title: req.doc.Title, Content: req.doc.Content, Type: req.doc.Type}
	}

	s := c.registry.Begin(noteID)
	c.autosave.Reset(s.ID, noteID, seed)

	c.mu.Lock()
	r := req
	r.waiters = nil
	c.last = &r
	c.scroll = 0
	c.editing = false
	c.locked = req.doc.Locked
	c.mu.Unlock()

	c.publish(events.EditorLoadingNote, s)

	payload := bridge.ContentPayload{Title: seed.Title, Content: seed.Content, Type: seed.Type, Locked: req.doc.Locked}
	if err := c.bridge.Send(ctx, bridge.CmdLoadContent, payload, s.ID); err != nil {
		// The probe below decides whether the surface is usable.
		c.logger.Debug("Editor", "load-content not delivered", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
	}

	readiness, err := c.prober.Probe(ctx, s.ID)
	if err != nil {
		return err
	}
	if !c.registry.IsCurrent(s.ID) {
		return nil
	}
	if readiness != probe.Ready {
		c.resetUnresponsive(ctx, s.ID)
		return ErrSurfaceUnresponsive
	}

	c.mu.Lock()
	c.editing = true
	c.mu.Unlock()
	c.publish(events.EditorNoteLoaded, s)
	c.logger.Info("Editor", "Note loaded", map[string]interface{}{"session_id": s.ID, "new": s.IsNew()})
	return nil
}

// endSession flushes (when asked), clears the session and announces it.
// Flush failures become toasts; the session is cleared regardless.
func (c *Controller) endSession(ctx context.Context, reason string, flush bool) {
	if flush {
		flushCtx, cancel := context.WithTimeout(ctx, c.opts.FlushTimeout)
		err := c.autosave.FlushNow(flushCtx)
		cancel()
		switch {
		case errors.Is(err, autosave.ErrNoteDeleted):
			reason = ReasonDeleted
		case errors.Is(err, autosave.ErrUnlockPending):
			c.logger.Info("Editor", "Session ended with a save waiting for its vault", nil)
			c.notify("Your changes will be saved once the vault is unlocked", events.LevelInfo)
		case err != nil:
			c.logger.Error("Editor", "Flush failed while ending session", map[string]interface{}{"error": err.Error()})
			c.toast(fmt.Sprintf("Your last changes could not be saved: %v", err))
		}
	}

	prev, ok := c.registry.End()
	c.autosave.Clear()

	c.mu.Lock()
	c.editing = false
	c.locked = false
	c.mu.Unlock()

	if !ok {
		return
	}
	data := sessionData(prev)
	data[events.KeyReason] = reason
	c.publisher.Publish(events.New(events.EditorSessionEnded, data))
}

// resetUnresponsive saves what the host holds, drops the session and tears
// the surface down. Readiness stays unresponsive until a surface reattaches.
func (c *Controller) resetUnresponsive(ctx context.Context, sessionID string) {
	cur, ok := c.registry.Current()
	if !ok || cur.ID != sessionID {
		return
	}
	c.endSession(ctx, ReasonUnresponsive, true)
	c.bridge.Reset()
	c.publish(events.EditorSurfaceUnresponsive, cur)
	c.logger.Warn("Editor", "Surface unresponsive, reset", map[string]interface{}{"session_id": sessionID})
}

// NoteDeleted ends the session without saving when noteID is open.
func (c *Controller) NoteDeleted(ctx context.Context, noteID uuid.UUID) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	cur, ok := c.registry.Current()
	if !ok || !cur.SameNote(noteID) {
		return
	}
	c.dropDeleted(ctx)
}

func (c *Controller) dropDeleted(ctx context.Context) {
	c.autosave.Clear()
	c.endSession(ctx, ReasonDeleted, false)
	if err := c.bridge.Send(ctx, bridge.CmdClearContent, nil, ""); err != nil && !errors.Is(err, bridge.ErrNoSurface) {
		c.logger.Warn("Editor", "Failed to clear surface", map[string]interface{}{"error": err.Error()})
	}
}

// UpdateTheme is a side channel; it does not touch the session. With no
// surface attached the update is dropped.
func (c *Controller) UpdateTheme(ctx context.Context, theme Theme) error {
	err := c.bridge.Send(ctx, bridge.CmdThemeUpdate, theme, "")
	if errors.Is(err, bridge.ErrNoSurface) {
		return nil
	}
	return err
}

// SetTitle renames the open note from the host side. The rename is pushed to
// the surface and saved through autosave like any other edit.
func (c *Controller) SetTitle(ctx context.Context, title string) error {
	cur, ok := c.registry.Current()
	if !ok {
		return nil
	}
	c.autosave.OnEdit(autosave.Edit{SessionID: cur.ID, Title: &title})
	return c.bridge.Send(ctx, bridge.CmdSetTitle, title, cur.ID)
}

// HandleInbound processes one message from the surface. Messages from any
// session but the current one are dropped, as is everything while the
// surface is marked unresponsive.
func (c *Controller) HandleInbound(msg bridge.Message) {
	switch msg.Type {
	case bridge.EvtStatusAck:
		c.prober.Ack(msg.SessionID)
		return
	case bridge.EvtError:
		c.handleSurfaceError(msg)
		return
	}

	if !c.registry.IsCurrent(msg.SessionID) {
		c.logger.Debug("Editor", "Dropping stale surface message", map[string]interface{}{"type": msg.Type, "session_id": msg.SessionID})
		return
	}
	if c.prober.Readiness() == probe.Unresponsive {
		return
	}

	switch msg.Type {
	case bridge.EvtEditedContent:
		var payload bridge.ContentPayload
		if err := msg.Decode(&payload); err != nil {
			c.logger.Warn("Editor", "Bad content edit", map[string]interface{}{"error": err.Error()})
			return
		}
		c.autosave.OnEdit(autosave.Edit{SessionID: msg.SessionID, Content: &payload.Content, Type: payload.Type})

	case bridge.EvtEditedTitle:
		var title string
		if err := msg.Decode(&title); err != nil {
			c.logger.Warn("Editor", "Bad title edit", map[string]interface{}{"error": err.Error()})
			return
		}
		c.autosave.OnEdit(autosave.Edit{SessionID: msg.SessionID, Title: &title})

	case bridge.EvtScrollPosition:
		var pos float64
		if err := msg.Decode(&pos); err != nil {
			return
		}
		c.mu.Lock()
		c.scroll = pos
		c.mu.Unlock()

	default:
		c.logger.Debug("Editor", "Unhandled surface message", map[string]interface{}{"type": msg.Type})
	}
}

func (c *Controller) handleSurfaceError(msg bridge.Message) {
	var payload bridge.ErrorPayload
	_ = msg.Decode(&payload)
	c.logger.Warn("Editor", "Surface reported an error", map[string]interface{}{
		"session_id": msg.SessionID,
		"message":    payload.Message,
		"stack":      payload.Stack,
	})
	if c.registry.IsCurrent(msg.SessionID) && payload.Message != "" {
		c.toast("Editor error: " + payload.Message)
	}
}

// SendCheckStatus lets the prober talk through the bridge.
func (c *Controller) SendCheckStatus(ctx context.Context, sessionID string) error {
	return c.bridge.Send(ctx, bridge.CmdCheckStatus, nil, sessionID)
}

// ProbeTarget is consulted by the liveness loop; it skips ticks while a
// lifecycle operation runs since those probe on their own.
func (c *Controller) ProbeTarget() (string, bool) {
	c.mu.Lock()
	busy := c.inFlight > 0
	editing := c.editing
	c.mu.Unlock()
	if busy || !editing {
		return "", false
	}
	cur, ok := c.registry.Current()
	if !ok {
		return "", false
	}
	return cur.ID, true
}

// OnUnresponsive is called by the liveness loop on timeout.
func (c *Controller) OnUnresponsive(sessionID string) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.resetUnresponsive(context.Background(), sessionID)
}

func (c *Controller) onSaved(edit autosave.PendingEdit, noteID uuid.UUID, created bool) {
	if created {
		c.registry.Promote(edit.SessionID, noteID)
		c.mu.Lock()
		if c.last != nil && c.last.kind == requestNew {
			c.last = &request{kind: requestOpen, doc: Document{ID: noteID, Title: edit.Title, Content: edit.Content, Type: edit.Type}}
		}
		c.mu.Unlock()
	}
	c.publisher.Publish(events.New(events.EditorNoteSaved, map[string]interface{}{
		events.KeyNoteID:    noteID.String(),
		events.KeySessionID: edit.SessionID,
		events.KeyCreated:   created,
	}))
}

func (c *Controller) onDeleted(sessionID string, noteID uuid.UUID) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if !c.registry.IsCurrent(sessionID) {
		return
	}
	c.dropDeleted(context.Background())
}

func (c *Controller) onSaveError(sessionID string, err error) {
	c.logger.Error("Editor", "Autosave failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	c.toast(fmt.Sprintf("Could not save note: %v", err))
}

func (c *Controller) Snapshot() Snapshot {
	state := c.prober.State()
	snap := Snapshot{
		Dirty:           c.autosave.Dirty(),
		Readiness:       state.Readiness.String(),
		SurfaceAttached: c.bridge.Attached(),
		SurfaceResets:   c.bridge.Resets(),
	}
	if !state.LastProbeAt.IsZero() {
		t := state.LastProbeAt
		snap.LastProbeAt = &t
	}
	if cur, ok := c.registry.Current(); ok {
		snap.SessionID = cur.ID
		snap.NoteID = cur.NoteID
		opened := cur.OpenedAt
		snap.OpenedAt = &opened
	}
	c.mu.Lock()
	snap.Editing = c.editing
	snap.Locked = c.locked
	snap.ScrollPosition = c.scroll
	c.mu.Unlock()
	return snap
}

// Teardown stops the liveness loop, flushes and ends the session and closes
// the surface. The controller rejects lifecycle calls afterwards.
func (c *Controller) Teardown(ctx context.Context) error {
	c.mu.Lock()
	if c.torn {
		c.mu.Unlock()
		return nil
	}
	c.torn = true
	dropped := c.queued
	c.queued = nil
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if dropped != nil {
		settleAll(dropped.waiters, ErrTornDown)
	}

	if cancel != nil {
		cancel()
		<-done
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	flushCtx, cancelFlush := context.WithTimeout(ctx, c.opts.FlushTimeout)
	err := c.autosave.FlushNow(flushCtx)
	cancelFlush()

	c.endSession(ctx, ReasonTeardown, false)
	c.autosave.Close()
	c.bridge.Reset()
	if errors.Is(err, autosave.ErrNoteDeleted) {
		return nil
	}
	return err
}

func (c *Controller) isEditing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

func (c *Controller) publish(eventType string, s session.Session) {
	c.publisher.Publish(events.New(eventType, sessionData(s)))
}

func (c *Controller) toast(message string) {
	c.notify(message, events.LevelError)
}

func (c *Controller) notify(message, level string) {
	c.publisher.Publish(events.New(events.EditorToast, map[string]interface{}{
		events.KeyMessage: message,
		events.KeyLevel:   level,
	}))
}

func sessionData(s session.Session) map[string]interface{} {
	data := map[string]interface{}{events.KeySessionID: s.ID}
	if s.NoteID != nil {
		data[events.KeyNoteID] = s.NoteID.String()
	} else {
		data[events.KeyNoteID] = nil
	}
	return data
}
