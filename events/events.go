// Package events implements the session and event fabric: session-scoped
// progress/feedback events fanned out to live subscribers, with
// auto-registration, bounded per-session delivery, and ordered dispatch.
package events

import (
	"strings"
	"sync"
	"time"
)

// defaultQueueSize bounds each session's outbound channel (spec §4.8,
// default 256).
const defaultQueueSize = 256

// Event is one message delivered to a session subscriber.
type Event struct {
	SessionID string
	Type      string
	Payload   any
	At        time.Time
}

// nonDroppableEventTypes are terminal events that are never dropped from a
// full session queue, even though they don't all share a single naming
// convention (spec §4.8).
var nonDroppableEventTypes = map[string]bool{
	"analysis_complete":         true,
	"analysis_failed":           true,
	"block_processing_complete": true,
	"feedback_error":            true,
	"threshold_changed":         true,
}

// isDroppable reports whether ev is a transient progress-style event
// (analysis_progress, station_progress_update, pass_start, pass_complete,
// and the like) that may be dropped under backpressure rather than block a
// producer or a slow subscriber. Terminal completion and error events,
// identified by the explicit set above or by carrying "error"/"failed" in
// their name, are never dropped from the session queue; a subscriber whose
// channel stays full for 50ms does not receive them (see broadcast).
func isDroppable(eventType string) bool {
	if nonDroppableEventTypes[eventType] {
		return false
	}
	if strings.Contains(eventType, "error") || strings.Contains(eventType, "failed") {
		return false
	}
	return true
}

// session owns one single-threaded dispatcher goroutine, guaranteeing
// per-session, per-producer ordering (spec §4.6, §5).
type session struct {
	id       string
	inbox    chan Event
	mu       sync.RWMutex
	subs     map[int]chan Event
	nextSub  int
	dropped  int64
	done     chan struct{}
	stopOnce sync.Once
}

func newSession(id string) *session {
	s := &session{
		id:    id,
		inbox: make(chan Event, defaultQueueSize),
		subs:  make(map[int]chan Event),
		done:  make(chan struct{}),
	}
	go s.dispatchLoop()
	return s
}

func (s *session) dispatchLoop() {
	for {
		select {
		case ev := <-s.inbox:
			s.broadcast(ev)
		case <-s.done:
			return
		}
	}
}

func (s *session) broadcast(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			if isDroppable(ev.Type) {
				// Drop the event rather than block the dispatcher; only
				// progress events are droppable (spec §4.8).
				continue
			}
			// Non-droppable event: wait up to 50ms for a slow subscriber;
			// if its channel is still full, this subscriber misses it.
			select {
			case ch <- ev:
			case <-time.After(50 * time.Millisecond):
			}
		}
	}
}

func (s *session) subscribe(buffer int) (int, <-chan Event) {
	if buffer <= 0 {
		buffer = defaultQueueSize
	}
	ch := make(chan Event, buffer)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()
	return id, ch
}

func (s *session) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *session) emit(ev Event) {
	select {
	case s.inbox <- ev:
	default:
		if isDroppable(ev.Type) {
			s.mu.Lock()
			s.dropped++
			s.mu.Unlock()
			return
		}
		// Non-droppable: apply backpressure on the producer instead of
		// silently losing a completion/error event.
		s.inbox <- ev
	}
}

func (s *session) droppedCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

func (s *session) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Directory is the process-wide session registry (spec §4.6).
type Directory struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*session)}
}

// Register creates a session explicitly if it does not already exist.
func (d *Directory) Register(sessionID string) {
	d.getOrCreate(sessionID)
}

func (d *Directory) getOrCreate(sessionID string) *session {
	d.mu.RLock()
	s, ok := d.sessions[sessionID]
	d.mu.RUnlock()
	if ok {
		return s
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok = d.sessions[sessionID]; ok {
		return s
	}
	s = newSession(sessionID)
	d.sessions[sessionID] = s
	return s
}

// Subscribe returns a read-only channel of events for sessionID,
// auto-registering the session on first use. The returned unsubscribe
// function must be called to release the channel.
func (d *Directory) Subscribe(sessionID string, buffer int) (<-chan Event, func()) {
	s := d.getOrCreate(sessionID)
	id, ch := s.subscribe(buffer)
	return ch, func() { s.unsubscribe(id) }
}

// Emit sends an event to sessionID, auto-registering it on first emit
// (spec §4.6). An empty sessionID broadcasts to every registered session.
func (d *Directory) Emit(sessionID string, eventType string, payload any) {
	ev := Event{SessionID: sessionID, Type: eventType, Payload: payload, At: time.Now()}

	if sessionID == "" {
		d.mu.RLock()
		targets := make([]*session, 0, len(d.sessions))
		for _, s := range d.sessions {
			targets = append(targets, s)
		}
		d.mu.RUnlock()
		for _, s := range targets {
			s.emit(ev)
		}
		return
	}

	s := d.getOrCreate(sessionID)
	s.emit(ev)
}

// BroadcastThresholdChanged fires a threshold_changed event to every
// session, carrying the new threshold and the originating session id
// (spec §4.4, "SetConfidenceThreshold ... broadcasts").
func (d *Directory) BroadcastThresholdChanged(newThreshold float64, originSessionID string) {
	d.Emit("", "threshold_changed", map[string]any{
		"threshold":  newThreshold,
		"session_id": originSessionID,
	})
}

// DroppedCount returns the number of progress events dropped for
// sessionID due to a full outbound queue.
func (d *Directory) DroppedCount(sessionID string) int64 {
	d.mu.RLock()
	s, ok := d.sessions[sessionID]
	d.mu.RUnlock()
	if !ok {
		return 0
	}
	return s.droppedCount()
}

// Close stops every session's dispatcher goroutine. Call at process
// shutdown.
func (d *Directory) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.sessions {
		s.stop()
	}
}
