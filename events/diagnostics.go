package events

import (
	"context"
	"time"
)

// RunDiagnostics periodically emits a dropped_count diagnostic event for
// every session with a non-zero drop count, until ctx is cancelled (spec
// §4.8: "a dropped_count diagnostic is emitted periodically via a ticker
// goroutine"). Call it once in its own goroutine at process start.
func (d *Directory) RunDiagnostics(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.emitDroppedDiagnostics()
		}
	}
}

func (d *Directory) emitDroppedDiagnostics() {
	d.mu.RLock()
	targets := make([]*session, 0, len(d.sessions))
	for _, s := range d.sessions {
		targets = append(targets, s)
	}
	d.mu.RUnlock()

	for _, s := range targets {
		if n := s.droppedCount(); n > 0 {
			s.emit(Event{
				SessionID: s.id,
				Type:      "dropped_count",
				Payload:   map[string]any{"dropped": n},
				At:        time.Now(),
			})
		}
	}
}
