package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultTTL is the per-layer cache TTL (spec §4.8, default 300s).
const DefaultTTL = 300 * time.Second

// Loader owns the three named config files, a TTL cache of content-hashed
// snapshots, and an
// optional fsnotify watcher that invalidates the cache on disk changes
// (spec §4.11, grounded on the teacher's cli/watch_cmd.go debounce
// pattern generalized from a reindex trigger to a config-swap trigger).
type Loader struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger

	current    atomic.Pointer[Snapshot]
	loadedAt   atomic.Int64 // unix nano
	mu         sync.Mutex   // serializes reload attempts
	onReload   []func(*Snapshot)
	onReloadMu sync.Mutex
}

// NewLoader returns a Loader rooted at dir, holding no snapshot until the
// first Get call.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, ttl: DefaultTTL, logger: logger}
}

// SetTTL overrides the default cache TTL.
func (l *Loader) SetTTL(d time.Duration) {
	if d > 0 {
		l.ttl = d
	}
}

// OnReload registers a callback invoked with the new snapshot after every
// successful reload (used to wire confidence.Pipeline.InvalidateCache and
// rules.Registry.SetConfidenceThreshold).
func (l *Loader) OnReload(fn func(*Snapshot)) {
	l.onReloadMu.Lock()
	defer l.onReloadMu.Unlock()
	l.onReload = append(l.onReload, fn)
}

// Get returns the current snapshot, reloading from disk first if the TTL
// has elapsed or no snapshot has been loaded yet.
func (l *Loader) Get() (*Snapshot, error) {
	if snap := l.current.Load(); snap != nil {
		age := time.Since(time.Unix(0, l.loadedAt.Load()))
		if age < l.ttl {
			return snap, nil
		}
	}
	return l.reload()
}

func (l *Loader) reload() (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var weights ConfidenceWeights
	wData, err := loadYAMLLayer(filepath.Join(l.dir, "confidence_weights.yaml"), &weights)
	if err != nil {
		return l.fallbackOrError(err)
	}
	if err := weights.validate("confidence_weights.yaml"); err != nil {
		return l.fallbackOrError(err)
	}

	var anchors LinguisticAnchors
	aData, err := loadYAMLLayer(filepath.Join(l.dir, "linguistic_anchors.yaml"), &anchors)
	if err != nil {
		return l.fallbackOrError(err)
	}
	anchors.applyDefaults()

	var thresholds ValidationThresholds
	tData, err := loadYAMLLayer(filepath.Join(l.dir, "validation_thresholds.yaml"), &thresholds)
	if err != nil {
		return l.fallbackOrError(err)
	}
	thresholds.applyDefaults()
	thresholds.UniversalThreshold = envFloat("PROSECHECK_UNIVERSAL_THRESHOLD", thresholds.UniversalThreshold)

	snap := &Snapshot{
		Weights:    weights,
		Anchors:    anchors,
		Thresholds: thresholds,
		hash:       contentHash(wData, aData, tData),
	}

	l.current.Store(snap)
	l.loadedAt.Store(time.Now().UnixNano())

	l.onReloadMu.Lock()
	callbacks := append([]func(*Snapshot){}, l.onReload...)
	l.onReloadMu.Unlock()
	for _, cb := range callbacks {
		cb(snap)
	}

	return snap, nil
}

// fallbackOrError returns the previous good snapshot (if any) on a reload
// failure, otherwise propagates the error (spec §4.11: "A failed reload
// retains the previous good config ... without tearing down the running
// process").
func (l *Loader) fallbackOrError(err error) (*Snapshot, error) {
	if prev := l.current.Load(); prev != nil {
		l.logger.Warn("config reload failed, keeping previous snapshot", "error", err)
		return prev, nil
	}
	return nil, err
}

// watchDebounce coalesces bursts of filesystem events into a single
// reload; it is shorter than the teacher's 2s reindex debounce because a
// config reload is much lighter.
const watchDebounce = 500 * time.Millisecond

// Watch starts an fsnotify watcher on the loader's directory and reloads
// on every debounced change, until ctx is cancelled. Errors starting the
// watcher are logged and Watch returns without blocking.
func (l *Loader) Watch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		l.logger.Warn("config watch: fsnotify unavailable", "error", err)
		return
	}
	if err := watcher.Add(l.dir); err != nil {
		l.logger.Warn("config watch: cannot watch directory", "dir", l.dir, "error", err)
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		var timerCh <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config watch: fsnotify error", "error", werr)
			case <-timerCh:
				timerCh = nil
				if _, err := l.reload(); err != nil {
					l.logger.Warn("config watch: reload failed", "error", err)
				}
			}
		}
	}()
}
