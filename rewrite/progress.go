package rewrite

import (
	"fmt"
	"sync"
)

// StationState is one station's lifecycle state (spec §4.5, "State
// machine").
type StationState string

// Station state constants.
const (
	StatePending    StationState = "pending"
	StateProcessing StationState = "processing"
	StateComplete   StationState = "complete"
	StateError      StationState = "error"
	StateCancelled  StationState = "cancelled"
)

// allowedTransitions rejects backward transitions: only
// pending->{processing,cancelled} and processing->{complete,error,cancelled}
// are legal.
var allowedTransitions = map[StationState]map[StationState]bool{
	StatePending:    {StateProcessing: true, StateCancelled: true},
	StateProcessing: {StateComplete: true, StateError: true, StateCancelled: true},
}

// ErrInvalidTransition is returned when a station state transition would
// go backward or skip the state machine.
type ErrInvalidTransition struct {
	From, To StationState
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("rewrite: invalid station transition %s -> %s", e.From, e.To)
}

// stationProgress is one station's tracked state within a job.
type stationProgress struct {
	ID          string
	State       StationState
	ErrorCount  int
	SubProgress float64
	ErrorsFixed int
}

// Sink is the narrow event-emission capability the tracker uses (matches
// analyzer.EventSink's shape so events.Directory satisfies both without
// either package importing the other).
type Sink interface {
	Emit(sessionID string, eventType string, payload any)
}

type noopSink struct{}

func (noopSink) Emit(string, string, any) {}

// ProgressTracker is the thread-safe, one-per-job progress state (spec
// §4.5, "Progress tracker"). Every mutation is guarded by a single lock,
// and event emission happens while the lock is held, guaranteeing
// monotonic, ordered delivery to subscribers.
type ProgressTracker struct {
	mu sync.Mutex

	sink      Sink
	sessionID string
	blockID   string

	totalPasses      int
	completedPasses  int
	stationsInPass   []string
	stationProgress  map[string]*stationProgress
	stationsDone     int
	inFlightProgress float64
	lastPercent      int
}

// NewProgressTracker returns a tracker that emits through sink (nil is
// accepted and treated as a no-op sink).
func NewProgressTracker(sink Sink, sessionID, blockID string) *ProgressTracker {
	if sink == nil {
		sink = noopSink{}
	}
	return &ProgressTracker{
		sink:            sink,
		sessionID:       sessionID,
		blockID:         blockID,
		stationProgress: make(map[string]*stationProgress),
	}
}

// Init establishes the total work unit count for the job (spec §4.5,
// "init(stations, total_passes)").
func (t *ProgressTracker) Init(stationIDs []string, totalPasses int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalPasses = totalPasses
	if t.totalPasses <= 0 {
		t.totalPasses = 1
	}
	t.stationsInPass = stationIDs
	t.emitLocked("block_processing_start", map[string]any{
		"block_id":     t.blockID,
		"station_ids":  stationIDs,
		"total_passes": t.totalPasses,
	})
}

// StartPass marks the start of pass n.
func (t *ProgressTracker) StartPass(n int, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stationsDone = 0
	t.inFlightProgress = 0
	for _, id := range t.stationsInPass {
		t.stationProgress[id] = &stationProgress{ID: id, State: StatePending}
	}
	t.emitLocked("pass_start", map[string]any{"pass": n, "name": name, "overall_percent": t.overallPercentLocked()})
}

// CompletePass marks pass n complete, advancing the completed-passes
// counter.
func (t *ProgressTracker) CompletePass(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completedPasses++
	t.stationsDone = 0
	t.inFlightProgress = 0
	t.emitLocked("pass_complete", map[string]any{"pass": n, "overall_percent": t.overallPercentLocked()})
}

// StartStation transitions a station from pending to processing and
// emits station_progress_update.
func (t *ProgressTracker) StartStation(id, name string, errorCount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sp := t.stationOrNew(id)
	if err := transition(sp.State, StateProcessing); err != nil {
		return err
	}
	sp.State = StateProcessing
	sp.ErrorCount = errorCount
	t.emitLocked("station_progress_update", map[string]any{
		"station_id":      id,
		"name":            name,
		"state":           StateProcessing,
		"overall_percent": t.overallPercentLocked(),
	})
	return nil
}

// UpdateStation reports partial progress within a still-processing
// station.
func (t *ProgressTracker) UpdateStation(id string, subProgress float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sp := t.stationOrNew(id)
	sp.SubProgress = clamp01(subProgress)
	t.inFlightProgress = sp.SubProgress
	t.emitLocked("station_progress_update", map[string]any{
		"station_id":      id,
		"message":         message,
		"sub_progress":    sp.SubProgress,
		"overall_percent": t.overallPercentLocked(),
	})
}

// CompleteStation transitions a station to complete.
func (t *ProgressTracker) CompleteStation(id string, errorsFixed int, deltas []Delta) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sp := t.stationOrNew(id)
	if err := transition(sp.State, StateComplete); err != nil {
		return err
	}
	sp.State = StateComplete
	sp.ErrorsFixed = errorsFixed
	t.stationsDone++
	t.inFlightProgress = 0
	t.emitLocked("station_progress_update", map[string]any{
		"station_id":      id,
		"state":           StateComplete,
		"errors_fixed":    errorsFixed,
		"deltas":          deltas,
		"overall_percent": t.overallPercentLocked(),
	})
	return nil
}

// RecordError transitions a station to error (spec §4.5,
// "record_error(exception, station_id?)").
func (t *ProgressTracker) RecordError(id string, cause error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sp := t.stationOrNew(id)
	if err := transition(sp.State, StateError); err != nil {
		return err
	}
	sp.State = StateError
	t.stationsDone++
	t.inFlightProgress = 0
	t.emitLocked("station_progress_update", map[string]any{
		"station_id":      id,
		"state":           StateError,
		"error":           fmt.Sprint(cause),
		"overall_percent": t.overallPercentLocked(),
	})
	return nil
}

// Cancel transitions the given station (if it exists) to cancelled and
// emits the terminal failure event.
func (t *ProgressTracker) Cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sp, ok := t.stationProgress[id]; ok {
		if transition(sp.State, StateCancelled) == nil {
			sp.State = StateCancelled
		}
	}
	t.emitLocked("block_processing_complete", map[string]any{
		"block_id":        t.blockID,
		"cancelled":       true,
		"overall_percent": t.overallPercentLocked(),
	})
}

// Complete emits the terminal completion event for the job.
func (t *ProgressTracker) Complete(partialSuccess bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completedPasses = t.totalPasses
	t.emitLocked("block_processing_complete", map[string]any{
		"block_id":        t.blockID,
		"partial_success": partialSuccess,
		"overall_percent": 100,
	})
}

// OverallPercent returns the monotonic 0..100 overall completion percent
// (spec §4.5 formula).
func (t *ProgressTracker) OverallPercent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overallPercentLocked()
}

func (t *ProgressTracker) overallPercentLocked() int {
	totalStationsInPass := len(t.stationsInPass)
	if totalStationsInPass == 0 || t.totalPasses == 0 {
		return t.lastPercent
	}

	inPassProgress := (float64(t.stationsDone) + 0.5*t.inFlightProgress) / float64(totalStationsInPass)
	fraction := (float64(t.completedPasses) + inPassProgress) / float64(t.totalPasses)
	pct := int(fraction * 100)

	if pct < t.lastPercent {
		pct = t.lastPercent
	}
	if pct > 100 {
		pct = 100
	}
	t.lastPercent = pct
	return pct
}

func (t *ProgressTracker) stationOrNew(id string) *stationProgress {
	sp, ok := t.stationProgress[id]
	if !ok {
		sp = &stationProgress{ID: id, State: StatePending}
		t.stationProgress[id] = sp
	}
	return sp
}

func (t *ProgressTracker) emitLocked(eventType string, payload map[string]any) {
	t.sink.Emit(t.sessionID, eventType, payload)
}

func transition(from, to StationState) error {
	if allowedTransitions[from][to] {
		return nil
	}
	return &ErrInvalidTransition{From: from, To: to}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
