package feedback

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory, mutex-guarded, append-only feedback store
// (spec §4.7, reference Store implementation): a single write lock,
// concurrent reads.
type MemStore struct {
	mu    sync.RWMutex
	items []Feedback
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Store appends f, assigning it an id via MakeID if it does not already
// carry one.
func (m *MemStore) Store(ctx context.Context, f Feedback) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	if f.ID == "" {
		f.ID = MakeID(f.SessionID, f.ErrorID, f.Timestamp)
	}

	m.mu.Lock()
	m.items = append(m.items, f)
	m.mu.Unlock()
	return f.ID, nil
}

// StatsForSession returns the total count and kind distribution for one
// session.
func (m *MemStore) StatsForSession(ctx context.Context, sessionID string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Distribution: make(map[Kind]int)}
	for _, f := range m.items {
		if f.SessionID != sessionID {
			continue
		}
		stats.Total++
		stats.Distribution[f.Kind]++
	}
	return stats, nil
}

// SessionFeedback returns every feedback item for one session, oldest
// first.
func (m *MemStore) SessionFeedback(ctx context.Context, sessionID string) ([]Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Feedback
	for _, f := range m.items {
		if f.SessionID == sessionID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Delete removes the feedback with the given id scoped to sessionID,
// reporting whether anything was removed.
func (m *MemStore) Delete(ctx context.Context, sessionID, feedbackID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, f := range m.items {
		if f.SessionID == sessionID && f.ID == feedbackID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Insights computes the aggregate over the last daysBack days as a pure
// function over the store's current snapshot (spec §4.7, "Insights").
func (m *MemStore) Insights(ctx context.Context, daysBack int) (Insights, error) {
	m.mu.RLock()
	snapshot := make([]Feedback, len(m.items))
	copy(snapshot, m.items)
	m.mu.RUnlock()

	cutoff := time.Now().AddDate(0, 0, -daysBack)
	var windowed []Feedback
	for _, f := range snapshot {
		if !f.Timestamp.Before(cutoff) {
			windowed = append(windowed, f)
		}
	}
	return ComputeInsights(windowed), nil
}

// confidenceBucket returns the label for one of the three fixed accuracy
// buckets (spec §4.7): [0.0,0.5), [0.5,0.7), [0.7,1.0].
func confidenceBucket(rating float64) string {
	switch {
	case rating < 0.5:
		return "0.0-0.5"
	case rating < 0.7:
		return "0.5-0.7"
	default:
		return "0.7-1.0"
	}
}

// ComputeInsights is the pure aggregation function over a feedback
// snapshot, used by both MemStore and any future Store implementation
// wanting identical semantics.
func ComputeInsights(items []Feedback) Insights {
	ins := Insights{
		AccuracyByConfidence: make(map[string]float64),
		AccuracyByCategory:   make(map[string]float64),
	}
	if len(items) == 0 {
		return ins
	}

	var correct int
	sessions := make(map[string]bool)
	bucketTotal := make(map[string]int)
	bucketCorrect := make(map[string]int)
	catTotal := make(map[string]int)
	catCorrect := make(map[string]int)

	for _, f := range items {
		sessions[f.SessionID] = true
		isCorrect := f.Kind == KindCorrect
		if isCorrect {
			correct++
		}

		if f.ConfidenceRating != nil {
			bucket := confidenceBucket(*f.ConfidenceRating)
			bucketTotal[bucket]++
			if isCorrect {
				bucketCorrect[bucket]++
			}
		}

		if f.RuleCategory != "" {
			catTotal[f.RuleCategory]++
			if isCorrect {
				catCorrect[f.RuleCategory]++
			}
		}
	}

	ins.AccuracyRate = float64(correct) / float64(len(items))
	ins.UniqueSessions = len(sessions)

	for bucket, total := range bucketTotal {
		ins.AccuracyByConfidence[bucket] = float64(bucketCorrect[bucket]) / float64(total)
	}
	for cat, total := range catTotal {
		ins.AccuracyByCategory[cat] = float64(catCorrect[cat]) / float64(total)
	}

	return ins
}
