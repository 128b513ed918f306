package confidence

import (
	"sync"

	"github.com/prosecheck-hq/prosecheck/domain"
)

// maxAdjustment bounds the feedback-insights recommendation hook to a
// gentle ±0.05 shift per (rule_id, content_type) bucket (spec §4.7,
// "Recommendation hooks").
const maxAdjustment = 0.05

// AdjustmentLayer is the bounded, feedback-driven shift applied to the
// content modifier after lookup and before blending. It is populated
// exclusively from feedback.Insights output — never from raw user input —
// keeping the loop "deliberately gentle" as the spec requires.
type AdjustmentLayer struct {
	mu          sync.RWMutex
	adjustments map[adjustmentKey]float64
}

type adjustmentKey struct {
	RuleID      string
	ContentType domain.ContentType
}

// NewAdjustmentLayer returns an empty AdjustmentLayer.
func NewAdjustmentLayer() *AdjustmentLayer {
	return &AdjustmentLayer{adjustments: make(map[adjustmentKey]float64)}
}

// Set records a bounded adjustment for (ruleID, contentType). Values
// outside [-maxAdjustment, maxAdjustment] are clamped.
func (a *AdjustmentLayer) Set(ruleID string, contentType domain.ContentType, shift float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.adjustments[adjustmentKey{ruleID, contentType}] = clampRange(shift, -maxAdjustment, maxAdjustment)
}

// Apply adds the recorded adjustment (if any) to modifier, clamping the
// result back into the documented [0.5, 1.5] modifier range.
func (a *AdjustmentLayer) Apply(ruleID string, contentType domain.ContentType, modifier float64) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	shift, ok := a.adjustments[adjustmentKey{ruleID, contentType}]
	if !ok {
		return modifier
	}
	return clampRange(modifier+shift, 0.5, 1.5)
}
