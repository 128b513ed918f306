// Package confidence implements the provenance-aware confidence
// normalization pipeline: it turns a rule's raw signal into a single
// calibrated score against a universal threshold, recording every step of
// the calculation for diagnostics and audit.
package confidence

import (
	"math"
	"time"

	"github.com/prosecheck-hq/prosecheck/domain"
)

// DefaultThreshold is the universal threshold's default value (spec §4.3
// step 9).
const DefaultThreshold = 0.35

// anchorDecay and anchorFloor pin the diminishing-returns combination used
// by CombineAnchors' anchor-group folding (spec §9): sort
// contributions by magnitude descending, scale each subsequent contribution
// by anchorDecay with a floor of anchorFloor.
const (
	anchorDecay = 0.8
	anchorFloor = 0.2
)

// floorGuardMinEvidence and floorGuardMinReliability are the thresholds that
// must both be met for the floor guard to trigger (spec §4.3 step 7, and
// Open Question #3: the guard requires both e and r, never reliability
// alone).
const (
	floorGuardMinEvidence    = 0.85
	floorGuardMinReliability = 0.85
	floorGuardMinFinal       = 0.75
)

// RawInput is everything a rule's raw detection carries before
// normalization.
type RawInput struct {
	// Signal is the rule's own confidence in [0,1]; 0.5 if the rule
	// supplies none (spec §4.3 step 1).
	Signal float64
	// Evidence is an optional corroborating signal (spec §4.3 step 5).
	// HasEvidence distinguishes "0.0" from "absent".
	Evidence    float64
	HasEvidence bool
	// Text and Position identify where in the document the raw error sits,
	// used only for cache keying and bounds-clamping (spec §4.3, "Edge
	// cases: position out of range -> clamp to text bounds").
	Text     string
	Position int
}

// Pipeline normalizes raw rule signals into calibrated confidence scores
// under a single universal threshold. A Pipeline is safe for concurrent use.
type Pipeline struct {
	reliability *ReliabilityTable
	modifiers   *ModifierMatrix
	cache       *LRU
	threshold   float64
	adjustments *AdjustmentLayer
}

// New builds a Pipeline. threshold is the universal threshold (spec §4.3
// step 9, default DefaultThreshold); cacheSize and cacheTTL configure the
// LRU (spec §4.3, "Caching").
func New(reliability *ReliabilityTable, modifiers *ModifierMatrix, threshold float64, cacheSize int, cacheTTL time.Duration) *Pipeline {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Pipeline{
		reliability: reliability,
		modifiers:   modifiers,
		cache:       NewLRU(cacheSize, cacheTTL),
		threshold:   threshold,
	}
}

// SetAdjustmentLayer wires the feedback-insights recommendation hook (spec
// §4.7, "Recommendation hooks") into the pipeline. A nil layer (the
// default) applies no adjustment.
func (p *Pipeline) SetAdjustmentLayer(layer *AdjustmentLayer) {
	p.adjustments = layer
}

// Threshold returns the pipeline's current universal threshold.
func (p *Pipeline) Threshold() float64 { return p.threshold }

// SetThreshold updates the universal threshold and invalidates the cache,
// since cached entries were computed against the old threshold's
// meets_threshold decision.
func (p *Pipeline) SetThreshold(x float64) {
	p.threshold = x
	p.cache.Invalidate()
}

// InvalidateCache drops all cached results; called on any config reload.
func (p *Pipeline) InvalidateCache() {
	p.cache.Invalidate()
}

// Normalize runs the full pipeline (spec §4.3 steps 1-10) for one raw error
// and returns its final confidence plus the full provenance record.
// thresholdOverride, if non-nil, wins over the pipeline's configured
// universal threshold for this call only (a per-request value, never a
// mutation of shared state — spec §9).
func (p *Pipeline) Normalize(in RawInput, ruleID string, category domain.Category, contentType domain.ContentType, thresholdOverride *float64) (float64, Breakdown) {
	threshold := p.threshold
	if thresholdOverride != nil {
		threshold = *thresholdOverride
	}

	key := cacheKey{
		Text:        in.Text,
		Position:    clampPosition(in.Position, len(in.Text)),
		RuleID:      ruleID,
		ContentType: string(contentType),
		Threshold:   threshold,
		Evidence:    in.Evidence,
		HasEvidence: in.HasEvidence,
	}
	if conf, bd, ok := p.cache.Get(key); ok {
		return conf, bd
	}

	conf, bd := p.compute(in, ruleID, category, contentType, threshold)
	p.cache.Put(key, conf, bd)
	return conf, bd
}

func (p *Pipeline) compute(in RawInput, ruleID string, category domain.Category, contentType domain.ContentType, threshold float64) (float64, Breakdown) {
	signal := sanitizeSignal(in.Signal)
	if in.Text == "" {
		signal = 0.5
	}

	reliability := defaultReliability
	if p.reliability != nil {
		reliability = p.reliability.Lookup(ruleID)
	}

	modifier := defaultModifier
	if p.modifiers != nil {
		modifier = p.modifiers.Lookup(contentType, category)
	}
	if p.adjustments != nil {
		modifier = p.adjustments.Apply(ruleID, contentType, modifier)
	}

	var (
		evidencePtr    *float64
		evidenceWeight float64
		modelWeight    = 1.0
		raw            float64
	)

	if in.HasEvidence {
		e := clamp01(in.Evidence)
		evidencePtr = &e
		evidenceWeight = clampRange(0.2+0.55*e, 0.2, 0.7)
		modelWeight = 1 - evidenceWeight
		raw = minF(1, (e*evidenceWeight+signal*modelWeight)*reliability*modifier)
	} else {
		raw = minF(1, signal*reliability*modifier)
	}

	floorTriggered := false
	final := raw
	if evidencePtr != nil && *evidencePtr >= floorGuardMinEvidence && reliability >= floorGuardMinReliability {
		if final < floorGuardMinFinal {
			final = floorGuardMinFinal
		}
		floorTriggered = true
	}
	final = clamp01(final)

	bd := Breakdown{
		Signal:              signal,
		RuleReliability:     reliability,
		ContentModifier:     modifier,
		EvidenceScore:       evidencePtr,
		EvidenceWeight:      evidenceWeight,
		ModelWeight:         modelWeight,
		RawConfidence:       clamp01(raw),
		FloorGuardTriggered: floorTriggered,
		FinalConfidence:     final,
		UniversalThreshold:  threshold,
		MeetsThreshold:      final >= threshold,
	}
	return final, bd
}

func sanitizeSignal(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0.0
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampPosition(pos, textLen int) int {
	if pos < 0 {
		return 0
	}
	if pos > textLen {
		return textLen
	}
	return pos
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
