package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/confidence"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// ErrDuplicateRule is returned by Register when a rule id is already taken.
type ErrDuplicateRule struct {
	RuleID string
}

func (e *ErrDuplicateRule) Error() string {
	return fmt.Sprintf("rules: duplicate rule id %q", e.RuleID)
}

// DefaultSoftBudget is the per-rule soft time budget enforced by Dispatch
// (spec §4.4, default 250ms).
const DefaultSoftBudget = 250 * time.Millisecond

// Registry holds rules keyed by id, grouped by category (mirrors the
// teacher's RuleSet + MatcherRegistry split in core/rules/rules.go and
// core/rules/engine.go, generalized from file-pattern matching to
// block-type/content-type applicability).
type Registry struct {
	mu          sync.RWMutex
	byID        map[string]Rule
	order       []string // insertion order, for deterministic iteration before sort
	softBudget  time.Duration
	logger      *slog.Logger
	pipeline    *confidence.Pipeline
	onThreshold func(newThreshold float64)
}

// NewRegistry returns an empty Registry with the default soft budget,
// broadcasting threshold changes to pipeline.
func NewRegistry(logger *slog.Logger, pipeline *confidence.Pipeline) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byID:       make(map[string]Rule),
		softBudget: DefaultSoftBudget,
		logger:     logger,
		pipeline:   pipeline,
	}
}

// OnThresholdChanged registers a callback invoked after SetConfidenceThreshold
// updates the pipeline, so callers (e.g. the event fabric) can broadcast a
// threshold_changed event (spec §4.8).
func (r *Registry) OnThresholdChanged(fn func(newThreshold float64)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onThreshold = fn
}

// SetConfidenceThreshold broadcasts a new universal threshold to the
// confidence pipeline (spec §4.4). Per-request overrides in
// Context.ThresholdOverride always win over this broadcast value.
func (r *Registry) SetConfidenceThreshold(x float64) {
	r.mu.Lock()
	pipeline := r.pipeline
	cb := r.onThreshold
	r.mu.Unlock()

	if pipeline != nil {
		pipeline.SetThreshold(x)
	}
	if cb != nil {
		cb(x)
	}
}

// Register adds a rule to the registry. Returns *ErrDuplicateRule if the
// rule's id is already registered.
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := rule.RuleID()
	if _, exists := r.byID[id]; exists {
		return &ErrDuplicateRule{RuleID: id}
	}
	r.byID[id] = rule
	r.order = append(r.order, id)
	return nil
}

// SetSoftBudget overrides the per-rule soft time budget used by Dispatch.
func (r *Registry) SetSoftBudget(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.softBudget = d
	}
}

// RulesFor returns every registered rule whose AppliesTo accepts the given
// block type and content type, sorted by (Category, RuleID) for
// deterministic output order (spec §4.4).
func (r *Registry) RulesFor(blockType blocks.BlockType, contentType domain.ContentType) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		rule := r.byID[id]
		if rule.AppliesTo(blockType, contentType) {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category() != out[j].Category() {
			return out[i].Category() < out[j].Category()
		}
		return out[i].RuleID() < out[j].RuleID()
	})
	return out
}

// ForCategory returns every registered rule in the given category, in
// insertion order.
func (r *Registry) ForCategory(category domain.Category) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Rule
	for _, id := range r.order {
		rule := r.byID[id]
		if rule.Category() == category {
			out = append(out, rule)
		}
	}
	return out
}

// DispatchResult is one rule's outcome within a Dispatch call.
type DispatchResult struct {
	RuleID   string
	Errors   []RawError
	Err      error
	SlowRule bool
	Elapsed  time.Duration
}

// Dispatch runs every applicable rule against the sentences of one block,
// catching panics and errors so one misbehaving rule never aborts the rest
// (spec §4.4: "caught by the registry's dispatch helper, logged via slog
// ... and skipped"). A rule exceeding the soft budget is flagged SlowRule
// in its result but is not cancelled mid-flight — the budget is diagnostic,
// not a hard deadline, since Rule.Analyze does not itself observe ctx
// cancellation mid-computation in the reference implementations.
func (r *Registry) Dispatch(ctx context.Context, blockType blocks.BlockType, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *Context) []DispatchResult {
	rules := r.RulesFor(blockType, rctx.ContentType)
	results := make([]DispatchResult, 0, len(rules))

	r.mu.RLock()
	budget := r.softBudget
	r.mu.RUnlock()

	for _, rule := range rules {
		results = append(results, r.runOne(ctx, rule, text, sentences, tk, rctx, budget))
	}
	return results
}

func (r *Registry) runOne(ctx context.Context, rule Rule, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *Context, budget time.Duration) (res DispatchResult) {
	res.RuleID = rule.RuleID()

	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("rule panic: %v", rec)
			r.logger.Warn("rule panicked", "rule_id", res.RuleID, "panic", rec)
		}
	}()

	start := time.Now()
	errs, err := rule.Analyze(ctx, text, sentences, tk, rctx)
	res.Elapsed = time.Since(start)
	res.Errors = errs
	res.Err = err

	if res.Elapsed > budget {
		res.SlowRule = true
		r.logger.Warn("rule exceeded soft time budget", "rule_id", res.RuleID, "elapsed", res.Elapsed, "budget", budget)
	}
	if err != nil {
		r.logger.Warn("rule returned error", "rule_id", res.RuleID, "error", err)
	}
	return res
}
