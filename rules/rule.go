// Package rules defines the rule contract, the shared base helpers every
// rule is handed, and the registry that discovers, groups, and dispatches
// rules against a block under a shared linguistic-analysis context.
package rules

import (
	"context"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/confidence"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// Context is the explicit, immutable value threaded through every rule call
// (spec §9: "shared mutable analyzer state -> explicit contexts"). Threshold
// overrides are per-request values on this struct, never mutations of
// shared registry state.
type Context struct {
	ContentType       domain.ContentType
	BlockType         blocks.BlockType
	Domain            string
	ThresholdOverride *float64
	Options           map[string]any
}

// Suggestion is one ordered replacement candidate or prose instruction a
// rule offers for fixing an issue.
type Suggestion struct {
	Text string
	// IsInstruction distinguishes a literal replacement from prose guidance
	// for a human or for a rewrite station.
	IsInstruction bool
}

// RawError is what a rule produces before confidence normalization.
type RawError struct {
	Message            string
	Suggestions        []Suggestion
	Severity           domain.Severity
	SentenceIndex      int
	Sentence           string
	Start              int
	End                int
	// Signal is the rule's own confidence in [0,1]; omit (leave zero) to let
	// the pipeline default to 0.5 (spec §4.3 step 1). Rules that never set
	// a signal should set HasSignal to false to make that explicit; the
	// pipeline treats HasSignal=false identically to Signal=0.5.
	Signal      float64
	HasSignal   bool
	Evidence    float64
	HasEvidence bool
	// LinguisticAnalysis is an opaque bag (morphological features,
	// dependency pattern labels) for UI and rewrite consumption.
	LinguisticAnalysis map[string]any
}

// Error is a detected issue, fully normalized (spec §3).
type Error struct {
	RuleID             string
	Category           domain.Category
	SentenceIndex      int
	Sentence           string
	Start              int
	End                int
	Message            string
	Severity           domain.Severity
	Suggestions        []Suggestion
	Confidence         float64
	Provenance         confidence.Breakdown
	ContentType        domain.ContentType
	LinguisticAnalysis map[string]any
}

// Rule is the contract every style rule satisfies (spec §4.2).
type Rule interface {
	RuleID() string
	Category() domain.Category
	DefaultSeverity() domain.Severity
	// AppliesTo is a pure, side-effect-free applicability predicate (spec
	// §8, testable property #7).
	AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool
	Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *Context) ([]RawError, error)
}
