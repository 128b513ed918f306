package rules

import (
	"fmt"
	"sync"

	"github.com/prosecheck-hq/prosecheck/confidence"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// parseCache is a value-type cache owned by one block analysis and handed to
// rules read-only (spec §9: "a value-type cache owned by one analysis").
// It is discarded at block end; it is never shared across blocks (spec §5,
// "Shared resources": "no cross-block sharing -- simpler, avoids
// aliasing").
type parseCache struct {
	mu      sync.Mutex
	entries map[int]toolkit.Sentence
}

func newParseCache() *parseCache {
	return &parseCache{entries: make(map[int]toolkit.Sentence)}
}

// Base is the composable helper value passed to every rule (spec §4.2,
// "Base helpers"; spec §9, "the shared helpers in a composable 'rule
// toolkit' value"). It wraps the confidence pipeline and the block-scoped
// parse cache; rules reach the linguistic toolkit directly via the
// parameter Analyze already receives.
type Base struct {
	pipeline *confidence.Pipeline
	cache    *parseCache
}

// NewBase constructs a Base scoped to one block analysis, backed by the
// shared confidence pipeline.
func NewBase(pipeline *confidence.Pipeline) *Base {
	return &Base{pipeline: pipeline, cache: newParseCache()}
}

// AnalyzeSentenceStructure returns the memoized toolkit.Sentence for a
// sentence index, storing s on first use (spec §4.2: "memoized per
// sentence per analysis").
func (b *Base) AnalyzeSentenceStructure(sentenceIndex int, s toolkit.Sentence) toolkit.Sentence {
	b.cache.mu.Lock()
	defer b.cache.mu.Unlock()
	if existing, ok := b.cache.entries[sentenceIndex]; ok {
		return existing
	}
	b.cache.entries[sentenceIndex] = s
	return s
}

// MakeError invokes the confidence pipeline exactly once and returns a
// fully normalized Error (spec §4.2: "make_error ... invokes the confidence
// pipeline exactly once").
func (b *Base) MakeError(ruleID string, category domain.Category, raw RawError, contentType domain.ContentType, rctx *Context) Error {
	signal := raw.Signal
	if !raw.HasSignal {
		signal = 0.5
	}
	in := confidence.RawInput{
		Signal:      signal,
		Evidence:    raw.Evidence,
		HasEvidence: raw.HasEvidence,
		Text:        raw.Sentence,
		Position:    raw.Start,
	}

	var override *float64
	if rctx != nil {
		override = rctx.ThresholdOverride
	}

	final, breakdown := b.pipeline.Normalize(in, ruleID, category, contentType, override)

	return Error{
		RuleID:             ruleID,
		Category:           category,
		SentenceIndex:      raw.SentenceIndex,
		Sentence:           raw.Sentence,
		Start:              raw.Start,
		End:                raw.End,
		Message:            raw.Message,
		Severity:           raw.Severity,
		Suggestions:        raw.Suggestions,
		Confidence:         final,
		Provenance:         breakdown,
		ContentType:        contentType,
		LinguisticAnalysis: raw.LinguisticAnalysis,
	}
}

// DependencyArcs returns (head, dependent) token index pairs for every
// token in the sentence with a non-empty dependency label.
func DependencyArcs(s toolkit.Sentence) [][2]int {
	var arcs [][2]int
	for i, tok := range s.Tokens {
		if tok.Dep != "" {
			arcs = append(arcs, [2]int{tok.HeadIndex, i})
		}
	}
	return arcs
}

// FilterByPOS returns the tokens in the sentence whose POS tag is in poss.
func FilterByPOS(s toolkit.Sentence, poss ...string) []toolkit.Token {
	want := make(map[string]bool, len(poss))
	for _, p := range poss {
		want[p] = true
	}
	var out []toolkit.Token
	for _, tok := range s.Tokens {
		if want[tok.POS] {
			out = append(out, tok)
		}
	}
	return out
}

// MorphFeatures collects the morphological feature bag across every token
// in the sentence, keyed by "<token_index>.<feature>".
func MorphFeatures(s toolkit.Sentence) map[string]string {
	out := make(map[string]string)
	for i, tok := range s.Tokens {
		for k, v := range tok.Morph {
			out[fmt.Sprintf("%d.%s", i, k)] = v
		}
	}
	return out
}
