package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/confidence"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// fakeToolkit returns the whole text as a single sentence and never reports
// a degraded result, which is enough structure for rules that only need
// sentence text and offsets.
type fakeToolkit struct{}

func (fakeToolkit) Analyze(ctx context.Context, text string) (toolkit.Analysis, error) {
	sentences := []toolkit.Sentence{{Index: 0, Text: text, Start: 0, End: len(text)}}
	return toolkit.Analysis{Sentences: sentences}, nil
}

type recordingSink struct {
	events []string
}

func (s *recordingSink) Emit(sessionID, eventType string, payload any) {
	s.events = append(s.events, eventType)
}

func newTestPipeline() *confidence.Pipeline {
	reliability := confidence.NewReliabilityTable(map[string]float64{"default": 0.8})
	modifiers := confidence.NewModifierMatrix(map[domain.ContentType]map[domain.Category]float64{})
	return confidence.New(reliability, modifiers, 0.1, 100, time.Minute)
}

// stubRule flags every sentence it sees, unconditionally, for CategoryGrammar.
type stubRule struct{}

func (stubRule) RuleID() string            { return "grammar.stub" }
func (stubRule) Category() domain.Category { return domain.CategoryGrammar }
func (stubRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }
func (stubRule) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return true
}
func (stubRule) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		out = append(out, rules.RawError{
			Message:       "stub finding",
			SentenceIndex: s.Index,
			Sentence:      s.Text,
			Start:         s.Start,
			End:           s.End,
		})
	}
	return out, nil
}

func TestAnalyzeProducesStatisticsAndErrorsAcrossBlocks(t *testing.T) {
	pipeline := newTestPipeline()
	registry := rules.NewRegistry(nil, pipeline)
	if err := registry.Register(stubRule{}); err != nil {
		t.Fatalf("unexpected error registering rule: %v", err)
	}

	sink := &recordingSink{}
	a := New(registry, pipeline, sink)

	text := "The report were submitted by the team.\n\nThe second paragraph follows it."
	result, err := a.Analyze(context.Background(), text, fakeToolkit{}, Options{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Blocks) == 0 {
		t.Fatalf("expected at least one block")
	}
	if result.Statistics.WordCount == 0 {
		t.Fatalf("expected a nonzero word count")
	}
	if len(result.ByCategory[domain.CategoryGrammar]) == 0 {
		t.Fatalf("expected the stub rule's findings under CategoryGrammar")
	}
	if result.ThresholdFingerprint == "" {
		t.Fatalf("expected a nonempty threshold fingerprint")
	}

	wantEvents := []string{"analysis_start", "analysis_progress", "analysis_complete"}
	for _, want := range wantEvents {
		found := false
		for _, got := range sink.events {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected event %q to be emitted, got %v", want, sink.events)
		}
	}
}

// multiSentenceToolkit splits on ". " so a block can produce more than one
// sentence, each with its own index and offsets.
type multiSentenceToolkit struct{}

func (multiSentenceToolkit) Analyze(ctx context.Context, text string) (toolkit.Analysis, error) {
	var sentences []toolkit.Sentence
	start := 0
	for i, part := range splitSentences(text) {
		end := start + len(part)
		sentences = append(sentences, toolkit.Sentence{Index: i, Text: part, Start: start, End: end})
		start = end
	}
	return toolkit.Analysis{Sentences: sentences}, nil
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i+2 <= len(text); i++ {
		if text[i] == '.' && i+1 < len(text) && text[i+1] == ' ' {
			out = append(out, text[start:i+2])
			start = i + 2
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// lateSentenceRule flags only the sentence at a fixed index, regardless of
// where its rule ID sorts alphabetically.
type lateSentenceRule struct {
	id            string
	sentenceIndex int
}

func (r lateSentenceRule) RuleID() string            { return r.id }
func (r lateSentenceRule) Category() domain.Category { return domain.CategoryGrammar }
func (r lateSentenceRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }
func (r lateSentenceRule) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return true
}
func (r lateSentenceRule) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	for _, s := range sentences {
		if s.Index == r.sentenceIndex {
			return []rules.RawError{{
				Message:       "finding",
				SentenceIndex: s.Index,
				Sentence:      s.Text,
				Start:         s.Start,
				End:           s.End,
			}}, nil
		}
	}
	return nil, nil
}

func TestAnalyzeOrdersErrorsBySentenceIndexNotDispatchOrder(t *testing.T) {
	pipeline := newTestPipeline()
	registry := rules.NewRegistry(nil, pipeline)

	// "aaa.rule" sorts and dispatches before "zzz.rule", but it flags the
	// later sentence, so dispatch order alone would misorder the result.
	if err := registry.Register(lateSentenceRule{id: "aaa.rule", sentenceIndex: 1}); err != nil {
		t.Fatalf("unexpected error registering rule: %v", err)
	}
	if err := registry.Register(lateSentenceRule{id: "zzz.rule", sentenceIndex: 0}); err != nil {
		t.Fatalf("unexpected error registering rule: %v", err)
	}

	a := New(registry, pipeline, nil)
	result, err := a.Analyze(context.Background(), "First sentence. Second sentence.", multiSentenceToolkit{}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var blockErrors []rules.Error
	for _, errs := range result.ByBlock {
		blockErrors = append(blockErrors, errs...)
	}
	if len(blockErrors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(blockErrors))
	}
	if blockErrors[0].SentenceIndex != 0 || blockErrors[1].SentenceIndex != 1 {
		t.Fatalf("expected errors sorted by sentence index, got %+v", blockErrors)
	}
	if blockErrors[0].RuleID != "zzz.rule" {
		t.Fatalf("expected the sentence-0 finding (zzz.rule) first, got %q", blockErrors[0].RuleID)
	}
}

func TestAnalyzeRespectsExplicitContentTypeOverride(t *testing.T) {
	pipeline := newTestPipeline()
	registry := rules.NewRegistry(nil, pipeline)
	a := New(registry, pipeline, nil)

	legal := domain.ContentLegal
	result, err := a.Analyze(context.Background(), "Plain text.", fakeToolkit{}, Options{ContentType: &legal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ContentType != domain.ContentLegal {
		t.Fatalf("expected content type override to stick, got %v", result.ContentType)
	}
}

func TestAnalyzeNilSinkDoesNotPanic(t *testing.T) {
	pipeline := newTestPipeline()
	registry := rules.NewRegistry(nil, pipeline)
	a := New(registry, pipeline, nil)

	if _, err := a.Analyze(context.Background(), "Just a sentence.", fakeToolkit{}, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
