package rules

import (
	"context"
	"testing"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

type stubRule struct {
	id       string
	category domain.Category
	panics   bool
	err      error
}

func (s *stubRule) RuleID() string                 { return s.id }
func (s *stubRule) Category() domain.Category      { return s.category }
func (s *stubRule) DefaultSeverity() domain.Severity { return domain.SeverityMedium }
func (s *stubRule) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return true
}
func (s *stubRule) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *Context) ([]RawError, error) {
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	return []RawError{{Message: "found something"}}, nil
}

func TestRegisterRejectsDuplicateIDs(t *testing.T) {
	r := NewRegistry(nil, nil)
	if err := r.Register(&stubRule{id: "a.one", category: domain.CategoryGrammar}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Register(&stubRule{id: "a.one", category: domain.CategoryTone})
	if err == nil {
		t.Fatalf("expected ErrDuplicateRule")
	}
	if _, ok := err.(*ErrDuplicateRule); !ok {
		t.Fatalf("expected *ErrDuplicateRule, got %T", err)
	}
}

func TestRulesForOrdersByCategoryThenRuleID(t *testing.T) {
	r := NewRegistry(nil, nil)
	_ = r.Register(&stubRule{id: "tone.b", category: domain.CategoryTone})
	_ = r.Register(&stubRule{id: "grammar.b", category: domain.CategoryGrammar})
	_ = r.Register(&stubRule{id: "grammar.a", category: domain.CategoryGrammar})

	out := r.RulesFor(blocks.TypeParagraph, domain.ContentTechnical)
	if len(out) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(out))
	}
	want := []string{"grammar.a", "grammar.b", "tone.b"}
	for i, id := range want {
		if out[i].RuleID() != id {
			t.Fatalf("position %d: expected %q, got %q", i, id, out[i].RuleID())
		}
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	r := NewRegistry(nil, nil)
	_ = r.Register(&stubRule{id: "grammar.panics", category: domain.CategoryGrammar, panics: true})

	results := r.Dispatch(context.Background(), blocks.TypeParagraph, "text", nil, nil, &Context{ContentType: domain.ContentTechnical})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Fatalf("expected the panic to surface as an error")
	}
}

func TestDispatchCollectsErrorsFromApplicableRules(t *testing.T) {
	r := NewRegistry(nil, nil)
	_ = r.Register(&stubRule{id: "grammar.one", category: domain.CategoryGrammar})

	results := r.Dispatch(context.Background(), blocks.TypeParagraph, "text", nil, nil, &Context{ContentType: domain.ContentTechnical})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(results[0].Errors) != 1 {
		t.Fatalf("expected 1 raw error from the rule, got %d", len(results[0].Errors))
	}
}
