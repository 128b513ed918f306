package feedback

import (
	"context"
	"testing"
)

func TestMemStoreStoreAssignsIDAndValidates(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	id, err := m.Store(ctx, validFeedback())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a generated id")
	}

	bad := validFeedback()
	bad.SessionID = ""
	if _, err := m.Store(ctx, bad); err == nil {
		t.Fatalf("expected validation error for missing session id")
	}
}

func TestMemStoreSessionFeedbackAndStats(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f := validFeedback()
		if i == 1 {
			f.Kind = KindIncorrect
		}
		if _, err := m.Store(ctx, f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stats, err := m.StatsForSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("expected 3 total, got %d", stats.Total)
	}
	if stats.Distribution[KindCorrect] != 2 || stats.Distribution[KindIncorrect] != 1 {
		t.Fatalf("unexpected distribution: %+v", stats.Distribution)
	}

	items, err := m.SessionFeedback(ctx, "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
}

func TestMemStoreDelete(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	id, err := m.Store(ctx, validFeedback())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := m.Delete(ctx, "sess-1", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected delete to report true")
	}

	ok, err = m.Delete(ctx, "sess-1", id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected second delete of the same id to report false")
	}
}

func TestComputeInsightsAccuracyAndBuckets(t *testing.T) {
	highConfidence := 0.9
	lowConfidence := 0.3

	items := []Feedback{
		{SessionID: "s1", Kind: KindCorrect, ConfidenceRating: &highConfidence, RuleCategory: "grammar"},
		{SessionID: "s1", Kind: KindIncorrect, ConfidenceRating: &highConfidence, RuleCategory: "grammar"},
		{SessionID: "s2", Kind: KindCorrect, ConfidenceRating: &lowConfidence, RuleCategory: "tone"},
	}

	ins := ComputeInsights(items)
	if ins.UniqueSessions != 2 {
		t.Fatalf("expected 2 unique sessions, got %d", ins.UniqueSessions)
	}
	if got := ins.AccuracyRate; got < 0.666 || got > 0.667 {
		t.Fatalf("expected accuracy rate ~0.667, got %v", got)
	}
	if got := ins.AccuracyByConfidence["0.7-1.0"]; got != 0.5 {
		t.Fatalf("expected 0.5 accuracy in the 0.7-1.0 bucket, got %v", got)
	}
	if got := ins.AccuracyByConfidence["0.0-0.5"]; got != 1.0 {
		t.Fatalf("expected 1.0 accuracy in the 0.0-0.5 bucket, got %v", got)
	}
	if got := ins.AccuracyByCategory["grammar"]; got != 0.5 {
		t.Fatalf("expected 0.5 accuracy for grammar category, got %v", got)
	}
}

func TestComputeInsightsEmptySnapshot(t *testing.T) {
	ins := ComputeInsights(nil)
	if ins.AccuracyRate != 0 || ins.UniqueSessions != 0 {
		t.Fatalf("expected zero-value insights for empty snapshot, got %+v", ins)
	}
}
