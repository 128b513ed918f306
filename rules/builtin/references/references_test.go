package references

import (
	"context"
	"testing"

	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

func sentence(text string) toolkit.Sentence {
	return toolkit.Sentence{Index: 0, Text: text, Start: 0, End: len(text)}
}

func TestProductVersionsInvalidPrefixStripsLeadingLetter(t *testing.T) {
	r := NewProductVersionsInvalidPrefix(rules.NewBase(nil))
	s := sentence("Install V2.1 today.")

	errs, err := r.Analyze(context.Background(), s.Text, []toolkit.Sentence{s}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 raw error, got %d", len(errs))
	}
	if len(errs[0].Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(errs[0].Suggestions))
	}
	if got := errs[0].Suggestions[0].Text; got != "Install 2.1 today." {
		t.Fatalf("expected %q, got %q", "Install 2.1 today.", got)
	}
}

func TestProductVersionsInvalidPrefixIgnoresPlainVersions(t *testing.T) {
	r := NewProductVersionsInvalidPrefix(rules.NewBase(nil))
	s := sentence("Install 2.1 today.")

	errs, err := r.Analyze(context.Background(), s.Text, []toolkit.Sentence{s}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors for an already-bare version, got %d", len(errs))
	}
}

func TestCitationsGenericLinkTextFlagsClickHere(t *testing.T) {
	r := NewCitationsGenericLinkText(rules.NewBase(nil))
	s := sentence("For setup steps, click here.")

	errs, err := r.Analyze(context.Background(), s.Text, []toolkit.Sentence{s}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
}

func TestProductNamesFirstMentionFlagsOnlyFirstBareMention(t *testing.T) {
	r := NewProductNamesFirstMention(rules.NewBase(nil))
	first := toolkit.Sentence{Index: 0, Text: "Watson analyzes the input.", Start: 0, End: 27}
	second := toolkit.Sentence{Index: 1, Text: "Watson then returns a score.", Start: 28, End: 57}

	errs, err := r.Analyze(context.Background(), "", []toolkit.Sentence{first, second}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected only the first mention to be flagged, got %d", len(errs))
	}
	if errs[0].SentenceIndex != 0 {
		t.Fatalf("expected the flagged mention in sentence 0, got %d", errs[0].SentenceIndex)
	}
	if got := errs[0].Suggestions[0].Text; got != "IBM Watson analyzes the input." {
		t.Fatalf("expected full product name substitution, got %q", got)
	}
}

func TestProductNamesFirstMentionSkipsAlreadyFullName(t *testing.T) {
	r := NewProductNamesFirstMention(rules.NewBase(nil))
	s := toolkit.Sentence{Index: 0, Text: "IBM Watson analyzes the input.", Start: 0, End: 31}

	errs, err := r.Analyze(context.Background(), "", []toolkit.Sentence{s}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors when the full name is already present, got %d", len(errs))
	}
}

func TestNamesAndTitlesCapitalizationFlagsLowercaseTitleWithName(t *testing.T) {
	r := NewNamesAndTitlesCapitalization(rules.NewBase(nil))
	s := sentence("Please contact director Smith for approval.")

	errs, err := r.Analyze(context.Background(), s.Text, []toolkit.Sentence{s}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	want := "Please contact Director Smith for approval."
	if got := errs[0].Suggestions[0].Text; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNamesAndTitlesCapitalizationIgnoresAlreadyCapitalizedTitle(t *testing.T) {
	r := NewNamesAndTitlesCapitalization(rules.NewBase(nil))
	s := sentence("Please contact Director Smith for approval.")

	errs, err := r.Analyze(context.Background(), s.Text, []toolkit.Sentence{s}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no errors for an already-capitalized title, got %d", len(errs))
	}
}

func TestGeographicLocationsCapitalizesDirectionalPlace(t *testing.T) {
	r := NewGeographicLocations(rules.NewBase(nil))
	s := sentence("We operate in northern california.")

	errs, err := r.Analyze(context.Background(), s.Text, []toolkit.Sentence{s}, nil, &rules.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if got := errs[0].Suggestions[0].Text; got != "We operate in Northern California." {
		t.Fatalf("expected %q, got %q", "We operate in Northern California.", got)
	}
}
