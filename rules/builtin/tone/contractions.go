// Package tone implements the "tone" rule category.
package tone

import (
	"context"
	"regexp"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

var secondPersonContractionRe = regexp.MustCompile(`(?i)\byou('re|'ll|'d|'ve)\b`)

// SecondPersonContractions flags second-person contractions in content
// types where a more formal register is expected (legal, reference docs).
type SecondPersonContractions struct{ base *rules.Base }

func NewSecondPersonContractions(base *rules.Base) *SecondPersonContractions {
	return &SecondPersonContractions{base: base}
}

func (r *SecondPersonContractions) RuleID() string { return "tone.second_person_contractions" }

func (r *SecondPersonContractions) Category() domain.Category { return domain.CategoryTone }

func (r *SecondPersonContractions) DefaultSeverity() domain.Severity { return domain.SeverityLow }

func (r *SecondPersonContractions) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	if blockType == blocks.TypeCodeBlock || blockType == blocks.TypeInlineCode {
		return false
	}
	return contentType == domain.ContentLegal || contentType == domain.ContentTechnical
}

func (r *SecondPersonContractions) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		for _, loc := range secondPersonContractionRe.FindAllStringIndex(s.Text, -1) {
			matched := s.Text[loc[0]:loc[1]]
			expanded := expandContraction(matched)
			out = append(out, rules.RawError{
				Message:       "Expand the contraction for a more formal register.",
				Severity:      domain.SeverityLow,
				SentenceIndex: s.Index,
				Sentence:      s.Text,
				Start:         s.Start + loc[0],
				End:           s.Start + loc[1],
				Suggestions:   []rules.Suggestion{{Text: expanded}},
				Signal:        0.5,
				HasSignal:     true,
			})
		}
	}
	return out, nil
}

func expandContraction(s string) string {
	switch {
	case len(s) >= 4 && s[len(s)-3:] == "'re":
		return s[:len(s)-3] + " are"
	case len(s) >= 4 && s[len(s)-3:] == "'ll":
		return s[:len(s)-3] + " will"
	case len(s) >= 3 && s[len(s)-2:] == "'d":
		return s[:len(s)-2] + " would"
	case len(s) >= 4 && s[len(s)-3:] == "'ve":
		return s[:len(s)-3] + " have"
	default:
		return s
	}
}
