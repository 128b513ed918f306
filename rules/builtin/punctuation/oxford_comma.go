// Package punctuation implements the "punctuation" rule category.
package punctuation

import (
	"context"
	"regexp"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// seriesMissingOxfordRe matches a three-or-more item series whose final
// "and"/"or" item lacks a comma before the conjunction.
var seriesMissingOxfordRe = regexp.MustCompile(`\b(\w+), (\w+) (and|or) (\w+)\b`)

// OxfordComma flags a series that omits the comma before the final
// conjunction.
type OxfordComma struct{ base *rules.Base }

func NewOxfordComma(base *rules.Base) *OxfordComma { return &OxfordComma{base: base} }

func (r *OxfordComma) RuleID() string { return "punctuation.oxford_comma" }

func (r *OxfordComma) Category() domain.Category { return domain.CategoryPunctuation }

func (r *OxfordComma) DefaultSeverity() domain.Severity { return domain.SeverityLow }

func (r *OxfordComma) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *OxfordComma) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		loc := seriesMissingOxfordRe.FindStringSubmatchIndex(s.Text)
		if loc == nil {
			continue
		}
		fixed := s.Text[:loc[5]] + "," + s.Text[loc[5]:]
		out = append(out, rules.RawError{
			Message:       "Add a comma before the final conjunction in a series.",
			Severity:      domain.SeverityLow,
			SentenceIndex: s.Index,
			Sentence:      s.Text,
			Start:         s.Start + loc[0],
			End:           s.Start + loc[1],
			Suggestions:   []rules.Suggestion{{Text: fixed}},
			Signal:        0.4,
			HasSignal:     true,
		})
	}
	return out, nil
}
