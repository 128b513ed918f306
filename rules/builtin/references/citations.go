package references

import (
	"context"
	"regexp"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

var genericLinkTextRe = regexp.MustCompile(`(?i)\b(click here|read more|learn more|this link|here)\b`)

// CitationsGenericLinkText flags vague link/citation phrasing that gives a
// reader no idea what the link leads to (scenario S2).
type CitationsGenericLinkText struct{ base *rules.Base }

func NewCitationsGenericLinkText(base *rules.Base) *CitationsGenericLinkText {
	return &CitationsGenericLinkText{base: base}
}

func (r *CitationsGenericLinkText) RuleID() string { return "references.citations.generic_link_text" }

func (r *CitationsGenericLinkText) Category() domain.Category { return domain.CategoryReferences }

func (r *CitationsGenericLinkText) DefaultSeverity() domain.Severity { return domain.SeverityHigh }

func (r *CitationsGenericLinkText) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *CitationsGenericLinkText) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		loc := genericLinkTextRe.FindStringIndex(s.Text)
		if loc == nil {
			continue
		}
		out = append(out, rules.RawError{
			Message:       "Use descriptive link text instead of a generic phrase.",
			Severity:      domain.SeverityHigh,
			SentenceIndex: s.Index,
			Sentence:      s.Text,
			Start:         s.Start + loc[0],
			End:           s.Start + loc[1],
			Suggestions: []rules.Suggestion{
				{Text: "Replace the link text with a descriptive phrase naming the destination.", IsInstruction: true},
			},
			Signal:      0.75,
			HasSignal:   true,
			Evidence:    0.8,
			HasEvidence: true,
		})
	}
	return out, nil
}
