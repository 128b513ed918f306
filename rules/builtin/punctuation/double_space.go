package punctuation

import (
	"context"
	"regexp"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

var doubleSpaceRe = regexp.MustCompile(`[^\S\n]{2,}`)

// DoubleSpace flags runs of two or more consecutive spaces within a
// sentence.
type DoubleSpace struct{ base *rules.Base }

func NewDoubleSpace(base *rules.Base) *DoubleSpace { return &DoubleSpace{base: base} }

func (r *DoubleSpace) RuleID() string { return "punctuation.double_space" }

func (r *DoubleSpace) Category() domain.Category { return domain.CategoryPunctuation }

func (r *DoubleSpace) DefaultSeverity() domain.Severity { return domain.SeverityLow }

func (r *DoubleSpace) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType == blocks.TypeParagraph || blockType == blocks.TypeListItem ||
		blockType == blocks.TypeOrderedListItem || blockType == blocks.TypeBlockquote
}

func (r *DoubleSpace) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		for _, loc := range doubleSpaceRe.FindAllStringIndex(s.Text, -1) {
			out = append(out, rules.RawError{
				Message:       "Collapse repeated spaces to one.",
				Severity:      domain.SeverityLow,
				SentenceIndex: s.Index,
				Sentence:      s.Text,
				Start:         s.Start + loc[0],
				End:           s.Start + loc[1],
				Suggestions:   []rules.Suggestion{{Text: " "}},
				Signal:        0.9,
				HasSignal:     true,
			})
		}
	}
	return out, nil
}
