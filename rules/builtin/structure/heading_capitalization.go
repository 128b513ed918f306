// Package structure implements the "structure" rule category.
package structure

import (
	"context"
	"strings"
	"unicode"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// minorWords are skipped when title-casing a heading, matching conventional
// style-guide title-case rules.
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "in": true, "nor": true, "of": true, "on": true,
	"or": true, "the": true, "to": true, "with": true,
}

// HeadingCapitalization flags a heading whose first word is not
// capitalized.
type HeadingCapitalization struct{ base *rules.Base }

func NewHeadingCapitalization(base *rules.Base) *HeadingCapitalization {
	return &HeadingCapitalization{base: base}
}

func (r *HeadingCapitalization) RuleID() string { return "structure.heading_capitalization" }

func (r *HeadingCapitalization) Category() domain.Category { return domain.CategoryStructure }

func (r *HeadingCapitalization) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r *HeadingCapitalization) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType == blocks.TypeHeading
}

func (r *HeadingCapitalization) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	trimmed := strings.TrimLeft(text, "# \t")
	if trimmed == "" {
		return nil, nil
	}
	first := []rune(trimmed)[0]
	if !unicode.IsLetter(first) || unicode.IsUpper(first) {
		return nil, nil
	}

	prefixLen := len(text) - len(trimmed)
	sentenceIndex, sentenceText := 0, text
	if len(sentences) > 0 {
		sentenceIndex = sentences[0].Index
		sentenceText = sentences[0].Text
	}

	return []rules.RawError{{
		Message:       "Capitalize the first word of the heading.",
		Severity:      domain.SeverityMedium,
		SentenceIndex: sentenceIndex,
		Sentence:      sentenceText,
		Start:         prefixLen,
		End:           prefixLen + len(string(first)),
		Suggestions:   []rules.Suggestion{{Text: titleCase(trimmed)}},
		Signal:        0.6,
		HasSignal:     true,
	}}, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && minorWords[lower] {
			words[i] = lower
			continue
		}
		r := []rune(lower)
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
