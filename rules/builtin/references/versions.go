package references

import (
	"context"
	"regexp"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// versionPrefixRe matches a version number written with a disallowed
// leading letter prefix, e.g. "V2.1" instead of "2.1".
var versionPrefixRe = regexp.MustCompile(`\b[Vv](\d+(?:\.\d+)*)\b`)

// ProductVersionsInvalidPrefix flags a version string carrying a "V"/"v"
// prefix and suggests the bare numeric form (scenario S3).
type ProductVersionsInvalidPrefix struct{ base *rules.Base }

func NewProductVersionsInvalidPrefix(base *rules.Base) *ProductVersionsInvalidPrefix {
	return &ProductVersionsInvalidPrefix{base: base}
}

func (r *ProductVersionsInvalidPrefix) RuleID() string {
	return "references.product_versions.invalid_prefix"
}

func (r *ProductVersionsInvalidPrefix) Category() domain.Category { return domain.CategoryReferences }

func (r *ProductVersionsInvalidPrefix) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r *ProductVersionsInvalidPrefix) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *ProductVersionsInvalidPrefix) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		loc := versionPrefixRe.FindStringSubmatchIndex(s.Text)
		if loc == nil {
			continue
		}
		numeric := s.Text[loc[2]:loc[3]]
		fixed := s.Text[:loc[0]] + numeric + s.Text[loc[1]:]

		out = append(out, rules.RawError{
			Message:       "Drop the leading version-number prefix.",
			Severity:      domain.SeverityMedium,
			SentenceIndex: s.Index,
			Sentence:      s.Text,
			Start:         s.Start + loc[0],
			End:           s.Start + loc[1],
			Suggestions:   []rules.Suggestion{{Text: fixed}},
			Signal:        0.7,
			HasSignal:     true,
		})
	}
	return out, nil
}
