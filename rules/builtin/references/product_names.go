// Package references implements the "references" rule category: product
// name, citation, version, and geographic-location checks (spec §3,
// rule_category "references").
package references

import (
	"context"
	"regexp"
	"strings"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// productFullNames maps a bare product name to its required first-mention
// full form.
var productFullNames = map[string]string{
	"Watson":     "IBM Watson",
	"Kubernetes": "Kubernetes (K8s)",
	"Terraform":  "HashiCorp Terraform",
}

var productNameRe = regexp.MustCompile(`\b(Watson|Kubernetes|Terraform)\b`)

// ProductNamesFirstMention flags the first bare mention of a known product
// name in a document and suggests its full form (scenario S1).
type ProductNamesFirstMention struct{ base *rules.Base }

// NewProductNamesFirstMention returns the rule backed by base.
func NewProductNamesFirstMention(base *rules.Base) *ProductNamesFirstMention {
	return &ProductNamesFirstMention{base: base}
}

func (r *ProductNamesFirstMention) RuleID() string { return "references.product_names.first_mention" }

func (r *ProductNamesFirstMention) Category() domain.Category { return domain.CategoryReferences }

func (r *ProductNamesFirstMention) DefaultSeverity() domain.Severity { return domain.SeverityHigh }

func (r *ProductNamesFirstMention) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *ProductNamesFirstMention) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	seen := make(map[string]bool)
	var out []rules.RawError

	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		locs := productNameRe.FindAllStringIndex(s.Text, -1)
		for _, loc := range locs {
			name := s.Text[loc[0]:loc[1]]
			if seen[name] {
				continue
			}
			seen[name] = true

			full, ok := productFullNames[name]
			if !ok || strings.Contains(s.Text, full) {
				continue
			}

			out = append(out, rules.RawError{
				Message:       "Use the full product name on first mention.",
				Severity:      domain.SeverityHigh,
				SentenceIndex: s.Index,
				Sentence:      s.Text,
				Start:         s.Start + loc[0],
				End:           s.Start + loc[1],
				Suggestions: []rules.Suggestion{
					{Text: strings.Replace(s.Text, name, full, 1)},
				},
				Signal:      0.8,
				HasSignal:   true,
				Evidence:    0.9,
				HasEvidence: true,
			})
		}
	}
	return out, nil
}
