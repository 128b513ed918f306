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

// directionalPlaceRe matches a lowercase directional modifier followed by a
// lowercase place name, e.g. "northern california".
var directionalPlaceRe = regexp.MustCompile(`\b(northern|southern|eastern|western|north|south|east|west)\s+([a-z][a-z]+)\b`)

// GeographicLocations flags geographic references that should be
// capitalized as proper nouns (scenario S4).
type GeographicLocations struct{ base *rules.Base }

func NewGeographicLocations(base *rules.Base) *GeographicLocations {
	return &GeographicLocations{base: base}
}

func (r *GeographicLocations) RuleID() string { return "references.geographic_locations" }

func (r *GeographicLocations) Category() domain.Category { return domain.CategoryReferences }

func (r *GeographicLocations) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r *GeographicLocations) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *GeographicLocations) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		loc := directionalPlaceRe.FindStringSubmatchIndex(s.Text)
		if loc == nil {
			continue
		}
		matched := s.Text[loc[0]:loc[1]]
		capitalized := capitalizeWords(matched)
		fixed := s.Text[:loc[0]] + capitalized + s.Text[loc[1]:]

		out = append(out, rules.RawError{
			Message:       "Capitalize directional geographic references.",
			Severity:      domain.SeverityMedium,
			SentenceIndex: s.Index,
			Sentence:      s.Text,
			Start:         s.Start + loc[0],
			End:           s.Start + loc[1],
			Suggestions:   []rules.Suggestion{{Text: fixed}},
			Signal:        0.65,
			HasSignal:     true,
		})
	}
	return out, nil
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
