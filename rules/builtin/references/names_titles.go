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

// professionalTitles are titles that take title case when they directly
// precede a personal name (IBM Style Guide, "Names and titles").
var professionalTitles = []string{
	"chief executive officer", "chief technology officer", "chief financial officer",
	"vice president", "managing director", "executive director",
	"director", "manager", "president", "supervisor", "coordinator",
	"specialist", "engineer", "architect", "analyst", "professor",
}

// titleWithNameRe matches a lowercase professional title immediately
// followed by a capitalized word, the shape of a title used with a name
// ("director Smith"). Because the title alternatives are written lowercase
// and the match is case-sensitive, an already-capitalized title ("Director
// Smith") never matches.
var titleWithNameRe = regexp.MustCompile(`\b(` + strings.Join(professionalTitles, "|") + `)\s+([A-Z][a-zA-Z]*)\b`)

// NamesAndTitlesCapitalization flags a professional title used with a
// personal name that is not itself capitalized.
type NamesAndTitlesCapitalization struct{ base *rules.Base }

func NewNamesAndTitlesCapitalization(base *rules.Base) *NamesAndTitlesCapitalization {
	return &NamesAndTitlesCapitalization{base: base}
}

func (r *NamesAndTitlesCapitalization) RuleID() string {
	return "references.names_and_titles.capitalization"
}

func (r *NamesAndTitlesCapitalization) Category() domain.Category { return domain.CategoryReferences }

func (r *NamesAndTitlesCapitalization) DefaultSeverity() domain.Severity {
	return domain.SeverityMedium
}

func (r *NamesAndTitlesCapitalization) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *NamesAndTitlesCapitalization) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		for _, loc := range titleWithNameRe.FindAllStringSubmatchIndex(s.Text, -1) {
			title := s.Text[loc[2]:loc[3]]
			name := s.Text[loc[4]:loc[5]]
			fixed := s.Text[:loc[0]] + capitalizeWords(title) + " " + name + s.Text[loc[1]:]

			out = append(out, rules.RawError{
				Message:       "Titles used with a personal name take title case.",
				Severity:      domain.SeverityMedium,
				SentenceIndex: s.Index,
				Sentence:      s.Text,
				Start:         s.Start + loc[0],
				End:           s.Start + loc[1],
				Suggestions:   []rules.Suggestion{{Text: fixed}},
				Signal:        0.6,
				HasSignal:     true,
			})
		}
	}
	return out, nil
}
