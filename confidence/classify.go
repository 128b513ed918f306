package confidence

import (
	"strings"

	"github.com/prosecheck-hq/prosecheck/domain"
)

// keywordProfiles is the frequency-weighted keyword profile used to classify
// a document's content type when the caller does not supply one (spec
// §4.3 step 3). Each keyword contributes one point to its content type's
// score; the highest-scoring type wins, with ContentGeneral as the
// fallback when no keyword matches.
var keywordProfiles = map[domain.ContentType][]string{
	domain.ContentTechnical: {
		"api", "function", "parameter", "configuration", "server", "database",
		"compile", "runtime", "thread", "endpoint", "protocol", "schema",
	},
	domain.ContentProcedural: {
		"step", "click", "select", "navigate", "press", "install", "configure",
		"follow", "procedure", "instructions",
	},
	domain.ContentNarrative: {
		"story", "journey", "experience", "remember", "felt", "once", "eventually",
	},
	domain.ContentLegal: {
		"shall", "hereby", "liability", "warranty", "clause", "agreement",
		"jurisdiction", "indemnify",
	},
	domain.ContentMarketing: {
		"amazing", "best-in-class", "revolutionary", "unlock", "discover",
		"limited time", "exclusive", "transform your",
	},
}

// Classify scores text against the keyword profiles and returns the
// best-matching content type. Empty text classifies as ContentGeneral.
func Classify(text string) domain.ContentType {
	if strings.TrimSpace(text) == "" {
		return domain.ContentGeneral
	}
	lower := strings.ToLower(text)

	best := domain.ContentGeneral
	bestScore := 0
	for _, ct := range domain.AllContentTypes {
		keywords := keywordProfiles[ct]
		score := 0
		for _, kw := range keywords {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			bestScore = score
			best = ct
		}
	}
	return best
}
