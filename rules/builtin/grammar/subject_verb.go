package grammar

import (
	"context"
	"regexp"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// mismatchedAgreementRe catches a small set of common singular/plural
// agreement slips without a full dependency parse.
var mismatchedAgreementRe = regexp.MustCompile(`(?i)\b(they|we|you|these|those)\s+(is|was|has)\b|\b(he|she|it|this|that)\s+(are|were|have)\b`)

// SubjectVerbAgreement flags a likely subject-verb number mismatch.
type SubjectVerbAgreement struct{ base *rules.Base }

func NewSubjectVerbAgreement(base *rules.Base) *SubjectVerbAgreement {
	return &SubjectVerbAgreement{base: base}
}

func (r *SubjectVerbAgreement) RuleID() string { return "grammar.subject_verb_agreement" }

func (r *SubjectVerbAgreement) Category() domain.Category { return domain.CategoryGrammar }

func (r *SubjectVerbAgreement) DefaultSeverity() domain.Severity { return domain.SeverityMedium }

func (r *SubjectVerbAgreement) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *SubjectVerbAgreement) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		for _, loc := range mismatchedAgreementRe.FindAllStringIndex(s.Text, -1) {
			out = append(out, rules.RawError{
				Message:       "Subject and verb may not agree in number.",
				Severity:      domain.SeverityMedium,
				SentenceIndex: s.Index,
				Sentence:      s.Text,
				Start:         s.Start + loc[0],
				End:           s.Start + loc[1],
				Suggestions: []rules.Suggestion{
					{Text: "Match the verb's number to its subject.", IsInstruction: true},
				},
				Signal:    0.55,
				HasSignal: true,
			})
		}
	}
	return out, nil
}
