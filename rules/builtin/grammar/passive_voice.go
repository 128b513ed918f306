// Package grammar implements the "grammar" rule category.
package grammar

import (
	"context"
	"regexp"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
	"github.com/prosecheck-hq/prosecheck/rules"
	"github.com/prosecheck-hq/prosecheck/toolkit"
)

// passiveVoiceRe approximates passive-voice detection without a full
// dependency parse: a be-verb immediately followed by a past participle.
var passiveVoiceRe = regexp.MustCompile(`(?i)\b(is|are|was|were|be|been|being)\s+(\w+ed)\b`)

// PassiveVoice flags a likely passive-voice construction.
type PassiveVoice struct{ base *rules.Base }

func NewPassiveVoice(base *rules.Base) *PassiveVoice { return &PassiveVoice{base: base} }

func (r *PassiveVoice) RuleID() string { return "grammar.passive_voice" }

func (r *PassiveVoice) Category() domain.Category { return domain.CategoryGrammar }

func (r *PassiveVoice) DefaultSeverity() domain.Severity { return domain.SeverityLow }

func (r *PassiveVoice) AppliesTo(blockType blocks.BlockType, contentType domain.ContentType) bool {
	return blockType != blocks.TypeCodeBlock && blockType != blocks.TypeInlineCode
}

func (r *PassiveVoice) Analyze(ctx context.Context, text string, sentences []toolkit.Sentence, tk toolkit.Toolkit, rctx *rules.Context) ([]rules.RawError, error) {
	var out []rules.RawError
	for _, s := range sentences {
		r.base.AnalyzeSentenceStructure(s.Index, s)
		for _, loc := range passiveVoiceRe.FindAllStringIndex(s.Text, -1) {
			out = append(out, rules.RawError{
				Message:       "Consider rewriting in the active voice.",
				Severity:      domain.SeverityLow,
				SentenceIndex: s.Index,
				Sentence:      s.Text,
				Start:         s.Start + loc[0],
				End:           s.Start + loc[1],
				Suggestions: []rules.Suggestion{
					{Text: "Identify the actor and make it the subject of the sentence.", IsInstruction: true},
				},
				Signal:    0.45,
				HasSignal: true,
			})
		}
	}
	return out, nil
}
