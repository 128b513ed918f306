package analyzer

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/rules"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+[\s\n]+`)
var wordRe = regexp.MustCompile(`[A-Za-z']+`)

// computeStatistics derives document-wide counts and readability indices
// from the parsed prose blocks (spec §4.4 step 5).
func computeStatistics(docBlocks []blocks.Block, errors []rules.Error) Statistics {
	var words []string
	sentenceCount := 0
	paragraphCount := 0
	passiveCount := 0

	for _, b := range docBlocks {
		if !b.IsProse() {
			continue
		}
		if b.Type == blocks.TypeParagraph {
			paragraphCount++
		}
		ws := wordRe.FindAllString(b.Text, -1)
		words = append(words, ws...)
		for _, s := range sentenceSplitRe.Split(strings.TrimSpace(b.Text), -1) {
			if strings.TrimSpace(s) != "" {
				sentenceCount++
			}
		}
	}

	for _, e := range errors {
		if e.RuleID == "grammar.passive_voice" {
			passiveCount++
		}
	}

	wordCount := len(words)
	if sentenceCount == 0 {
		sentenceCount = 1
	}
	if wordCount == 0 {
		return Statistics{}
	}

	syllableTotal := 0
	complexWords := 0
	unique := make(map[string]bool, wordCount)
	for _, w := range words {
		lw := strings.ToLower(w)
		unique[lw] = true
		syl := countSyllables(lw)
		syllableTotal += syl
		if syl >= 3 {
			complexWords++
		}
	}

	avgSentenceLen := float64(wordCount) / float64(sentenceCount)
	avgSyllablesPerWord := float64(syllableTotal) / float64(wordCount)
	complexRatio := float64(complexWords) / float64(wordCount)

	flesch := 206.835 - 1.015*avgSentenceLen - 84.6*avgSyllablesPerWord
	fkGrade := 0.39*avgSentenceLen + 11.8*avgSyllablesPerWord - 15.59
	fog := 0.4 * (avgSentenceLen + 100*complexRatio)
	smog := 1.0430*math.Sqrt(float64(complexWords)*(30.0/float64(sentenceCount))) + 3.1291

	passiveRatio := 0.0
	if sentenceCount > 0 {
		passiveRatio = float64(passiveCount) / float64(sentenceCount)
	}

	return Statistics{
		WordCount:           wordCount,
		SentenceCount:       sentenceCount,
		ParagraphCount:      paragraphCount,
		AverageSentenceLen:  avgSentenceLen,
		PassiveVoiceRatio:   passiveRatio,
		ComplexWordRatio:    complexRatio,
		VocabularyDiversity: float64(len(unique)) / float64(wordCount),
		FleschReadingEase:   flesch,
		FleschKincaidGrade:  fkGrade,
		GunningFog:          fog,
		SMOG:                smog,
	}
}

// countSyllables is a standard vowel-group heuristic: count vowel-group
// transitions, drop a trailing silent "e", floor at one syllable.
func countSyllables(word string) int {
	word = strings.TrimSpace(word)
	if word == "" {
		return 0
	}
	vowels := "aeiouy"
	count := 0
	prevWasVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune(vowels, unicode.ToLower(r))
		if isVowel && !prevWasVowel {
			count++
		}
		prevWasVowel = isVowel
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
