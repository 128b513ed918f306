// Package domain holds the small, dependency-free enumerations shared by the
// rule, confidence, and analyzer packages. Splitting them out avoids an
// import cycle between rules (which needs to call the confidence pipeline)
// and confidence (which needs to know a rule's category).
package domain

// Category is the coarse rule grouping used for station applicability and
// analytics.
type Category string

// Rule category constants (spec §3, Error.rule_category).
const (
	CategoryGrammar     Category = "grammar"
	CategoryPunctuation Category = "punctuation"
	CategoryWordUsage   Category = "word_usage"
	CategoryTone        Category = "tone"
	CategoryCommands    Category = "commands"
	CategoryClaims      Category = "claims"
	CategoryPronouns    Category = "pronouns"
	CategoryReferences  Category = "references"
	CategoryStructure   Category = "structure"
	CategoryOther       Category = "other"
)

// AllCategories lists every recognized category, in a stable order, for
// building complete modifier matrices and iterating registries.
var AllCategories = []Category{
	CategoryGrammar,
	CategoryPunctuation,
	CategoryWordUsage,
	CategoryTone,
	CategoryCommands,
	CategoryClaims,
	CategoryPronouns,
	CategoryReferences,
	CategoryStructure,
	CategoryOther,
}

// Severity indicates how serious a detected issue is.
type Severity string

// Severity constants (spec §3, Error.severity).
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ContentType classifies the whole-document (or block-local, see open
// question #2) writing style for confidence modifiers.
type ContentType string

// Content type constants (spec §4.3 step 3).
const (
	ContentTechnical  ContentType = "technical"
	ContentProcedural ContentType = "procedural"
	ContentNarrative  ContentType = "narrative"
	ContentLegal      ContentType = "legal"
	ContentMarketing  ContentType = "marketing"
	ContentGeneral    ContentType = "general"
)

// AllContentTypes lists every classification value, in a stable order.
var AllContentTypes = []ContentType{
	ContentTechnical,
	ContentProcedural,
	ContentNarrative,
	ContentLegal,
	ContentMarketing,
	ContentGeneral,
}

// DocType is the document-shape axis used by modular compliance checks
// (spec §4.4 step 6), distinct from the stylistic ContentType above.
type DocType string

// DocType constants.
const (
	DocConcept   DocType = "concept"
	DocProcedure DocType = "procedure"
	DocReference DocType = "reference"
)
