package analyzer

import (
	"strings"

	"github.com/prosecheck-hq/prosecheck/blocks"
	"github.com/prosecheck-hq/prosecheck/domain"
)

// ComplianceFinding is one modular-compliance observation keyed to a
// document shape (spec §4.4 step 6: "modular compliance checks for
// {concept, procedure, reference} content types").
type ComplianceFinding struct {
	CheckID string
	DocType domain.DocType
	Message string
	BlockID string
}

// classifyDocType infers the document shape from its block sequence: if
// more than 30% of the prose blocks are ordered_list_item blocks it is a
// procedure; else if more than 30% are table_cell blocks it is a reference;
// otherwise a concept document.
func classifyDocType(docBlocks []blocks.Block) domain.DocType {
	var ordered, table, total int
	for _, b := range docBlocks {
		if !b.IsProse() && b.Type != blocks.TypeOrderedListItem {
			continue
		}
		total++
		switch b.Type {
		case blocks.TypeOrderedListItem:
			ordered++
		case blocks.TypeTableCell:
			table++
		}
	}
	if total == 0 {
		return domain.DocConcept
	}
	if float64(ordered)/float64(total) > 0.3 {
		return domain.DocProcedure
	}
	if float64(table)/float64(total) > 0.3 {
		return domain.DocReference
	}
	return domain.DocConcept
}

// runComplianceChecks applies the check set appropriate to docType.
func runComplianceChecks(docBlocks []blocks.Block, docType domain.DocType) []ComplianceFinding {
	switch docType {
	case domain.DocProcedure:
		return procedureChecks(docBlocks)
	case domain.DocReference:
		return referenceChecks(docBlocks)
	default:
		return conceptChecks(docBlocks)
	}
}

// procedureChecks requires at least one heading and imperative-looking
// first words on ordered steps.
func procedureChecks(docBlocks []blocks.Block) []ComplianceFinding {
	var findings []ComplianceFinding
	hasHeading := false
	for _, b := range docBlocks {
		if b.Type == blocks.TypeHeading {
			hasHeading = true
		}
		if b.Type == blocks.TypeOrderedListItem {
			trimmed := strings.TrimSpace(b.Text)
			if trimmed != "" && !startsWithVerbLike(trimmed) {
				findings = append(findings, ComplianceFinding{
					CheckID: "procedure.step_not_imperative",
					DocType: domain.DocProcedure,
					Message: "Procedure steps should start with an imperative verb.",
					BlockID: b.ID,
				})
			}
		}
	}
	if !hasHeading {
		findings = append(findings, ComplianceFinding{
			CheckID: "procedure.missing_heading",
			DocType: domain.DocProcedure,
			Message: "Procedure documents should open with a heading.",
		})
	}
	return findings
}

// referenceChecks flags the first table cell that comes before any heading
// in the document. It reports at most one finding: once a heading (or a
// flagged cell) has been seen, later tables are not checked.
func referenceChecks(docBlocks []blocks.Block) []ComplianceFinding {
	var findings []ComplianceFinding
	sawHeadingRecently := false
	for _, b := range docBlocks {
		switch b.Type {
		case blocks.TypeHeading:
			sawHeadingRecently = true
		case blocks.TypeTableCell:
			if !sawHeadingRecently {
				findings = append(findings, ComplianceFinding{
					CheckID: "reference.table_without_heading",
					DocType: domain.DocReference,
					Message: "Reference tables should be introduced by a heading.",
					BlockID: b.ID,
				})
				sawHeadingRecently = true // avoid repeating per cell
			}
		}
	}
	return findings
}

// conceptChecks requires at least one paragraph of substantive prose.
func conceptChecks(docBlocks []blocks.Block) []ComplianceFinding {
	for _, b := range docBlocks {
		if b.Type == blocks.TypeParagraph && len(strings.Fields(b.Text)) >= 20 {
			return nil
		}
	}
	return []ComplianceFinding{{
		CheckID: "concept.thin_content",
		DocType: domain.DocConcept,
		Message: "Concept documents should include at least one substantive paragraph.",
	}}
}

var imperativeVerbs = map[string]bool{
	"click": true, "select": true, "open": true, "run": true, "install": true,
	"configure": true, "set": true, "enter": true, "navigate": true, "choose": true,
	"create": true, "delete": true, "update": true, "verify": true, "check": true,
	"restart": true, "enable": true, "disable": true, "review": true, "confirm": true,
}

func startsWithVerbLike(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToLower(strings.Trim(fields[0], ".,:;"))
	return imperativeVerbs[first]
}
