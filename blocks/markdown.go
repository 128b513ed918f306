package blocks

import (
	"regexp"
	"strings"
)

var (
	mdHeading    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	mdFence      = regexp.MustCompile("^```")
	mdUnordered  = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
	mdOrdered    = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
	mdTableRow   = regexp.MustCompile(`^\s*\|(.*)\|\s*$`)
	mdTableSep   = regexp.MustCompile(`^\s*\|?[\s:|-]+\|?\s*$`)
	mdAdmonition = regexp.MustCompile(`(?i)^(NOTE|TIP|WARNING|IMPORTANT|CAUTION):\s*(.*)$`)
)

// parseMarkdown walks the document line by line, recognizing headings,
// fenced code blocks, list items, blockquotes/admonitions, and tables.
// Anything else falls back to paragraph grouping on blank-line boundaries.
func parseMarkdown(text string) []Block {
	lines := splitKeepingOffsets(text)
	var out []Block

	var paraBuf []lineSpan
	flushPara := func() {
		if len(paraBuf) == 0 {
			return
		}
		out = append(out, buildParagraph(paraBuf))
		paraBuf = nil
	}

	i := 0
	for i < len(lines) {
		ln := lines[i]
		trimmed := strings.TrimRight(ln.text, "\r")

		switch {
		case strings.TrimSpace(trimmed) == "":
			flushPara()
			i++
			continue

		case mdFence.MatchString(trimmed):
			flushPara()
			start := ln.start
			j := i + 1
			for j < len(lines) && !mdFence.MatchString(strings.TrimRight(lines[j].text, "\r")) {
				j++
			}
			closing := min(j, len(lines)-1)
			end := lines[closing].end
			body := bodyBetween(lines, i+1, min(j, len(lines)))
			out = append(out, Block{Type: TypeCodeBlock, Start: start, End: end, Text: body})
			i = j + 1
			continue

		case mdHeading.MatchString(trimmed):
			flushPara()
			m := mdHeading.FindStringSubmatch(trimmed)
			depth := len(m[1])
			out = append(out, Block{Type: TypeHeading, Start: ln.start, End: ln.end, Depth: depth, Text: m[2]})
			i++
			continue

		case mdAdmonition.MatchString(trimmed):
			flushPara()
			m := mdAdmonition.FindStringSubmatch(trimmed)
			parent := Block{Type: TypeAdmonition, Start: ln.start, End: ln.end, Text: strings.ToUpper(m[1])}
			out = append(out, parent)
			parentIdx := len(out) - 1
			if strings.TrimSpace(m[2]) != "" {
				child := Block{Type: TypeParagraph, Start: ln.start, End: ln.end, Depth: 1, Text: m[2]}
				out = append(out, child)
				out[parentIdx].End = child.End
			}
			i++
			continue

		case mdOrdered.MatchString(trimmed):
			flushPara()
			m := mdOrdered.FindStringSubmatch(trimmed)
			depth := len(m[1]) / 2
			out = append(out, Block{Type: TypeOrderedListItem, Start: ln.start, End: ln.end, Depth: depth, Text: m[3]})
			i++
			continue

		case mdUnordered.MatchString(trimmed):
			flushPara()
			m := mdUnordered.FindStringSubmatch(trimmed)
			depth := len(m[1]) / 2
			out = append(out, Block{Type: TypeListItem, Start: ln.start, End: ln.end, Depth: depth, Text: m[2]})
			i++
			continue

		case mdTableRow.MatchString(trimmed) && !mdTableSep.MatchString(trimmed):
			flushPara()
			rowBlocks, consumed := parseMarkdownTable(lines, i)
			out = append(out, rowBlocks...)
			i += consumed
			continue

		case strings.HasPrefix(trimmed, ">"):
			flushPara()
			content := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
			out = append(out, Block{Type: TypeBlockquote, Start: ln.start, End: ln.end, Text: content})
			i++
			continue

		default:
			paraBuf = append(paraBuf, ln)
			i++
		}
	}
	flushPara()
	return out
}

// parseMarkdownTable consumes a contiguous run of pipe-delimited rows
// starting at index i (skipping a separator row if present) and emits one
// table_cell block per cell, tagged with its row/column.
func parseMarkdownTable(lines []lineSpan, i int) ([]Block, int) {
	var out []Block
	row := 0
	consumed := 0
	for i+consumed < len(lines) {
		ln := lines[i+consumed]
		trimmed := strings.TrimRight(ln.text, "\r")
		if !mdTableRow.MatchString(trimmed) {
			break
		}
		if mdTableSep.MatchString(trimmed) {
			consumed++
			continue
		}
		m := mdTableRow.FindStringSubmatch(trimmed)
		cells := strings.Split(m[1], "|")
		for col, cell := range cells {
			out = append(out, Block{
				Type:  TypeTableCell,
				Start: ln.start,
				End:   ln.end,
				Text:  strings.TrimSpace(cell),
				Table: &TableRef{Row: row, Column: col},
			})
		}
		row++
		consumed++
	}
	return out, consumed
}

func bodyBetween(lines []lineSpan, from, to int) string {
	if from >= to {
		return ""
	}
	parts := make([]string, 0, to-from)
	for _, l := range lines[from:to] {
		parts = append(parts, l.text)
	}
	return strings.Join(parts, "\n")
}
