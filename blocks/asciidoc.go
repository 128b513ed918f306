package blocks

import (
	"regexp"
	"strings"
)

var (
	adHeading    = regexp.MustCompile(`^(=+)\s+(.*)$`)
	adUnordered  = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	adOrdered    = regexp.MustCompile(`^(\.+)\s+(.*)$`)
	adAdmonition = regexp.MustCompile(`(?i)^(NOTE|TIP|WARNING|IMPORTANT|CAUTION):\s*(.*)$`)
)

const adListing = "----"

// parseAsciidoc recognizes AsciiDoc section headings ("= Title", "== Sub"),
// listing blocks delimited by "----", unordered ("*") and ordered (".")
// lists, and admonition paragraphs (NOTE:/TIP:/WARNING:/...). Anything else
// falls back to paragraph grouping, mirroring parsePlain.
func parseAsciidoc(text string) []Block {
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

		case trimmed == adListing:
			flushPara()
			start := ln.start
			j := i + 1
			for j < len(lines) && strings.TrimRight(lines[j].text, "\r") != adListing {
				j++
			}
			closing := min(j, len(lines)-1)
			end := lines[closing].end
			body := bodyBetween(lines, i+1, min(j, len(lines)))
			out = append(out, Block{Type: TypeCodeBlock, Start: start, End: end, Text: body})
			i = j + 1
			continue

		case adHeading.MatchString(trimmed):
			flushPara()
			m := adHeading.FindStringSubmatch(trimmed)
			out = append(out, Block{Type: TypeHeading, Start: ln.start, End: ln.end, Depth: len(m[1]) - 1, Text: m[2]})
			i++
			continue

		case adAdmonition.MatchString(trimmed):
			flushPara()
			m := adAdmonition.FindStringSubmatch(trimmed)
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

		case adOrdered.MatchString(trimmed):
			flushPara()
			m := adOrdered.FindStringSubmatch(trimmed)
			out = append(out, Block{Type: TypeOrderedListItem, Start: ln.start, End: ln.end, Depth: len(m[1]) - 1, Text: m[2]})
			i++
			continue

		case adUnordered.MatchString(trimmed):
			flushPara()
			m := adUnordered.FindStringSubmatch(trimmed)
			out = append(out, Block{Type: TypeListItem, Start: ln.start, End: ln.end, Depth: len(m[1]) - 1, Text: m[2]})
			i++
			continue

		case mdTableRow.MatchString(trimmed) && !mdTableSep.MatchString(trimmed):
			flushPara()
			rowBlocks, consumed := parseMarkdownTable(lines, i)
			out = append(out, rowBlocks...)
			i += consumed
			continue

		default:
			paraBuf = append(paraBuf, ln)
			i++
		}
	}
	flushPara()
	return out
}
