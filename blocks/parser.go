package blocks

import (
	"fmt"
	"strings"
)

// detectWindow is how much of the document's head is inspected by the auto
// format detector (spec §4.1: "inspects the first 1 KiB").
const detectWindow = 1024

// Parse converts text into an ordered sequence of Blocks according to hint.
// It never returns an error for malformed markup: parse ambiguity falls back
// to a single paragraph block for the ambiguous region. Only empty input
// yields an empty slice.
func Parse(text string, hint FormatHint) ([]Block, error) {
	if text == "" {
		return nil, nil
	}

	effective := hint
	if effective == "" || effective == FormatAuto {
		effective = detectFormat(text)
	}

	var out []Block
	switch effective {
	case FormatMarkdown:
		out = parseMarkdown(text)
	case FormatAsciidoc:
		out = parseAsciidoc(text)
	default:
		out = parsePlain(text)
	}

	assignIDs(out)
	return out, nil
}

// detectFormat implements the auto heuristic: an AsciiDoc section title
// (one or more '=' followed by whitespace) or a "----" listing delimiter
// implies AsciiDoc; Markdown headings, bullet lists, or fenced code implies
// Markdown; otherwise plain.
func detectFormat(text string) FormatHint {
	window := text
	if len(window) > detectWindow {
		window = window[:detectWindow]
	}

	lines := strings.Split(window, "\n")
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		switch {
		case adHeading.MatchString(trimmed):
			return FormatAsciidoc
		case trimmed == "----":
			return FormatAsciidoc
		}
	}
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(trimmed, "# "):
			return FormatMarkdown
		case strings.HasPrefix(trimmed, "* "):
			return FormatMarkdown
		case strings.HasPrefix(trimmed, "```"):
			return FormatMarkdown
		}
	}
	return FormatPlain
}

// assignIDs stamps a stable, position-derived id on every block in parse
// order. IDs are stable within one analysis (the same text parsed twice
// yields the same ids) but are not guaranteed stable across edits.
func assignIDs(out []Block) {
	for i := range out {
		out[i].ID = fmt.Sprintf("b%d-%d-%d", i, out[i].Start, out[i].End)
	}
	// An admonition's immediate successor block (if nested, Depth > 0) is its
	// child; link it by id so consumers can reconstruct the parent/child
	// relationship spec §3 requires for nested blocks.
	for i := 0; i+1 < len(out); i++ {
		if out[i].Type == TypeAdmonition && out[i+1].Depth > 0 {
			out[i+1].ParentID = out[i].ID
		}
	}
}
