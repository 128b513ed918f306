package blocks

import "strings"

// parsePlain splits text into paragraph blocks on blank-line boundaries.
func parsePlain(text string) []Block {
	var out []Block
	lines := splitKeepingOffsets(text)

	var cur []lineSpan
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, buildParagraph(cur))
		cur = nil
	}

	for _, ln := range lines {
		if strings.TrimSpace(ln.text) == "" {
			flush()
			continue
		}
		cur = append(cur, ln)
	}
	flush()
	return out
}

// lineSpan is one line of the document with its byte offsets.
type lineSpan struct {
	text  string
	start int
	end   int
}

// splitKeepingOffsets splits text into lines (without trailing "\n") while
// tracking each line's byte offsets within the original text.
func splitKeepingOffsets(text string) []lineSpan {
	var out []lineSpan
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, lineSpan{text: text[start:i], start: start, end: i})
			start = i + 1
		}
	}
	if start <= len(text) {
		out = append(out, lineSpan{text: text[start:], start: start, end: len(text)})
	}
	return out
}

// buildParagraph assembles a paragraph Block spanning a run of non-blank
// lines, preserving the verbatim text slice (including internal newlines).
func buildParagraph(lines []lineSpan) Block {
	start := lines[0].start
	end := lines[len(lines)-1].end
	return Block{
		Type:  TypeParagraph,
		Start: start,
		End:   end,
		Depth: 0,
		Text:  textBetween(lines, start, end),
	}
}

func textBetween(lines []lineSpan, start, end int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.text
	}
	joined := strings.Join(parts, "\n")
	_ = start
	_ = end
	return joined
}
