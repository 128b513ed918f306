// Package blocks implements the structural parser: it converts raw document
// text plus a format hint into an ordered, non-overlapping sequence of typed
// blocks for downstream rule analysis.
package blocks

// BlockType enumerates the structural roles a Block can play.
type BlockType string

// Block type constants.
const (
	TypeParagraph       BlockType = "paragraph"
	TypeHeading         BlockType = "heading"
	TypeListItem        BlockType = "list_item"
	TypeOrderedListItem BlockType = "ordered_list_item"
	TypeCodeBlock       BlockType = "code_block"
	TypeInlineCode      BlockType = "inline_code"
	TypeBlockquote      BlockType = "blockquote"
	TypeTableCell       BlockType = "table_cell"
	TypeAdmonition      BlockType = "admonition"
	TypeOther           BlockType = "other"
)

// FormatHint selects which structural grammar to parse with.
type FormatHint string

// Format hint constants.
const (
	FormatAuto     FormatHint = "auto"
	FormatPlain    FormatHint = "plain"
	FormatMarkdown FormatHint = "markdown"
	FormatAsciidoc FormatHint = "asciidoc"
)

// TableRef locates a table_cell block within its originating table.
type TableRef struct {
	Row    int
	Column int
}

// Block is an ordered, non-overlapping span of the document.
type Block struct {
	ID       string
	Type     BlockType
	Start    int
	End      int
	Depth    int
	Text     string
	ParentID string
	Table    *TableRef
}

// IsProse reports whether rule analysis should run over this block's text.
// code_block and inline_code bodies are excluded from prose analysis
// (spec §4.1, "fenced code blocks ... prose rules MUST be skipped").
func (b Block) IsProse() bool {
	return b.Type != TypeCodeBlock && b.Type != TypeInlineCode
}
