package models

// BlockKind identifies the variant of a Block.
type BlockKind string

// Block kinds produced by the parser
const (
	BlockHeading     BlockKind = "heading"
	BlockParagraph   BlockKind = "paragraph"
	BlockCodeFence   BlockKind = "code_fence"
	BlockListItem    BlockKind = "list_item"
	BlockTableRow    BlockKind = "table_row"
	BlockBlank       BlockKind = "blank"
	BlockRule        BlockKind = "rule"         // Thematic break (---, ***, ___)
	BlockFrontMatter BlockKind = "front_matter" // Leading YAML front matter
)

// Block is one typed element of a parsed document.
// Line and EndLine are 1-based and inclusive.
type Block struct {
	Kind     BlockKind // Variant tag
	Level    int       // Heading level in [1,6] (headings only)
	Text     string    // Heading, paragraph or list item text (raw markup)
	Language string    // Info string language (code fences only)
	Setext   bool      // Heading written in underline form
	Line     int       // First source line
	EndLine  int       // Last source line
}

// Lines returns the number of source lines the block spans.
func (b Block) Lines() int {
	if b.EndLine < b.Line {
		return 0
	}
	return b.EndLine - b.Line + 1
}

// ParseWarning records a recoverable parse degradation.
type ParseWarning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Document is the parsed, immutable form of one source file.
type Document struct {
	Path        string                 // Opaque identity (usually a file path)
	Raw         string                 // Original text
	Blocks      []Block                // Ordered block stream
	ProseText   string                 // Paragraph and list item text with inline markup stripped
	TotalLines  int                    // Number of source lines
	FrontMatter map[string]interface{} // Decoded front matter, nil when absent
	Title       string                 // Front matter title, else first H1 text
	Warnings    []ParseWarning         // Non-fatal degradations
}

// Headings returns the heading blocks in document order.
func (d *Document) Headings() []Block {
	var headings []Block
	for _, b := range d.Blocks {
		if b.Kind == BlockHeading {
			headings = append(headings, b)
		}
	}
	return headings
}

// CodeFences returns the number of fenced code blocks.
func (d *Document) CodeFences() int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == BlockCodeFence {
			n++
		}
	}
	return n
}
