package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/docqa/internal/models"
)

// MarkdownParser turns raw Markdown into a models.Document.
// Block structure comes from the line scanner; goldmark is only used to
// reduce inline markup (emphasis, links, code spans) to plain prose.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

// NewMarkdownParser creates a parser. A MarkdownParser is not shared
// between goroutines; create one per worker or per document.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		markdown: goldmark.New(),
	}
}

// Parse parses content into a Document. It returns a *ParseError when the
// content is not text; recoverable problems are recorded as warnings on
// the Document instead.
func (p *MarkdownParser) Parse(path string, content []byte) (*models.Document, error) {
	if !utf8.Valid(content) {
		return nil, &ParseError{Path: path, Reason: "content is not valid UTF-8"}
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, &ParseError{Path: path, Reason: "content contains NUL bytes (binary file?)"}
	}

	raw := string(content)
	lines := splitLines(raw)

	doc := &models.Document{
		Path:       path,
		Raw:        raw,
		TotalLines: len(lines),
	}

	sc := newScanner()
	start := 0
	if end, ok := frontMatterEnd(lines); ok {
		sc.push(models.Block{Kind: models.BlockFrontMatter, Line: 1, EndLine: end + 1})
		fm, err := decodeFrontMatter(lines[1:end])
		if err != nil {
			sc.warnings = append(sc.warnings, models.ParseWarning{
				Line:    1,
				Message: fmt.Sprintf("front matter is not valid YAML: %v", err),
			})
		}
		doc.FrontMatter = fm
		start = end + 1
	}

	sc.scan(lines[start:], start+1)

	doc.Blocks = sc.blocks
	doc.Warnings = sc.warnings
	doc.ProseText = p.proseText(doc.Blocks)
	doc.Title = p.title(doc)
	return doc, nil
}

// splitLines splits raw text into lines. A trailing newline does not start
// an extra line and CRLF endings are normalized.
func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimSuffix(raw, "\n")
	return strings.Split(raw, "\n")
}

// frontMatterEnd returns the index of the closing delimiter when lines
// open with a YAML front matter block.
func frontMatterEnd(lines []string) (int, bool) {
	if len(lines) < 2 || strings.TrimRight(lines[0], " \t") != "---" {
		return 0, false
	}
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimRight(lines[i], " \t")
		if trimmed == "---" || trimmed == "..." {
			return i, true
		}
	}
	return 0, false
}

func decodeFrontMatter(lines []string) (map[string]interface{}, error) {
	fm := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &fm); err != nil {
		return nil, err
	}
	return fm, nil
}

// proseText joins the plain text of paragraphs and list items. Blocks are
// separated by a blank line so that every block boundary ends a sentence.
func (p *MarkdownParser) proseText(blocks []models.Block) string {
	var parts []string
	for _, b := range blocks {
		if b.Kind != models.BlockParagraph && b.Kind != models.BlockListItem {
			continue
		}
		if plain := p.plainText(b.Text); plain != "" {
			parts = append(parts, plain)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (p *MarkdownParser) title(doc *models.Document) string {
	if t, ok := doc.FrontMatter["title"].(string); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	for _, b := range doc.Blocks {
		if b.Kind == models.BlockHeading && b.Level == 1 {
			return p.plainText(b.Text)
		}
	}
	return ""
}

// plainText renders inline Markdown as plain text: link and emphasis text
// is kept, images, autolinks and raw HTML are dropped, and whitespace is
// collapsed.
func (p *MarkdownParser) plainText(src string) string {
	source := []byte(src)
	root := p.markdown.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Image, *ast.AutoLink, *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}
