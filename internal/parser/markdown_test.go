package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docqa/internal/models"
)

func parse(t *testing.T, content string) *models.Document {
	t.Helper()
	doc, err := NewMarkdownParser().Parse("doc.md", []byte(content))
	require.NoError(t, err)
	return doc
}

func kinds(doc *models.Document) []models.BlockKind {
	out := make([]models.BlockKind, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		out = append(out, b.Kind)
	}
	return out
}

func TestParse_BlockStream(t *testing.T) {
	content := "# Title\n" +
		"\n" +
		"Intro paragraph\n" +
		"continues here.\n" +
		"\n" +
		"- first item\n" +
		"- second item\n" +
		"\n" +
		"| a | b |\n" +
		"|---|---|\n" +
		"| 1 | 2 |\n" +
		"\n" +
		"```go\n" +
		"fmt.Println(\"hi\")\n" +
		"```\n"

	doc := parse(t, content)

	assert.Equal(t, 15, doc.TotalLines)
	assert.Equal(t, []models.BlockKind{
		models.BlockHeading,
		models.BlockBlank,
		models.BlockParagraph,
		models.BlockBlank,
		models.BlockListItem,
		models.BlockListItem,
		models.BlockBlank,
		models.BlockTableRow,
		models.BlockTableRow,
		models.BlockTableRow,
		models.BlockBlank,
		models.BlockCodeFence,
	}, kinds(doc))

	para := doc.Blocks[2]
	assert.Equal(t, 3, para.Line)
	assert.Equal(t, 4, para.EndLine)

	code := doc.Blocks[11]
	assert.Equal(t, "go", code.Language)
	assert.Equal(t, 13, code.Line)
	assert.Equal(t, 15, code.EndLine)

	assert.Equal(t, "Intro paragraph continues here.\n\nfirst item\n\nsecond item", doc.ProseText)
	assert.Equal(t, "Title", doc.Title)
	assert.Empty(t, doc.Warnings)
}

func TestParse_HeadingsInsideFenceAreIgnored(t *testing.T) {
	content := "# Real\n\n```markdown\n# Fake heading\n## Another\n| not | table |\n```\n"
	doc := parse(t, content)

	headings := doc.Headings()
	require.Len(t, headings, 1)
	assert.Equal(t, "Real", headings[0].Text)
	assert.Equal(t, 1, doc.CodeFences())
	assert.Empty(t, doc.ProseText)
}

func TestParse_InnerFenceDelimiterIsLiteral(t *testing.T) {
	content := "````md\n```go\ncode\n```\n````\nAfter.\n"
	doc := parse(t, content)

	require.Equal(t, []models.BlockKind{models.BlockCodeFence, models.BlockParagraph}, kinds(doc))
	assert.Equal(t, 1, doc.Blocks[0].Line)
	assert.Equal(t, 5, doc.Blocks[0].EndLine)
	assert.Equal(t, "After.", doc.ProseText)
}

func TestParse_UnterminatedFenceWarns(t *testing.T) {
	content := "# Title\n\nSome text.\n\n```sh\necho hi\n# comment\n"
	doc := parse(t, content)

	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, 5, doc.Warnings[0].Line)
	assert.Contains(t, doc.Warnings[0].Message, "never closed")

	last := doc.Blocks[len(doc.Blocks)-1]
	assert.Equal(t, models.BlockCodeFence, last.Kind)
	assert.Equal(t, 7, last.EndLine)
	assert.Len(t, doc.Headings(), 1)
}

func TestParse_SetextHeadings(t *testing.T) {
	content := "Main Title\n==========\n\nSub Title\n---------\n\nBody text.\n"
	doc := parse(t, content)

	headings := doc.Headings()
	require.Len(t, headings, 2)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, "Main Title", headings[0].Text)
	assert.True(t, headings[0].Setext)
	assert.Equal(t, 1, headings[0].Line)
	assert.Equal(t, 2, headings[0].EndLine)
	assert.Equal(t, 2, headings[1].Level)
	assert.Equal(t, "Body text.", doc.ProseText)
}

func TestParse_SetextNotRecognizedInsideFence(t *testing.T) {
	content := "```\nNot a title\n===\n```\n"
	doc := parse(t, content)
	assert.Empty(t, doc.Headings())
}

func TestParse_ThematicBreakWithoutParagraph(t *testing.T) {
	content := "# Title\n\n---\n\nText.\n"
	doc := parse(t, content)
	assert.Equal(t, models.BlockRule, doc.Blocks[2].Kind)
	assert.Len(t, doc.Headings(), 1)
}

func TestParse_TableExitsOnText(t *testing.T) {
	content := "| a | b |\n| - | - |\nBack to prose.\n"
	doc := parse(t, content)

	assert.Equal(t, []models.BlockKind{
		models.BlockTableRow,
		models.BlockTableRow,
		models.BlockParagraph,
	}, kinds(doc))
	assert.Equal(t, "Back to prose.", doc.ProseText)
}

func TestParse_ListContinuation(t *testing.T) {
	content := "- first line\n  wraps here.\n- second.\n"
	doc := parse(t, content)

	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, 2, doc.Blocks[0].EndLine)
	assert.Equal(t, "first line wraps here.\n\nsecond.", doc.ProseText)
}

func TestParse_LazyListContinuation(t *testing.T) {
	content := "- first item\ncontinues without indent.\n- second.\n"
	doc := parse(t, content)

	require.Equal(t, []models.BlockKind{models.BlockListItem, models.BlockListItem}, kinds(doc))
	assert.Equal(t, 2, doc.Blocks[0].EndLine)
	assert.Equal(t, "first item continues without indent.\n\nsecond.", doc.ProseText)
}

func TestParse_FenceNestedUnderListItem(t *testing.T) {
	content := "1. Apply the policy:\n" +
		"\n" +
		"    ```yaml\n" +
		"    - name: require labels\n" +
		"      match: all resources in cluster\n" +
		"    | not | a table |\n" +
		"    ```\n" +
		"\n" +
		"Verify it.\n"

	doc := parse(t, content)

	require.Equal(t, []models.BlockKind{
		models.BlockListItem,
		models.BlockBlank,
		models.BlockCodeFence,
		models.BlockBlank,
		models.BlockParagraph,
	}, kinds(doc))

	code := doc.Blocks[2]
	assert.Equal(t, "yaml", code.Language)
	assert.Equal(t, 3, code.Line)
	assert.Equal(t, 7, code.EndLine)
	assert.Equal(t, "Apply the policy:\n\nVerify it.", doc.ProseText)
	assert.Empty(t, doc.Warnings)
}

func TestParse_InlineMarkupStripped(t *testing.T) {
	content := "Read the **[install guide](https://example.com/install)** and run `make build`. " +
		"![diagram](img.png) See <https://example.com>.\n"
	doc := parse(t, content)
	assert.Equal(t, "Read the install guide and run make build. See .", doc.ProseText)
}

func TestParse_BlockQuote(t *testing.T) {
	doc := parse(t, "> Quoted *text* here.\n")
	assert.Equal(t, "Quoted text here.", doc.ProseText)
}

func TestParse_FrontMatter(t *testing.T) {
	content := "---\ntitle: Getting Started\ntags: [intro]\n---\n\n# Heading\n\nBody.\n"
	doc := parse(t, content)

	require.NotEmpty(t, doc.Blocks)
	fm := doc.Blocks[0]
	assert.Equal(t, models.BlockFrontMatter, fm.Kind)
	assert.Equal(t, 1, fm.Line)
	assert.Equal(t, 4, fm.EndLine)
	assert.Equal(t, "Getting Started", doc.Title)
	assert.Equal(t, "Getting Started", doc.FrontMatter["title"])

	headings := doc.Headings()
	require.Len(t, headings, 1)
	assert.Equal(t, 6, headings[0].Line)
}

func TestParse_InvalidFrontMatterWarns(t *testing.T) {
	content := "---\ntitle: [unclosed\n---\n# Heading\n"
	doc := parse(t, content)

	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0].Message, "front matter")
	assert.Equal(t, "Heading", doc.Title)
}

func TestParse_CRLF(t *testing.T) {
	doc := parse(t, "# Title\r\n\r\nText here.\r\n")
	assert.Equal(t, 3, doc.TotalLines)
	assert.Equal(t, "Title", doc.Headings()[0].Text)
	assert.Equal(t, "Text here.", doc.ProseText)
}

func TestParse_Empty(t *testing.T) {
	doc := parse(t, "")
	assert.Equal(t, 0, doc.TotalLines)
	assert.Empty(t, doc.Blocks)
	assert.Empty(t, doc.ProseText)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		reason  string
	}{
		{"invalid utf8", []byte{0xff, 0xfe, 'a'}, "UTF-8"},
		{"nul bytes", []byte("abc\x00def"), "NUL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMarkdownParser().Parse("bin.md", tt.content)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "bin.md", perr.Path)
			assert.Contains(t, perr.Error(), tt.reason)
		})
	}
}

func TestNewReadError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewReadError("x.md", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "parse x.md: cannot read document: permission denied", err.Error())
}
