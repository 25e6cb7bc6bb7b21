package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harrison/docqa/internal/models"
)

// state is the line scanner's mode.
type state int

const (
	stateNormal state = iota
	stateInFencedCode
	stateInTable
	numStates
)

// String returns the string representation of state.
func (s state) String() string {
	switch s {
	case stateNormal:
		return "NORMAL"
	case stateInFencedCode:
		return "IN_FENCED_CODE"
	case stateInTable:
		return "IN_TABLE"
	default:
		return "UNKNOWN"
	}
}

// lineKind is the classification of a single line within a state.
type lineKind int

const (
	lineBlank lineKind = iota
	lineFenceOpen
	lineFenceClose
	lineHeading
	lineUnderline // run of '=', '-', '*' or '_' (setext underline or thematic break)
	lineTableRow
	lineListItem
	lineText
	numLineKinds
)

// transition is the outcome of feeding one line kind to a state.
// When reprocess is set the same line is classified again in the next state.
type transition struct {
	next      state
	reprocess bool
}

// transitions is the scanner's transition table, indexed by [state][lineKind].
var transitions = [numStates][numLineKinds]transition{
	stateNormal: {
		lineBlank:      {next: stateNormal},
		lineFenceOpen:  {next: stateInFencedCode},
		lineFenceClose: {next: stateNormal},
		lineHeading:    {next: stateNormal},
		lineUnderline:  {next: stateNormal},
		lineTableRow:   {next: stateInTable},
		lineListItem:   {next: stateNormal},
		lineText:       {next: stateNormal},
	},
	stateInFencedCode: {
		lineBlank:      {next: stateInFencedCode},
		lineFenceOpen:  {next: stateInFencedCode},
		lineFenceClose: {next: stateNormal},
		lineHeading:    {next: stateInFencedCode},
		lineUnderline:  {next: stateInFencedCode},
		lineTableRow:   {next: stateInFencedCode},
		lineListItem:   {next: stateInFencedCode},
		lineText:       {next: stateInFencedCode},
	},
	stateInTable: {
		lineBlank:      {next: stateNormal, reprocess: true},
		lineFenceOpen:  {next: stateNormal, reprocess: true},
		lineFenceClose: {next: stateNormal, reprocess: true},
		lineHeading:    {next: stateNormal, reprocess: true},
		lineUnderline:  {next: stateNormal, reprocess: true},
		lineTableRow:   {next: stateInTable},
		lineListItem:   {next: stateNormal, reprocess: true},
		lineText:       {next: stateNormal, reprocess: true},
	},
}

// nextState looks up the transition for kind in s.
func nextState(s state, kind lineKind) transition {
	return transitions[s][kind]
}

var (
	// Fences may be indented to any depth so code nested under list items
	// is still recognized.
	fenceOpenRegex  = regexp.MustCompile("^[ \t]*(`{3,}|~{3,})[ \t]*(.*)$")
	fenceCloseRegex = regexp.MustCompile("^[ \t]*(`{3,}|~{3,})[ \t]*$")
	atxHeadingRegex = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?[ \t]*$`)
	closingHashes   = regexp.MustCompile(`(?:^|[ \t]+)#+$`)
	underlineRegex  = regexp.MustCompile(`^ {0,3}(=+|-+|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})[ \t]*$`)
	listItemRegex   = regexp.MustCompile(`^[ \t]*(?:[-*+]|\d{1,9}[.)])[ \t]+(\S.*)$`)
	quoteMarker     = regexp.MustCompile(`^[ \t]{0,3}(?:>[ \t]?)+`)
)

// fence describes the currently open code fence.
type fence struct {
	char   byte
	length int
}

// classify determines the kind of line in the given state.
// Inside a code fence only the matching closing fence is significant; inside
// a table only table rows are.
func classify(line string, s state, open fence) lineKind {
	switch s {
	case stateInFencedCode:
		if m := fenceCloseRegex.FindStringSubmatch(line); m != nil {
			if m[1][0] == open.char && len(m[1]) >= open.length {
				return lineFenceClose
			}
		}
		return lineText
	case stateInTable:
		if isBlank(line) {
			return lineBlank
		}
		if strings.Contains(line, "|") {
			return lineTableRow
		}
		return lineText
	}

	if isBlank(line) {
		return lineBlank
	}
	if m := fenceOpenRegex.FindStringSubmatch(line); m != nil {
		// Backtick fences may not carry backticks in their info string
		if !(m[1][0] == '`' && strings.Contains(m[2], "`")) {
			return lineFenceOpen
		}
	}
	if atxHeadingRegex.MatchString(line) {
		return lineHeading
	}
	if underlineRegex.MatchString(line) {
		return lineUnderline
	}
	if listItemRegex.MatchString(line) {
		return lineListItem
	}
	if strings.HasPrefix(strings.TrimSpace(line), "|") {
		return lineTableRow
	}
	return lineText
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// scanner turns lines into blocks. Open paragraph, list item and code
// fence blocks are tracked by index into blocks (-1 when none is open).
type scanner struct {
	state    state
	fence    fence
	blocks   []models.Block
	warnings []models.ParseWarning

	para int
	item int
	code int
}

func newScanner() *scanner {
	return &scanner{state: stateNormal, para: -1, item: -1, code: -1}
}

// scan feeds lines to the state machine. firstLine is the 1-based number
// of lines[0] in the source.
func (s *scanner) scan(lines []string, firstLine int) {
	for i, line := range lines {
		n := firstLine + i
		for {
			kind := classify(line, s.state, s.fence)
			t := nextState(s.state, kind)
			if t.reprocess {
				s.state = t.next
				continue
			}
			s.apply(s.state, kind, line, n)
			s.state = t.next
			break
		}
	}

	if s.state == stateInFencedCode && s.code >= 0 {
		opened := s.blocks[s.code].Line
		s.warnings = append(s.warnings, models.ParseWarning{
			Line:    opened,
			Message: fmt.Sprintf("code fence opened at line %d is never closed; treated as extending to end of file", opened),
		})
	}
}

// apply performs the block-building action for a line of kind in state from.
func (s *scanner) apply(from state, kind lineKind, line string, n int) {
	switch from {
	case stateInFencedCode:
		s.blocks[s.code].EndLine = n
		if kind == lineFenceClose {
			s.code = -1
		}
		return
	case stateInTable:
		s.push(models.Block{Kind: models.BlockTableRow, Text: strings.TrimSpace(line), Line: n, EndLine: n})
		return
	}

	switch kind {
	case lineBlank:
		s.closeOpen()
		s.push(models.Block{Kind: models.BlockBlank, Line: n, EndLine: n})

	case lineFenceOpen:
		s.closeOpen()
		m := fenceOpenRegex.FindStringSubmatch(line)
		var language string
		if fields := strings.Fields(m[2]); len(fields) > 0 {
			language = fields[0]
		}
		s.fence = fence{char: m[1][0], length: len(m[1])}
		s.code = s.push(models.Block{Kind: models.BlockCodeFence, Language: language, Line: n, EndLine: n})

	case lineHeading:
		s.closeOpen()
		m := atxHeadingRegex.FindStringSubmatch(line)
		text := strings.TrimSpace(closingHashes.ReplaceAllString(m[2], ""))
		s.push(models.Block{Kind: models.BlockHeading, Level: len(m[1]), Text: text, Line: n, EndLine: n})

	case lineUnderline:
		s.underline(line, n)

	case lineListItem:
		s.closeOpen()
		m := listItemRegex.FindStringSubmatch(line)
		s.item = s.push(models.Block{Kind: models.BlockListItem, Text: strings.TrimSpace(m[1]), Line: n, EndLine: n})

	case lineTableRow:
		s.closeOpen()
		s.push(models.Block{Kind: models.BlockTableRow, Text: strings.TrimSpace(line), Line: n, EndLine: n})

	default:
		s.text(line, n)
	}
}

// underline handles a run of '=' / '-' / '*' / '_'. Directly after a
// paragraph '=' and '-' turn the paragraph into a heading; otherwise a run
// of three or more '-', '*' or '_' is a thematic break and anything else is
// ordinary text.
func (s *scanner) underline(line string, n int) {
	trimmed := strings.TrimSpace(line)
	if s.para >= 0 && (trimmed[0] == '=' || trimmed[0] == '-') {
		b := &s.blocks[s.para]
		b.Kind = models.BlockHeading
		b.Setext = true
		b.Level = 1
		if trimmed[0] == '-' {
			b.Level = 2
		}
		b.Text = strings.ReplaceAll(b.Text, "\n", " ")
		b.EndLine = n
		s.para = -1
		return
	}

	compact := strings.Join(strings.Fields(trimmed), "")
	if trimmed[0] != '=' && len(compact) >= 3 {
		s.closeOpen()
		s.push(models.Block{Kind: models.BlockRule, Line: n, EndLine: n})
		return
	}
	s.text(line, n)
}

// text appends a prose line to the open list item, the open paragraph, or
// a new paragraph. Any text line directly after an item continues it,
// indented or not.
func (s *scanner) text(line string, n int) {
	content := strings.TrimSpace(quoteMarker.ReplaceAllString(line, ""))

	if s.item >= 0 {
		b := &s.blocks[s.item]
		b.Text += "\n" + content
		b.EndLine = n
		return
	}
	if s.para >= 0 {
		b := &s.blocks[s.para]
		b.Text += "\n" + content
		b.EndLine = n
		return
	}

	s.closeOpen()
	s.para = s.push(models.Block{Kind: models.BlockParagraph, Text: content, Line: n, EndLine: n})
}

func (s *scanner) closeOpen() {
	s.para = -1
	s.item = -1
}

func (s *scanner) push(b models.Block) int {
	s.blocks = append(s.blocks, b)
	return len(s.blocks) - 1
}
