// Package structure validates heading hierarchy, measures section balance
// and computes line composition for parsed documents.
package structure

import (
	"fmt"
	"sort"

	"github.com/harrison/docqa/internal/models"
)

// DefaultImbalanceFactor flags sections longer than twice the mean.
const DefaultImbalanceFactor = 2.0

// Rule identifiers attached to violations
const (
	RuleSingleH1         = "single-h1"
	RuleHeadingIncrement = "heading-increment"
	RuleSectionBalance   = "section-balance"
)

// Analyzer computes structural metrics and composition.
type Analyzer struct {
	imbalanceFactor float64
}

// NewAnalyzer creates an Analyzer. A non-positive factor selects
// DefaultImbalanceFactor.
func NewAnalyzer(imbalanceFactor float64) *Analyzer {
	if imbalanceFactor <= 0 {
		imbalanceFactor = DefaultImbalanceFactor
	}
	return &Analyzer{imbalanceFactor: imbalanceFactor}
}

// Analyze returns the structural metrics and composition of doc.
func (a *Analyzer) Analyze(doc *models.Document) (models.StructuralMetrics, models.Composition) {
	headings := doc.Headings()

	metrics := models.StructuralMetrics{
		Violations: []models.Violation{},
		Sections:   []models.Section{},
	}
	for _, h := range headings {
		metrics.Headings.Add(h.Level)
		if h.Level > metrics.MaxDepth {
			metrics.MaxDepth = h.Level
		}
	}

	metrics.Violations = append(metrics.Violations, checkSingleH1(headings)...)
	metrics.Violations = append(metrics.Violations, checkHeadingIncrement(headings)...)

	metrics.Sections = sections(headings, doc.TotalLines)
	if len(metrics.Sections) > 0 {
		total := 0
		for _, s := range metrics.Sections {
			total += s.Lines
		}
		metrics.MeanSectionLines = float64(total) / float64(len(metrics.Sections))
	}
	metrics.Violations = append(metrics.Violations, a.checkBalance(metrics.Sections)...)

	sort.SliceStable(metrics.Violations, func(i, j int) bool {
		return metrics.Violations[i].Line < metrics.Violations[j].Line
	})

	return metrics, composition(doc)
}

// checkSingleH1 expects exactly one level-1 heading.
func checkSingleH1(headings []models.Block) []models.Violation {
	var violations []models.Violation
	seen := 0
	for _, h := range headings {
		if h.Level != 1 {
			continue
		}
		seen++
		if seen > 1 {
			violations = append(violations, models.Violation{
				Line:     h.Line,
				Rule:     RuleSingleH1,
				Message:  fmt.Sprintf("multiple level-1 headings: %q is level-1 heading #%d", h.Text, seen),
				Severity: models.SeverityError,
			})
		}
	}
	if seen == 0 {
		violations = append(violations, models.Violation{
			Line:     1,
			Rule:     RuleSingleH1,
			Message:  "document has no level-1 heading",
			Severity: models.SeverityError,
		})
	}
	return violations
}

// checkHeadingIncrement flags headings that go deeper by more than one
// level relative to the heading before them.
func checkHeadingIncrement(headings []models.Block) []models.Violation {
	var violations []models.Violation
	for i := 1; i < len(headings); i++ {
		prev, cur := headings[i-1], headings[i]
		if cur.Level > prev.Level+1 {
			violations = append(violations, models.Violation{
				Line:     cur.Line,
				Rule:     RuleHeadingIncrement,
				Message:  fmt.Sprintf("heading level skips from H%d to H%d: %q", prev.Level, cur.Level, cur.Text),
				Severity: models.SeverityError,
			})
		}
	}
	return violations
}

// sections computes the line range owned by each heading: from the heading
// up to the next heading of equal or shallower level, or the end of file.
func sections(headings []models.Block, totalLines int) []models.Section {
	out := make([]models.Section, 0, len(headings))
	for i, h := range headings {
		end := totalLines
		for _, next := range headings[i+1:] {
			if next.Level <= h.Level {
				end = next.Line - 1
				break
			}
		}
		out = append(out, models.Section{
			Heading: h.Text,
			Level:   h.Level,
			Line:    h.Line,
			Lines:   end - h.Line + 1,
		})
	}
	return out
}

// checkBalance compares each section with the mean length of the sections
// at the same heading level. Levels with a single section are skipped.
func (a *Analyzer) checkBalance(secs []models.Section) []models.Violation {
	totals := map[int]int{}
	counts := map[int]int{}
	for _, s := range secs {
		totals[s.Level] += s.Lines
		counts[s.Level]++
	}

	var violations []models.Violation
	for _, s := range secs {
		if counts[s.Level] < 2 {
			continue
		}
		mean := float64(totals[s.Level]) / float64(counts[s.Level])
		if float64(s.Lines) > a.imbalanceFactor*mean {
			violations = append(violations, models.Violation{
				Line:     s.Line,
				Rule:     RuleSectionBalance,
				Message:  fmt.Sprintf("section %q spans %d lines, more than %.1fx the H%d mean of %.1f", s.Heading, s.Lines, a.imbalanceFactor, s.Level, mean),
				Severity: models.SeverityWarning,
			})
		}
	}
	return violations
}

func composition(doc *models.Document) models.Composition {
	c := models.Composition{TotalLines: doc.TotalLines}
	paragraphLines := 0

	for _, b := range doc.Blocks {
		n := b.Lines()
		switch b.Kind {
		case models.BlockHeading:
			c.HeadingLines += n
		case models.BlockParagraph:
			paragraphLines += n
		case models.BlockListItem:
			c.ListLines += n
		case models.BlockCodeFence:
			c.CodeLines += n
		case models.BlockTableRow:
			c.TableLines += n
		case models.BlockBlank:
			c.BlankLines += n
		case models.BlockFrontMatter:
			c.FrontMatterLines += n
		}
	}

	c.ProseLines = paragraphLines + c.ListLines
	c.CodeRatio = ratio(c.CodeLines, c.TotalLines)
	c.ListRatio = ratio(c.ListLines, c.TotalLines)
	c.TableRatio = ratio(c.TableLines, c.TotalLines)
	c.BlankRatio = ratio(c.BlankLines, c.TotalLines)
	c.ListDensity = ratio(c.ListLines, c.ProseLines)
	return c
}

// ratio safely calculates part/total, returning 0 for an empty total.
func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
