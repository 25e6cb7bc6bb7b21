// Package report renders analysis reports for terminals, CI systems and
// documentation sites.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/harrison/docqa/internal/evaluator"
	"github.com/harrison/docqa/internal/models"
)

// Output formats
const (
	FormatTable       = "table"
	FormatJSON        = "json"
	FormatMarkdown    = "markdown"
	FormatSummary     = "summary"
	FormatAnnotations = "annotations"
)

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, r *models.Report) error
}

// Options tune the human-readable renderers.
type Options struct {
	Color   bool // ANSI colors for statuses (table only)
	Verbose bool // List every check, not just the failing ones
}

// Formats returns the supported format names in display order.
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatMarkdown, FormatSummary, FormatAnnotations}
}

// ParseFormat validates and normalizes a format name.
func ParseFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "md":
		format = FormatMarkdown
	case "github":
		format = FormatAnnotations
	}
	for _, f := range Formats() {
		if f == format {
			return format, nil
		}
	}
	return "", fmt.Errorf("invalid format '%s': must be one of: %s", format, strings.Join(Formats(), ", "))
}

// New returns the renderer for format.
func New(format string, opts Options) (Renderer, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatMarkdown:
		return &MarkdownRenderer{Verbose: opts.Verbose}, nil
	case FormatSummary:
		return &SummaryRenderer{}, nil
	case FormatAnnotations:
		return &AnnotationRenderer{}, nil
	default:
		return &TableRenderer{Color: opts.Color, Verbose: opts.Verbose}, nil
	}
}

// RenderString renders r into a string.
func RenderString(renderer Renderer, r *models.Report) (string, error) {
	var sb strings.Builder
	if err := renderer.Render(&sb, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ColorEnabled reports whether w is a terminal that should get colors.
// NO_COLOR disables colors everywhere.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Flesch reading ease bands, easiest first.
var fleschBands = []struct {
	name string
	min  float64
}{
	{"Very Easy", 90},
	{"Easy", 80},
	{"Fairly Easy", 70},
	{"Standard", 60},
	{"Fairly Difficult", 50},
	{"Difficult", 30},
	{"Very Difficult", -1e9},
}

// FleschBand names the difficulty band of a reading ease score.
func FleschBand(ease float64) string {
	for _, b := range fleschBands {
		if ease >= b.min {
			return b.name
		}
	}
	return fleschBands[len(fleschBands)-1].name
}

// BandCount is the number of documents in one difficulty band.
type BandCount struct {
	Band      string
	Documents int
}

// Stats are the corpus-level figures shared by the summary renderers.
type Stats struct {
	Scored       int         // Documents with defined readability scores
	MeanGrade    float64     // Mean Flesch-Kincaid grade of scored documents
	MeanEase     float64     // Mean Flesch reading ease of scored documents
	ReadingTime  int         // Estimated minutes for all prose
	Distribution []BandCount // Every band in order, zero counts included
}

// ComputeStats derives corpus statistics from a report.
func ComputeStats(r *models.Report, readingTime func(words int) int) Stats {
	counts := map[string]int{}
	var s Stats
	for _, res := range r.Results {
		m := res.Readability
		if !m.Defined() {
			continue
		}
		s.Scored++
		s.MeanGrade += m.FleschKincaidGrade.Value
		s.MeanEase += m.FleschReadingEase.Value
		counts[FleschBand(m.FleschReadingEase.Value)]++
	}
	if s.Scored > 0 {
		s.MeanGrade /= float64(s.Scored)
		s.MeanEase /= float64(s.Scored)
	}
	if readingTime != nil {
		s.ReadingTime = readingTime(r.Summary.Words)
	}
	for _, b := range fleschBands {
		s.Distribution = append(s.Distribution, BandCount{Band: b.name, Documents: counts[b.name]})
	}
	return s
}

// issue is one located problem of a result, shared by the table, markdown
// and annotation renderers.
type issue struct {
	Line    int // 0 when the problem applies to the whole document
	Level   string
	Title   string
	Message string
}

// issues collects the located problems of a result: the analysis error,
// failing checks, structural violations and parse warnings, ordered by line.
// The aggregate structure checks are represented by their violations. With
// all set, passing checks are included too.
func issues(res models.Result, all bool) []issue {
	var out []issue
	if res.Error != "" {
		out = append(out, issue{Level: models.StatusError, Title: "error", Message: res.Error})
	}

	structureLevel := models.StatusFail
	for _, c := range res.Checks {
		if c.Metric == evaluator.MetricHeadings || c.Metric == evaluator.MetricSectionBalance {
			if c.Metric == evaluator.MetricHeadings && c.Outcome != models.StatusPass {
				structureLevel = c.Outcome
			}
			continue
		}
		switch c.Outcome {
		case models.StatusFail, models.StatusWarn:
			out = append(out, issue{Level: c.Outcome, Title: c.Metric, Message: c.Message})
		default:
			if all {
				out = append(out, issue{Level: c.Outcome, Title: c.Metric, Message: checkSummary(c)})
			}
		}
	}
	for _, v := range res.Violations {
		level := models.StatusWarn
		if v.Severity == models.SeverityError {
			level = structureLevel
		}
		out = append(out, issue{Line: v.Line, Level: level, Title: v.Rule, Message: v.Message})
	}
	for _, w := range res.Warnings {
		out = append(out, issue{Line: w.Line, Level: models.StatusWarn, Title: "parse", Message: w.Message})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Line < out[j].Line
	})
	return out
}

// checkSummary describes a check that has no message of its own.
func checkSummary(c models.MetricCheck) string {
	if c.Message != "" {
		return c.Message
	}
	value := "n/a"
	if c.Value != nil {
		value = formatNumber(*c.Value)
	}
	switch {
	case c.Min != nil && c.Max != nil:
		return fmt.Sprintf("%s %s within [%s, %s]", c.Metric, value, formatNumber(*c.Min), formatNumber(*c.Max))
	case c.Max != nil:
		return fmt.Sprintf("%s %s <= %s", c.Metric, value, formatNumber(*c.Max))
	case c.Min != nil:
		return fmt.Sprintf("%s %s >= %s", c.Metric, value, formatNumber(*c.Min))
	}
	return fmt.Sprintf("%s %s", c.Metric, value)
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
