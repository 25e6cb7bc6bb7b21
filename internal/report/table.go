package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/docqa/internal/models"
)

// TableRenderer prints one aligned row per document, followed by the
// problems of every document that did not pass.
type TableRenderer struct {
	Color   bool
	Verbose bool
}

var tableColumns = []string{"GRADE", "ARI", "EASE", "FOG", "WORDS", "LINES"}

// Render implements Renderer.
func (t *TableRenderer) Render(w io.Writer, r *models.Report) error {
	if len(r.Results) == 0 {
		_, err := fmt.Fprintln(w, "No documents analyzed.")
		return err
	}

	pathWidth := len("DOCUMENT")
	for _, res := range r.Results {
		if len(res.Path) > pathWidth {
			pathWidth = len(res.Path)
		}
	}

	var sb strings.Builder
	header := fmt.Sprintf("%-6s  %-*s", "STATUS", pathWidth, "DOCUMENT")
	for _, col := range tableColumns {
		header += fmt.Sprintf("  %6s", col)
	}
	sb.WriteString(t.paint(color.New(color.Bold), header))
	sb.WriteString("\n")

	for _, res := range r.Results {
		m := res.Readability
		status := t.paint(statusStyle(res.Status), fmt.Sprintf("%-6s", res.Status))
		sb.WriteString(fmt.Sprintf("%s  %-*s  %6s  %6s  %6s  %6s  %6d  %6d\n",
			status, pathWidth, res.Path,
			m.FleschKincaidGrade, m.ARI, m.FleschReadingEase, m.GunningFog,
			m.Words, res.Composition.TotalLines))

		if res.Status == models.StatusPass && !t.Verbose {
			continue
		}
		for _, is := range issues(res, t.Verbose) {
			loc := ""
			if is.Line > 0 {
				loc = fmt.Sprintf("line %d: ", is.Line)
			}
			marker := t.paint(statusStyle(is.Level), fmt.Sprintf("%-4s", abbreviate(is.Level)))
			sb.WriteString(fmt.Sprintf("        %s %s%s\n", marker, loc, is.Message))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(summaryLine(r))
	sb.WriteString(" Status: ")
	sb.WriteString(t.paint(statusStyle(r.Status), r.Status))
	sb.WriteString("\n")
	if r.Incomplete {
		sb.WriteString("Run stopped early; remaining documents were not analyzed.\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *TableRenderer) paint(c *color.Color, s string) string {
	if t.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func statusStyle(status string) *color.Color {
	switch status {
	case models.StatusPass:
		return color.New(color.FgGreen)
	case models.StatusWarn:
		return color.New(color.FgYellow)
	case models.StatusFail:
		return color.New(color.FgRed)
	case models.StatusError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgHiBlack)
	}
}

// abbreviate shortens the check outcomes listed under a table row.
func abbreviate(status string) string {
	if status == models.StatusInsufficientData {
		return "N/A"
	}
	return status
}

// summaryLine renders the document counts of a report.
func summaryLine(r *models.Report) string {
	s := r.Summary
	return fmt.Sprintf("%s: %d passed, %d warned, %d failed, %d errored.",
		plural(s.Total, "document"), s.Passed, s.Warned, s.Failed, s.Errored)
}
