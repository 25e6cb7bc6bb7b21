package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/docqa/internal/models"
	"github.com/harrison/docqa/internal/readability"
)

// MarkdownRenderer writes a report suitable for committing next to the
// documentation or posting as a pull request comment.
type MarkdownRenderer struct {
	Verbose bool
}

// Render implements Renderer.
func (m *MarkdownRenderer) Render(w io.Writer, r *models.Report) error {
	stats := ComputeStats(r, readability.ReadingTime)
	s := r.Summary

	var sb strings.Builder
	sb.WriteString("# Documentation Quality Report\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Status**: %s\n", r.Status))
	sb.WriteString(fmt.Sprintf("- **Documents**: %d (%d passed, %d warned, %d failed, %d errored)\n",
		s.Total, s.Passed, s.Warned, s.Failed, s.Errored))
	sb.WriteString(fmt.Sprintf("- **Prose words**: %d\n", s.Words))
	sb.WriteString(fmt.Sprintf("- **Estimated reading time**: %d min\n", stats.ReadingTime))
	if stats.Scored > 0 {
		sb.WriteString(fmt.Sprintf("- **Mean Flesch-Kincaid grade**: %.1f\n", stats.MeanGrade))
		sb.WriteString(fmt.Sprintf("- **Mean reading ease**: %.1f (%s)\n", stats.MeanEase, FleschBand(stats.MeanEase)))
	}
	if r.Incomplete {
		sb.WriteString("- **Incomplete**: the run stopped at the first failure\n")
	}
	sb.WriteString("\n")

	if stats.Scored > 0 {
		sb.WriteString("## Readability Distribution\n\n")
		sb.WriteString("| Reading Ease | Documents |\n")
		sb.WriteString("|--------------|-----------|\n")
		for _, b := range stats.Distribution {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", b.Band, b.Documents))
		}
		sb.WriteString("\n")
	}

	if len(r.Results) > 0 {
		sb.WriteString("## Documents\n\n")
		sb.WriteString("| Status | Document | Grade | ARI | Ease | Fog | Words | Lines |\n")
		sb.WriteString("|--------|----------|-------|-----|------|-----|-------|-------|\n")
		for _, res := range r.Results {
			rm := res.Readability
			sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s | %s | %s | %d | %d |\n",
				res.Status, escapeCell(res.Path),
				rm.FleschKincaidGrade, rm.ARI, rm.FleschReadingEase, rm.GunningFog,
				rm.Words, res.Composition.TotalLines))
		}
		sb.WriteString("\n")
	}

	wroteHeader := false
	for _, res := range r.Results {
		if res.Status == models.StatusPass && !m.Verbose {
			continue
		}
		found := issues(res, m.Verbose)
		if len(found) == 0 {
			continue
		}
		if !wroteHeader {
			sb.WriteString("## Issues\n\n")
			wroteHeader = true
		}
		sb.WriteString(fmt.Sprintf("### `%s`\n\n", res.Path))
		for _, is := range found {
			loc := ""
			if is.Line > 0 {
				loc = fmt.Sprintf("line %d: ", is.Line)
			}
			sb.WriteString(fmt.Sprintf("- **%s** %s%s\n", is.Level, loc, is.Message))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, strings.TrimRight(sb.String(), "\n")+"\n")
	return err
}

// escapeCell keeps a value from breaking out of its table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
