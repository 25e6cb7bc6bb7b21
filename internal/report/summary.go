package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/docqa/internal/models"
	"github.com/harrison/docqa/internal/readability"
)

// SummaryRenderer prints corpus totals without per-document rows.
type SummaryRenderer struct{}

// Render implements Renderer.
func (s *SummaryRenderer) Render(w io.Writer, r *models.Report) error {
	stats := ComputeStats(r, readability.ReadingTime)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:         %s\n", r.Status))
	sb.WriteString(fmt.Sprintf("Documents:      %d\n", r.Summary.Total))
	sb.WriteString(fmt.Sprintf("  Passed:       %d\n", r.Summary.Passed))
	sb.WriteString(fmt.Sprintf("  Warned:       %d\n", r.Summary.Warned))
	sb.WriteString(fmt.Sprintf("  Failed:       %d\n", r.Summary.Failed))
	sb.WriteString(fmt.Sprintf("  Errored:      %d\n", r.Summary.Errored))
	sb.WriteString(fmt.Sprintf("Prose words:    %d\n", r.Summary.Words))
	sb.WriteString(fmt.Sprintf("Lines:          %d\n", r.Summary.Lines))
	sb.WriteString(fmt.Sprintf("Reading time:   %d min\n", stats.ReadingTime))
	if stats.Scored > 0 {
		sb.WriteString(fmt.Sprintf("Mean grade:     %.1f\n", stats.MeanGrade))
		sb.WriteString(fmt.Sprintf("Mean ease:      %.1f (%s)\n", stats.MeanEase, FleschBand(stats.MeanEase)))
		sb.WriteString("Distribution:\n")
		for _, b := range stats.Distribution {
			if b.Documents == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-17s %d\n", b.Band+":", b.Documents))
		}
	}
	if r.Incomplete {
		sb.WriteString("Incomplete:     stopped at the first failure\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
