package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/docqa/internal/models"
)

// AnnotationRenderer emits GitHub Actions workflow commands, one per
// problem, so findings show up inline on pull requests.
type AnnotationRenderer struct{}

// Render implements Renderer.
func (a *AnnotationRenderer) Render(w io.Writer, r *models.Report) error {
	var sb strings.Builder
	for _, res := range r.Results {
		for _, is := range issues(res, false) {
			command := "warning"
			if is.Level == models.StatusFail || is.Level == models.StatusError {
				command = "error"
			}
			props := "file=" + escapeProperty(res.Path)
			if is.Line > 0 {
				props += fmt.Sprintf(",line=%d", is.Line)
			}
			props += ",title=" + escapeProperty("docqa "+is.Title)
			sb.WriteString(fmt.Sprintf("::%s %s::%s\n", command, props, escapeData(is.Message)))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// escapeData encodes a workflow command message.
func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

// escapeProperty encodes a workflow command property value.
func escapeProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}
