package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harrison/docqa/internal/models"
)

// JSONRenderer writes the report as indented JSON. Field order follows the
// model structs, so output is stable across runs.
type JSONRenderer struct{}

// Render implements Renderer.
func (j *JSONRenderer) Render(w io.Writer, r *models.Report) error {
	if r == nil {
		return fmt.Errorf("report cannot be nil")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
