package models

import (
	"fmt"
	"sort"
)

// SchemaVersion is the version of the Result JSON contract.
const SchemaVersion = "1"

// Document and check statuses
const (
	StatusPass  = "PASS"
	StatusWarn  = "WARN"
	StatusFail  = "FAIL"
	StatusError = "ERROR"

	// StatusInsufficientData marks a check whose metric is undefined.
	// It never takes part in status aggregation.
	StatusInsufficientData = "INSUFFICIENT_DATA"
)

// statusRank orders statuses from best to worst.
var statusRank = map[string]int{
	StatusPass:  0,
	StatusWarn:  1,
	StatusFail:  2,
	StatusError: 3,
}

// WorseStatus returns the more severe of two statuses.
func WorseStatus(a, b string) string {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// MetricCheck is one evaluated threshold.
// Min and Max are nil when that side of the range is unbounded.
type MetricCheck struct {
	Metric  string   `json:"metric"`
	Value   *float64 `json:"value"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Outcome string   `json:"outcome"`
	Message string   `json:"message,omitempty"`
}

// Result is the per-document analysis outcome handed to renderers.
// It is never mutated after the evaluator creates it.
type Result struct {
	SchemaVersion  string             `json:"schema_version"`
	Path           string             `json:"path"`
	Title          string             `json:"title,omitempty"`
	Status         string             `json:"status"`
	MatchedPattern string             `json:"matched_pattern,omitempty"`
	Readability    ReadabilityMetrics `json:"readability"`
	Structural     StructuralMetrics  `json:"structural"`
	Composition    Composition        `json:"composition"`
	Checks         []MetricCheck      `json:"checks"`
	Violations     []Violation        `json:"violations"`
	Warnings       []ParseWarning     `json:"warnings"`
	LowConfidence  bool               `json:"low_confidence"`
	Error          string             `json:"error,omitempty"`
}

// ErrorResult builds the result for a document that could not be analyzed.
func ErrorResult(path string, err error) Result {
	return Result{
		SchemaVersion: SchemaVersion,
		Path:          path,
		Status:        StatusError,
		Checks:        []MetricCheck{},
		Violations:    []Violation{},
		Warnings:      []ParseWarning{},
		Error:         err.Error(),
	}
}

// Problems lists the human-readable reasons a result is not PASS: the
// analysis error, every failing or warning check, then parse warnings.
func (r Result) Problems() []string {
	var reasons []string
	if r.Error != "" {
		reasons = append(reasons, r.Error)
	}
	for _, c := range r.Checks {
		if (c.Outcome == StatusFail || c.Outcome == StatusWarn) && c.Message != "" {
			reasons = append(reasons, c.Message)
		}
	}
	for _, w := range r.Warnings {
		reasons = append(reasons, fmt.Sprintf("line %d: %s", w.Line, w.Message))
	}
	return reasons
}

// Summary aggregates counts across a report.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Words   int `json:"words"`
	Lines   int `json:"lines"`
}

// Report is the ordered outcome of one run.
type Report struct {
	SchemaVersion string   `json:"schema_version"`
	Status        string   `json:"status"`
	Incomplete    bool     `json:"incomplete"`
	Summary       Summary  `json:"summary"`
	Results       []Result `json:"results"`
}

// NewReport sorts results by path and computes the aggregate status.
func NewReport(results []Result, incomplete bool) *Report {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	report := &Report{
		SchemaVersion: SchemaVersion,
		Status:        StatusPass,
		Incomplete:    incomplete,
		Results:       sorted,
	}
	for _, r := range sorted {
		report.Status = WorseStatus(report.Status, r.Status)
		report.Summary.Total++
		switch r.Status {
		case StatusPass:
			report.Summary.Passed++
		case StatusWarn:
			report.Summary.Warned++
		case StatusFail:
			report.Summary.Failed++
		case StatusError:
			report.Summary.Errored++
		}
		report.Summary.Words += r.Readability.Words
		report.Summary.Lines += r.Composition.TotalLines
	}
	return report
}

// Failed reports whether any result failed or errored.
func (r *Report) Failed() bool {
	return r.Status == StatusFail || r.Status == StatusError
}
