package models

import (
	"encoding/json"
	"strconv"
)

// Score is a readability score that may be undefined.
// Undefined scores marshal to JSON null and render as "n/a".
type Score struct {
	Value   float64
	Defined bool
}

// DefinedScore returns a defined score.
func DefinedScore(v float64) Score {
	return Score{Value: v, Defined: true}
}

// UndefinedScore returns the insufficient-data marker.
func UndefinedScore() Score {
	return Score{}
}

// String formats the score with one decimal place.
func (s Score) String() string {
	if !s.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(s.Value, 'f', 1, 64)
}

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Defined {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(s.Value, 'f', 1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = DefinedScore(v)
	return nil
}

// ReadabilityMetrics holds prose counts and readability scores.
type ReadabilityMetrics struct {
	Words              int   `json:"words"`
	Sentences          int   `json:"sentences"`
	Syllables          int   `json:"syllables"`
	Characters         int   `json:"characters"`
	ComplexWords       int   `json:"complex_words"`
	Polysyllables      int   `json:"polysyllables"`
	FleschKincaidGrade Score `json:"flesch_kincaid_grade"`
	FleschReadingEase  Score `json:"flesch_reading_ease"`
	ARI                Score `json:"ari"`
	ColemanLiau        Score `json:"coleman_liau"`
	GunningFog         Score `json:"gunning_fog"`
	SMOG               Score `json:"smog"`
	LowConfidence      bool  `json:"low_confidence"`
	ReadingTimeMinutes int   `json:"reading_time_minutes"`
	HeuristicVersion   int   `json:"heuristic_version"`
}

// Defined reports whether the scores could be computed.
func (m ReadabilityMetrics) Defined() bool {
	return m.FleschKincaidGrade.Defined
}

// HeadingCounts counts headings per level.
type HeadingCounts struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
	H4 int `json:"h4"`
	H5 int `json:"h5"`
	H6 int `json:"h6"`
}

// Add increments the counter for level. Levels outside [1,6] are ignored.
func (h *HeadingCounts) Add(level int) {
	switch level {
	case 1:
		h.H1++
	case 2:
		h.H2++
	case 3:
		h.H3++
	case 4:
		h.H4++
	case 5:
		h.H5++
	case 6:
		h.H6++
	}
}

// Total returns the number of headings across all levels.
func (h HeadingCounts) Total() int {
	return h.H1 + h.H2 + h.H3 + h.H4 + h.H5 + h.H6
}

// Severity of a violation
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Violation is a located finding attached to a result.
type Violation struct {
	Line     int    `json:"line"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Section is the line range owned by one heading.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Line    int    `json:"line"`
	Lines   int    `json:"lines"`
}

// StructuralMetrics describes heading structure and section balance.
type StructuralMetrics struct {
	Headings         HeadingCounts `json:"headings"`
	MaxDepth         int           `json:"max_depth"`
	Violations       []Violation   `json:"violations"`
	Sections         []Section     `json:"sections"`
	MeanSectionLines float64       `json:"mean_section_lines"`
}

// Composition breaks a document's lines down by block kind.
type Composition struct {
	TotalLines       int     `json:"total_lines"`
	HeadingLines     int     `json:"heading_lines"`
	ProseLines       int     `json:"prose_lines"`
	CodeLines        int     `json:"code_lines"`
	ListLines        int     `json:"list_lines"`
	TableLines       int     `json:"table_lines"`
	BlankLines       int     `json:"blank_lines"`
	FrontMatterLines int     `json:"front_matter_lines"`
	CodeRatio        float64 `json:"code_ratio"`
	ListRatio        float64 `json:"list_ratio"`
	TableRatio       float64 `json:"table_ratio"`
	BlankRatio       float64 `json:"blank_ratio"`
	ListDensity      float64 `json:"list_density"`
}
