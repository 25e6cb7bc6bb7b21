// Package evaluator turns document metrics into per-metric outcomes and an
// overall status using the threshold configuration.
package evaluator

import (
	"fmt"
	"strconv"

	"github.com/harrison/docqa/internal/config"
	"github.com/harrison/docqa/internal/models"
)

// Check metric names
const (
	MetricGrade           = "fk_grade"
	MetricARI             = "ari"
	MetricFleschEase      = "flesch_ease"
	MetricGunningFog      = "gunning_fog"
	MetricMaxHeadingDepth = "max_heading_depth"
	MetricCodeRatio       = "code_ratio"
	MetricLines           = "lines"
	MetricHeadings        = "headings"
	MetricSectionBalance  = "section_balance"
)

// Input is everything the evaluator needs for one document.
type Input struct {
	Path        string
	Document    *models.Document
	Readability models.ReadabilityMetrics
	Structural  models.StructuralMetrics
	Composition models.Composition
	Config      *config.ThresholdConfig
	Err         error // set when the document could not be parsed
}

// checkDef binds a metric to its value and its target range.
// A non-empty outcome replaces the mode-dependent one.
type checkDef struct {
	metric  string
	value   func(in Input) models.Score
	target  func(r config.Rule) config.Range
	outcome string
}

var checkTable = []checkDef{
	{
		metric: MetricGrade,
		value:  func(in Input) models.Score { return in.Readability.FleschKincaidGrade },
		target: func(r config.Rule) config.Range { return r.Grade },
	},
	{
		metric: MetricARI,
		value:  func(in Input) models.Score { return in.Readability.ARI },
		target: func(r config.Rule) config.Range { return r.ARI },
	},
	{
		metric: MetricFleschEase,
		value:  func(in Input) models.Score { return in.Readability.FleschReadingEase },
		target: func(r config.Rule) config.Range { return r.FleschEase },
	},
	{
		metric: MetricGunningFog,
		value:  func(in Input) models.Score { return in.Readability.GunningFog },
		target: func(r config.Rule) config.Range { return r.GunningFog },
	},
	{
		metric: MetricMaxHeadingDepth,
		value:  func(in Input) models.Score { return models.DefinedScore(float64(in.Structural.MaxDepth)) },
		target: func(r config.Rule) config.Range { return maxInt(r.MaxHeadingDepth) },
	},
	{
		metric: MetricCodeRatio,
		value:  func(in Input) models.Score { return models.DefinedScore(in.Composition.CodeRatio) },
		target: func(r config.Rule) config.Range { return config.Range{Max: r.MaxCodeRatio} },
	},
	{
		metric: MetricLines,
		value:  func(in Input) models.Score { return models.DefinedScore(float64(in.Composition.TotalLines)) },
		target: func(r config.Rule) config.Range { return maxInt(r.MaxLines) },
	},
	{
		metric: MetricHeadings,
		value: func(in Input) models.Score {
			return models.DefinedScore(float64(countSeverity(in.Structural.Violations, models.SeverityError)))
		},
		target: func(config.Rule) config.Range { return config.Range{Max: config.Float(0)} },
	},
	{
		metric: MetricSectionBalance,
		value: func(in Input) models.Score {
			return models.DefinedScore(float64(countSeverity(in.Structural.Violations, models.SeverityWarning)))
		},
		target:  func(config.Rule) config.Range { return config.Range{Max: config.Float(0)} },
		outcome: models.StatusWarn,
	},
}

// Evaluate applies the rule matching in.Path and returns the document's
// Result. Checks with an unbounded range are omitted.
func Evaluate(in Input) models.Result {
	if in.Err != nil {
		return models.ErrorResult(in.Path, in.Err)
	}

	cfg := in.Config
	if cfg == nil {
		cfg = config.DefaultThresholds()
	}
	rule := cfg.RuleFor(in.Path)

	failOutcome := models.StatusFail
	if cfg.Mode == config.ModeLenient {
		failOutcome = models.StatusWarn
	}

	result := models.Result{
		SchemaVersion:  models.SchemaVersion,
		Path:           in.Path,
		Status:         models.StatusPass,
		MatchedPattern: rule.PathPattern,
		Readability:    in.Readability,
		Structural:     in.Structural,
		Composition:    in.Composition,
		Checks:         []models.MetricCheck{},
		Violations:     append([]models.Violation{}, in.Structural.Violations...),
		Warnings:       []models.ParseWarning{},
		LowConfidence:  in.Readability.LowConfidence,
	}
	if in.Document != nil {
		result.Title = in.Document.Title
		result.Warnings = append(result.Warnings, in.Document.Warnings...)
	}

	for _, def := range checkTable {
		target := def.target(rule)
		if target.IsZero() {
			continue
		}
		outcome := failOutcome
		if def.outcome != "" {
			outcome = def.outcome
		}
		check := evaluate(def.metric, def.value(in), target, outcome)
		result.Checks = append(result.Checks, check)
		if check.Outcome != models.StatusInsufficientData {
			result.Status = models.WorseStatus(result.Status, check.Outcome)
		}
	}

	if len(result.Warnings) > 0 {
		result.Status = models.WorseStatus(result.Status, models.StatusWarn)
	}
	return result
}

func evaluate(metric string, score models.Score, target config.Range, failOutcome string) models.MetricCheck {
	check := models.MetricCheck{
		Metric: metric,
		Min:    target.Min,
		Max:    target.Max,
	}
	if !score.Defined {
		check.Outcome = models.StatusInsufficientData
		check.Message = "not enough prose to compute"
		return check
	}

	v := score.Value
	check.Value = &v
	switch {
	case target.Contains(v):
		check.Outcome = models.StatusPass
	case target.Min != nil && v < *target.Min:
		check.Outcome = failOutcome
		check.Message = fmt.Sprintf("%s %s is below the minimum of %s", metric, format(v), format(*target.Min))
	default:
		check.Outcome = failOutcome
		check.Message = fmt.Sprintf("%s %s exceeds the maximum of %s", metric, format(v), format(*target.Max))
	}
	return check
}

func countSeverity(violations []models.Violation, severity string) int {
	n := 0
	for _, v := range violations {
		if v.Severity == severity {
			n++
		}
	}
	return n
}

func maxInt(v *int) config.Range {
	if v == nil {
		return config.Range{}
	}
	return config.Range{Max: config.Float(float64(*v))}
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
