package evaluator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docqa/internal/config"
	"github.com/harrison/docqa/internal/models"
)

func readable() models.ReadabilityMetrics {
	return models.ReadabilityMetrics{
		Words:              150,
		Sentences:          10,
		FleschKincaidGrade: models.DefinedScore(8),
		FleschReadingEase:  models.DefinedScore(65),
		ARI:                models.DefinedScore(9),
		ColemanLiau:        models.DefinedScore(10),
		GunningFog:         models.DefinedScore(11),
		SMOG:               models.DefinedScore(10),
	}
}

func baseInput() Input {
	return Input{
		Path:        "docs/guide.md",
		Document:    &models.Document{Path: "docs/guide.md", Title: "Guide"},
		Readability: readable(),
		Structural:  models.StructuralMetrics{MaxDepth: 2, Violations: []models.Violation{}},
		Composition: models.Composition{TotalLines: 40, CodeRatio: 0.1},
		Config:      config.DefaultThresholds(),
	}
}

func checkFor(t *testing.T, r models.Result, metric string) models.MetricCheck {
	t.Helper()
	for _, c := range r.Checks {
		if c.Metric == metric {
			return c
		}
	}
	t.Fatalf("no check for %s", metric)
	return models.MetricCheck{}
}

func TestEvaluate_AllPass(t *testing.T) {
	r := Evaluate(baseInput())

	assert.Equal(t, models.StatusPass, r.Status)
	assert.Equal(t, models.SchemaVersion, r.SchemaVersion)
	assert.Equal(t, "Guide", r.Title)
	assert.Equal(t, config.DefaultPattern, r.MatchedPattern)
	assert.Len(t, r.Checks, 9)
	for _, c := range r.Checks {
		assert.Equal(t, models.StatusPass, c.Outcome, c.Metric)
	}
}

func TestEvaluate_Mode(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{config.ModeStrict, models.StatusFail},
		{config.ModeLenient, models.StatusWarn},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			in := baseInput()
			in.Config.Mode = tt.mode
			in.Readability.FleschKincaidGrade = models.DefinedScore(15.2)

			r := Evaluate(in)
			assert.Equal(t, tt.want, r.Status)

			c := checkFor(t, r, MetricGrade)
			assert.Equal(t, tt.want, c.Outcome)
			require.NotNil(t, c.Value)
			assert.Equal(t, 15.2, *c.Value)
			assert.Equal(t, "fk_grade 15.2 exceeds the maximum of 14", c.Message)
		})
	}
}

func TestEvaluate_BelowMinimum(t *testing.T) {
	in := baseInput()
	in.Readability.FleschReadingEase = models.DefinedScore(12.5)

	c := checkFor(t, Evaluate(in), MetricFleschEase)
	assert.Equal(t, models.StatusFail, c.Outcome)
	assert.Equal(t, "flesch_ease 12.5 is below the minimum of 30", c.Message)
}

func TestEvaluate_BoundsAreInclusive(t *testing.T) {
	in := baseInput()
	in.Readability.FleschReadingEase = models.DefinedScore(30)
	in.Readability.FleschKincaidGrade = models.DefinedScore(14)

	r := Evaluate(in)
	assert.Equal(t, models.StatusPass, checkFor(t, r, MetricFleschEase).Outcome)
	assert.Equal(t, models.StatusPass, checkFor(t, r, MetricGrade).Outcome)

	in.Readability.FleschKincaidGrade = models.DefinedScore(14.1)
	c := checkFor(t, Evaluate(in), MetricGrade)
	assert.Equal(t, models.StatusFail, c.Outcome)
	assert.Equal(t, "fk_grade 14.1 exceeds the maximum of 14", c.Message)
}

func TestEvaluate_UndefinedIsInsufficientData(t *testing.T) {
	in := baseInput()
	in.Readability = models.ReadabilityMetrics{
		FleschKincaidGrade: models.UndefinedScore(),
		FleschReadingEase:  models.UndefinedScore(),
		ARI:                models.UndefinedScore(),
		ColemanLiau:        models.UndefinedScore(),
		GunningFog:         models.UndefinedScore(),
		SMOG:               models.UndefinedScore(),
		LowConfidence:      true,
	}

	r := Evaluate(in)
	assert.Equal(t, models.StatusPass, r.Status, "undefined scores never fail")
	assert.True(t, r.LowConfidence)
	for _, metric := range []string{MetricGrade, MetricARI, MetricFleschEase, MetricGunningFog} {
		c := checkFor(t, r, metric)
		assert.Equal(t, models.StatusInsufficientData, c.Outcome, metric)
		assert.Nil(t, c.Value, metric)
	}
}

func TestEvaluate_Structure(t *testing.T) {
	in := baseInput()
	in.Structural.Violations = []models.Violation{
		{Line: 9, Rule: "heading-increment", Message: "skip", Severity: models.SeverityError},
	}

	r := Evaluate(in)
	assert.Equal(t, models.StatusFail, r.Status)
	assert.Equal(t, models.StatusFail, checkFor(t, r, MetricHeadings).Outcome)
	assert.Equal(t, in.Structural.Violations, r.Violations)

	in.Config.Mode = config.ModeLenient
	assert.Equal(t, models.StatusWarn, Evaluate(in).Status)
}

func TestEvaluate_ImbalanceOnlyWarns(t *testing.T) {
	in := baseInput()
	in.Structural.Violations = []models.Violation{
		{Line: 4, Rule: "section-balance", Message: "long", Severity: models.SeverityWarning},
	}

	r := Evaluate(in)
	assert.Equal(t, models.StatusWarn, r.Status)
	assert.Equal(t, models.StatusWarn, checkFor(t, r, MetricSectionBalance).Outcome)
}

func TestEvaluate_ParseWarningCapsAtWarn(t *testing.T) {
	in := baseInput()
	in.Document.Warnings = []models.ParseWarning{{Line: 3, Message: "unterminated fence"}}

	r := Evaluate(in)
	assert.Equal(t, models.StatusWarn, r.Status)
	assert.Len(t, r.Warnings, 1)

	in.Composition.TotalLines = 1000
	assert.Equal(t, models.StatusFail, Evaluate(in).Status, "a failing metric still fails")
}

func TestEvaluate_ParseError(t *testing.T) {
	in := baseInput()
	in.Err = errors.New("parse docs/guide.md: not valid UTF-8")

	r := Evaluate(in)
	assert.Equal(t, models.StatusError, r.Status)
	assert.Equal(t, "parse docs/guide.md: not valid UTF-8", r.Error)
	assert.Empty(t, r.Checks)
}

func TestEvaluate_RuleLookup(t *testing.T) {
	cfg, err := config.Parse([]byte(`perTypeThresholds:
  - pathPattern: "blog/**"
    grade: {max: 20}
    maxLines: 50
`))
	require.NoError(t, err)

	in := baseInput()
	in.Config = cfg
	in.Readability.FleschKincaidGrade = models.DefinedScore(16)
	in.Composition.TotalLines = 60

	in.Path = "blog/post.md"
	blog := Evaluate(in)
	assert.Equal(t, "blog/**", blog.MatchedPattern)
	assert.Equal(t, models.StatusPass, checkFor(t, blog, MetricGrade).Outcome)
	assert.Equal(t, models.StatusFail, checkFor(t, blog, MetricLines).Outcome)

	in.Path = "docs/guide.md"
	docs := Evaluate(in)
	assert.Equal(t, config.DefaultPattern, docs.MatchedPattern)
	assert.Equal(t, models.StatusFail, checkFor(t, docs, MetricGrade).Outcome)
	assert.Equal(t, models.StatusPass, checkFor(t, docs, MetricLines).Outcome)
}

func TestEvaluate_UnboundedChecksOmitted(t *testing.T) {
	in := baseInput()
	in.Config = config.DefaultThresholds()
	in.Config.Default.MaxLines = nil
	in.Config.Default.GunningFog = config.Range{}

	r := Evaluate(in)
	for _, c := range r.Checks {
		assert.NotEqual(t, MetricLines, c.Metric)
		assert.NotEqual(t, MetricGunningFog, c.Metric)
	}
	assert.Len(t, r.Checks, 7)
}

func TestEvaluate_NilConfigUsesDefaults(t *testing.T) {
	in := baseInput()
	in.Config = nil
	in.Readability.ARI = models.DefinedScore(14.1)

	r := Evaluate(in)
	assert.Equal(t, models.StatusFail, r.Status)
	assert.Equal(t, models.StatusFail, checkFor(t, r, MetricARI).Outcome)
}
