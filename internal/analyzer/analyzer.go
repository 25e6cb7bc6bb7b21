// Package analyzer runs the per-document pipeline: parse, score, measure
// structure and evaluate thresholds.
//
// Analyze is a pure function of the content and the configuration; an
// Analyzer is safe for concurrent use once created.
package analyzer

import (
	"github.com/harrison/docqa/internal/config"
	"github.com/harrison/docqa/internal/evaluator"
	"github.com/harrison/docqa/internal/models"
	"github.com/harrison/docqa/internal/parser"
	"github.com/harrison/docqa/internal/readability"
	"github.com/harrison/docqa/internal/structure"
)

// Analyzer holds the immutable state shared by every document of a run.
type Analyzer struct {
	cfg       *config.ThresholdConfig
	engine    *readability.Engine
	structure *structure.Analyzer
}

// New validates cfg and builds an Analyzer. A nil cfg selects the default
// thresholds. An invalid configuration is returned as a
// *config.ConfigurationError before any document is read.
func New(cfg *config.ThresholdConfig) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultThresholds()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		cfg:       cfg,
		engine:    readability.NewEngine(cfg.Lexicon()),
		structure: structure.NewAnalyzer(cfg.SectionImbalanceFactor),
	}, nil
}

// Analyze produces the Result for one document. Content that cannot be
// parsed yields an ERROR result rather than an error.
func (a *Analyzer) Analyze(path string, content []byte) models.Result {
	doc, err := parser.NewMarkdownParser().Parse(path, content)
	if err != nil {
		return evaluator.Evaluate(evaluator.Input{Path: path, Err: err})
	}

	metrics, composition := a.structure.Analyze(doc)
	return evaluator.Evaluate(evaluator.Input{
		Path:        path,
		Document:    doc,
		Readability: a.engine.Analyze(doc.ProseText),
		Structural:  metrics,
		Composition: composition,
		Config:      a.cfg,
	})
}

// AnalyzeSource reads src once and analyzes it. A read failure becomes an
// ERROR result.
func (a *Analyzer) AnalyzeSource(src models.Source) models.Result {
	content, err := src.Read()
	if err != nil {
		return models.ErrorResult(src.Path, parser.NewReadError(src.Path, err))
	}
	return a.Analyze(src.Path, content)
}
