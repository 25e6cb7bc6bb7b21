// Package executor runs the per-document pipeline over a bounded pool of
// workers and assembles the ordered report.
package executor

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/harrison/docqa/internal/models"
)

// Run modes
const (
	ModeCollectAll = "collect-all"
	ModeFailFast   = "fail-fast"
)

// DocumentAnalyzer analyzes one source. Implementations must be safe for
// concurrent use.
type DocumentAnalyzer interface {
	AnalyzeSource(src models.Source) models.Result
}

// Logger receives run progress. All methods are called from the goroutine
// that called Run.
type Logger interface {
	LogRunStart(total, workers int, mode string)
	LogDocumentResult(result models.Result)
	LogRunSummary(report *models.Report)
}

// Runner distributes documents across a fixed number of workers.
type Runner struct {
	Analyzer DocumentAnalyzer
	Workers  int    // 0 = runtime.NumCPU()
	Mode     string // collect-all (default) or fail-fast
	Logger   Logger // optional
}

// NewRunner creates a collect-all Runner with the given worker count.
func NewRunner(analyzer DocumentAnalyzer, workers int) *Runner {
	return &Runner{
		Analyzer: analyzer,
		Workers:  workers,
		Mode:     ModeCollectAll,
	}
}

type documentResult struct {
	index  int
	result models.Result
}

// Run analyzes sources and returns the report ordered by path.
//
// Sources are dispatched in path order. In fail-fast mode the first FAIL or
// ERROR result cancels the run: sources not yet started are dropped, and the
// report keeps only the documents up to and including the first failing
// one in path order, so its contents do not depend on scheduling. A
// cancelled ctx stops dispatch in either mode; both cases mark the report
// incomplete.
func (r *Runner) Run(ctx context.Context, sources []models.Source) (*models.Report, error) {
	if r == nil || r.Analyzer == nil {
		return nil, fmt.Errorf("runner requires an analyzer")
	}
	mode := r.Mode
	if mode == "" {
		mode = ModeCollectAll
	}
	if mode != ModeCollectAll && mode != ModeFailFast {
		return nil, fmt.Errorf("invalid run mode %q, must be one of: %s, %s", mode, ModeCollectAll, ModeFailFast)
	}

	ordered := make([]models.Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Path < ordered[j].Path
	})

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(ordered) {
		workers = len(ordered)
	}
	if workers == 0 {
		workers = 1
	}

	if r.Logger != nil {
		r.Logger.LogRunStart(len(ordered), workers, mode)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	semaphore := make(chan struct{}, workers)
	resultsCh := make(chan documentResult, len(ordered))
	var wg sync.WaitGroup

	go func() {
		defer func() {
			wg.Wait()
			close(resultsCh)
		}()

		for i, src := range ordered {
			if runCtx.Err() != nil {
				return
			}

			select {
			case <-runCtx.Done():
				return
			case semaphore <- struct{}{}:
			}

			// A fail-fast worker cancels before it frees its slot.
			if runCtx.Err() != nil {
				<-semaphore
				return
			}

			wg.Add(1)
			go func(i int, src models.Source) {
				defer wg.Done()
				defer func() { <-semaphore }()

				// Fail-fast cancellation must not skip documents dispatched
				// before the failing one.
				if ctx.Err() != nil {
					return
				}

				result := r.Analyzer.AnalyzeSource(src)
				resultsCh <- documentResult{index: i, result: result}

				if mode == ModeFailFast && stopsRun(result) {
					cancel()
				}
			}(i, src)
		}
	}()

	// Slot results by dispatch index so duplicate paths keep a stable order.
	slots := make([]*models.Result, len(ordered))
	firstFailure := len(ordered)
	for dr := range resultsCh {
		result := dr.result
		slots[dr.index] = &result
		if mode == ModeFailFast && stopsRun(result) && dr.index < firstFailure {
			firstFailure = dr.index
		}
		if r.Logger != nil && dr.index <= firstFailure {
			r.Logger.LogDocumentResult(dr.result)
		}
	}

	kept := slots
	if firstFailure < len(slots) {
		kept = slots[:firstFailure+1]
	}
	results := make([]models.Result, 0, len(kept))
	for _, res := range kept {
		if res != nil {
			results = append(results, *res)
		}
	}

	report := models.NewReport(results, len(results) < len(ordered))
	if r.Logger != nil {
		r.Logger.LogRunSummary(report)
	}
	return report, nil
}

func stopsRun(result models.Result) bool {
	return result.Status == models.StatusFail || result.Status == models.StatusError
}
