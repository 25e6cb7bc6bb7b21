package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/docqa/internal/analyzer"
	"github.com/harrison/docqa/internal/config"
	"github.com/harrison/docqa/internal/executor"
	"github.com/harrison/docqa/internal/filelock"
	"github.com/harrison/docqa/internal/fileutil"
	"github.com/harrison/docqa/internal/history"
	"github.com/harrison/docqa/internal/logger"
	"github.com/harrison/docqa/internal/models"
	"github.com/harrison/docqa/internal/report"
)

// CheckFailedError is returned by analyze --check when the report status is
// FAIL or ERROR.
type CheckFailedError struct {
	Status  string
	Failed  int
	Errored int
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("documentation quality check failed: status %s (%d failed, %d errored)", e.Status, e.Failed, e.Errored)
}

// analyzeOptions holds the analyze flags.
type analyzeOptions struct {
	format     string
	configPath string
	mode       string
	workers    int
	failFast   bool
	check      bool
	verbose    bool
	quiet      bool
	logLevel   string
	output     string
	historyDB  string
	overrides  config.Overrides
}

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file-or-directory>...",
		Short: "Analyze Markdown documents for readability and structure",
		Long: `Analyze Markdown documents and report readability scores, heading
structure and content composition against configurable thresholds.

Directories are scanned recursively for .md and .markdown files. Hidden
directories, node_modules and vendor are skipped, as are CHANGELOG.md and
CONTRIBUTING.md. Files named explicitly are always analyzed.

Thresholds are read from .docqa.yaml in the current directory if present.
CLI flags override configuration file settings.

Examples:
  docqa analyze docs/
  docqa analyze README.md docs/ --format markdown --output quality.md
  docqa analyze docs/ --check --fail-fast       # CI gate
  docqa analyze docs/ --format annotations      # GitHub Actions
  docqa analyze docs/ --max-grade 12 --mode lenient
  docqa analyze docs/ --history                 # record the run for trends`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.readOverrides(cmd); err != nil {
				return err
			}
			return runAnalyzeWithOutput(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", report.FormatTable, "Output format: table, json, markdown (or md), summary, annotations")
	f.StringVar(&opts.configPath, "config", "", "Path to config file (default: ./"+config.DefaultFileName+")")
	f.StringVar(&opts.mode, "mode", "", "Evaluation mode: strict or lenient (overrides config)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "Number of concurrent workers (0 = number of CPUs)")
	f.BoolVar(&opts.failFast, "fail-fast", false, "Stop at the first failing document")
	f.BoolVar(&opts.check, "check", false, "Exit with status 1 if any document fails or errors")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Show every check and debug logging")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress run progress logging (warnings are still shown)")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	f.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.StringVar(&opts.historyDB, "history", "", "Record the run in a history database (default path: "+history.DefaultDBPath+")")
	f.Lookup("history").NoOptDefVal = history.DefaultDBPath
	f.Float64("max-grade", 0, "Maximum Flesch-Kincaid grade (overrides config)")
	f.Float64("max-ari", 0, "Maximum Automated Readability Index (overrides config)")
	f.Int("max-lines", 0, "Maximum document length in lines (overrides config)")

	return cmd
}

// readOverrides collects the threshold flags that were set explicitly.
func (o *analyzeOptions) readOverrides(cmd *cobra.Command) error {
	o.overrides = config.Overrides{Mode: o.mode}
	if cmd.Flags().Changed("max-grade") {
		v, err := cmd.Flags().GetFloat64("max-grade")
		if err != nil {
			return err
		}
		o.overrides.MaxGrade = &v
	}
	if cmd.Flags().Changed("max-ari") {
		v, err := cmd.Flags().GetFloat64("max-ari")
		if err != nil {
			return err
		}
		o.overrides.MaxARI = &v
	}
	if cmd.Flags().Changed("max-lines") {
		v, err := cmd.Flags().GetInt("max-lines")
		if err != nil {
			return err
		}
		o.overrides.MaxLines = &v
	}
	return nil
}

// runAnalyzeWithOutput runs the analyze command with custom writers (for testing)
func runAnalyzeWithOutput(ctx context.Context, opts *analyzeOptions, paths []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.workers < 0 {
		return fmt.Errorf("invalid --workers %d: must be >= 0", opts.workers)
	}
	level := opts.logLevel
	if opts.verbose {
		level = "debug"
	}
	if !logger.ValidLevel(level) {
		return fmt.Errorf("invalid --log-level %q: must be one of: trace, debug, info, warn, error", level)
	}
	log := logger.NewConsoleLogger(stderr, level)

	cfg, err := loadThresholds(opts.configPath)
	if err != nil {
		return err
	}
	cfg = cfg.WithOverrides(opts.overrides)
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := analyzer.New(cfg)
	if err != nil {
		return err
	}

	scan, err := fileutil.CollectMarkdown(paths, fileutil.DefaultMarkdownOptions())
	if err != nil {
		return fmt.Errorf("failed to collect documents: %w", err)
	}
	for _, scanErr := range scan.Errors {
		log.LogWarn(scanErr.Error())
	}
	if len(scan.Files) == 0 {
		log.LogWarn("No Markdown documents found")
	}

	sources := make([]models.Source, 0, len(scan.Files))
	for _, path := range scan.Files {
		sources = append(sources, models.FileSource(path))
	}

	runner := executor.NewRunner(a, opts.workers)
	runner.Logger = log
	if opts.quiet {
		runner.Logger = logger.NewNoOpLogger()
	}
	if opts.failFast {
		runner.Mode = executor.ModeFailFast
	}
	rep, err := runner.Run(ctx, sources)
	if err != nil {
		return err
	}

	renderOpts := report.Options{Verbose: opts.verbose}
	if opts.output == "" {
		renderOpts.Color = report.ColorEnabled(stdout)
	}
	renderer, err := report.New(format, renderOpts)
	if err != nil {
		return err
	}
	rendered, err := report.RenderString(renderer, rep)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if opts.output != "" {
		if err := filelock.WriteReport(ctx, opts.output, []byte(rendered)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.LogInfo(fmt.Sprintf("Wrote %s report to %s", format, opts.output))
	} else if _, err := io.WriteString(stdout, rendered); err != nil {
		return err
	}

	if opts.historyDB != "" {
		runID, err := recordHistory(ctx, opts.historyDB, rep)
		if err != nil {
			return err
		}
		log.LogDebug(fmt.Sprintf("Recorded run %s in %s", runID, opts.historyDB))
	}

	if opts.check && rep.Failed() {
		return &CheckFailedError{Status: rep.Status, Failed: rep.Summary.Failed, Errored: rep.Summary.Errored}
	}
	return nil
}

// loadThresholds loads an explicit config file, which must exist, or the
// optional config in the working directory.
func loadThresholds(path string) (*config.ThresholdConfig, error) {
	if path == "" {
		cfg, err := config.LoadFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to access config file %s: %w", path, err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cfg, nil
}

func recordHistory(ctx context.Context, dbPath string, rep *models.Report) (string, error) {
	store, err := history.NewStore(dbPath)
	if err != nil {
		return "", fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	runID, err := store.RecordRun(ctx, rep)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return runID, nil
}
