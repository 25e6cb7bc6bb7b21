package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/docqa/internal/history"
)

type historyOptions struct {
	dbPath string
	limit  int
	prune  int
}

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history [document]",
		Short: "Show recorded runs or the readability trend of a document",
		Long: `Show runs recorded with analyze --history.

Without arguments, lists the most recent runs. With a document path, shows
that document's scores across runs, newest first.

Examples:
  docqa history
  docqa history docs/guide.md --limit 20
  docqa history --prune 50   # keep the newest 50 runs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryWithOutput(cmd.Context(), opts, args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", history.DefaultDBPath, "Path to the history database")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of entries to show (0 = all)")
	cmd.Flags().IntVar(&opts.prune, "prune", -1, "Delete all but the newest N runs")

	return cmd
}

func showHistoryWithOutput(ctx context.Context, opts *historyOptions, args []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := history.NewStore(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	if opts.prune >= 0 {
		removed, err := store.Prune(ctx, opts.prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d runs\n", removed)
		return nil
	}

	if len(args) == 1 {
		return showTrend(ctx, store, filepath.Clean(args[0]), opts.limit, out)
	}
	return showRuns(ctx, store, opts.limit, out)
}

func showRuns(ctx context.Context, store *history.Store, limit int, out io.Writer) error {
	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s  %-6s  %5s  %5s  %5s  %5s  %5s  %8s  %s\n",
		"RECORDED", "STATUS", "DOCS", "PASS", "WARN", "FAIL", "ERR", "WORDS", "RUN"))
	for _, r := range runs {
		status := r.Status
		if r.Incomplete {
			status += "*"
		}
		s := r.Summary
		sb.WriteString(fmt.Sprintf("%-20s  %-6s  %5d  %5d  %5d  %5d  %5d  %8d  %s\n",
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"), status,
			s.Total, s.Passed, s.Warned, s.Failed, s.Errored, s.Words, r.ID))
	}
	_, err = io.WriteString(out, sb.String())
	return err
}

func showTrend(ctx context.Context, store *history.Store, path string, limit int, out io.Writer) error {
	records, err := store.Trend(ctx, path, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "No history for %s.\n", path)
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("History for %s\n\n", path))
	sb.WriteString(fmt.Sprintf("%-20s  %-6s  %6s  %6s  %6s  %6s  %6s  %6s\n",
		"RECORDED", "STATUS", "GRADE", "ARI", "EASE", "FOG", "WORDS", "LINES"))
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%-20s  %-6s  %6s  %6s  %6s  %6s  %6d  %6d\n",
			rec.RecordedAt.Local().Format("2006-01-02 15:04:05"), rec.Status,
			rec.Grade, rec.ARI, rec.FleschEase, rec.GunningFog, rec.Words, rec.Lines))
	}
	_, err = io.WriteString(out, sb.String())
	return err
}
