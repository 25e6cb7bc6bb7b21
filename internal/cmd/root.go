package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for docqa
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docqa",
		Short: "Documentation quality analyzer for Markdown",
		Long: `docqa measures the readability, heading structure and composition of
Markdown documentation and checks it against configurable thresholds.

It computes Flesch-Kincaid, Flesch reading ease, ARI, Coleman-Liau, Gunning
fog and SMOG scores over prose only, validates heading hierarchy, and
reports results as tables, JSON, Markdown or CI annotations.`,
		Version: Version,
		// main prints the returned error once; cobra stays silent
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
