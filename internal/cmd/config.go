package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/docqa/internal/config"
	"github.com/harrison/docqa/internal/filelock"
)

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate threshold configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration analyze would use: the config file merged over
the built-in defaults. Without --config, ./` + config.DefaultFileName + ` is used if present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigWithOutput(configPath, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	return cmd
}

func showConfigWithOutput(configPath string, out io.Writer) error {
	cfg, err := loadThresholds(configPath)
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Parse and validate a configuration file, checking for unknown keys,
invalid modes, inverted ranges, bad path patterns and malformed syllable
exceptions.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfigWithOutput(args[0], cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
}

func validateConfigWithOutput(path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is valid (mode %s, %d path rules)\n", path, cfg.Mode, len(cfg.Rules))
	return nil
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a file",
		Long:  `Write the built-in defaults to ./` + config.DefaultFileName + ` (or path) as a starting point.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) == 1 {
				path = args[0]
			}
			return initConfigWithOutput(path, force, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func initConfigWithOutput(path string, force bool, out io.Writer) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to access %s: %w", path, err)
		}
	}
	data, err := config.DefaultThresholds().Marshal()
	if err != nil {
		return err
	}
	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Wrote default configuration to %s\n", path)
	return nil
}
