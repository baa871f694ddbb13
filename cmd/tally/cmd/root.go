package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/tally/internal/app"
	"github.com/spf13/cobra"
)

var (
	homeFlag    string
	colorFlag   string
	noColorFlag bool
)

// Resolved by the root PersistentPreRunE before any subcommand runs.
var (
	cfg      app.Config
	logger   *slog.Logger
	useColor bool
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "tally — pattern occurrence counter",
	Long: "Counts regular-expression matches in log files (line by line, per extracted key)\n" +
		"and in whole documents (one count per pattern).",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command. Errors are printed to stderr; the caller
// maps them to an exit status with ExitCode.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && err.Error() != "" {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&homeFlag, "home", "", "Directory holding .tally/ (default $TALLY_HOME or the working directory)")
	pf.StringVar(&colorFlag, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&noColorFlag, "no-color", false, "Suppress color output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(logscanCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := app.LoadConfig()
	if err != nil {
		return usageError(err)
	}
	if homeFlag != "" {
		c.Home = homeFlag
	}
	cfg = c
	logger = app.NewLogger(os.Stderr)
	useColor = resolveColor(colorFlag, noColorFlag)
	return nil
}

// exactArgs is cobra.ExactArgs with a usage exit status.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// maxArgs is cobra.MaximumNArgs with a usage exit status.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
