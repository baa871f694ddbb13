package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/corey/tally/internal/app"
	"github.com/spf13/cobra"
)

var (
	watchPrint    int
	watchPatterns string
	watchArchive  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <log>",
	Short: "Re-run logscan whenever a log file changes",
	Long: "Runs logscan once, then again each time the file is written, replaced or\n" +
		"removed. Every run scans the whole file from scratch. Stop with Ctrl-C.\n" +
		"Log output is also appended to .tally/log/watch.log.",
	Args: exactArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.IntVarP(&watchPrint, "print", "p", 0, "Map to list after the summary (0 = none)")
	f.StringVar(&watchPatterns, "patterns", "", "Pattern file (.txt one per line, or .yaml)")
	f.BoolVar(&watchArchive, "archive", false, "Save every report to the run archive")
}

func runWatch(cmd *cobra.Command, args []string) error {
	c := cfg
	c.Archive = c.Archive || watchArchive

	paths := c.Paths()
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	logFile, err := os.OpenFile(paths.WatchLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open watch log: %w", err)
	}
	defer logFile.Close()

	runner := app.NewRunner(c, app.NewLogger(io.MultiWriter(os.Stderr, logFile)))
	defer runner.Close()

	return runner.Watch(cmd.Context(), args[0], watchPatterns, func(res *app.ScanResult, err error) {
		fmt.Fprintln(os.Stdout, paint(useColor, colorGray, "── "+args[0]))
		if res != nil {
			writeLineReport(os.Stdout, res.Report, watchPrint, useColor)
			writeRunID(os.Stdout, res, useColor)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", archiveError(err))
		}
	})
}
