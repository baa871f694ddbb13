package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/corey/tally/internal/app"
	"github.com/spf13/cobra"
)

var (
	logscanPrint    int
	logscanPatterns string
	logscanArchive  bool
)

var logscanCmd = &cobra.Command{
	Use:   "logscan [flags] <log>",
	Short: "Count unique addresses and users in a log file",
	Long: "Scans a log file line by line and tallies every IPv4-shaped address and every\n" +
		"username=<word> value. --patterns replaces the two extractors with a pattern file;\n" +
		"each pattern then gets its own map.\n\n" +
		"--print selects the map listed after the summary: 0 none, 1 the first map\n" +
		"(addresses), 2 the second (users), and so on. Unknown values print the summary only.",
	Args: exactArgs(1),
	RunE: runLogscan,
}

func init() {
	f := logscanCmd.Flags()
	f.IntVarP(&logscanPrint, "print", "p", 0, "Map to list after the summary (0 = none)")
	f.StringVar(&logscanPatterns, "patterns", "", "Pattern file (.txt one per line, or .yaml)")
	f.BoolVar(&logscanArchive, "archive", false, "Save the report to the run archive")
}

func runLogscan(cmd *cobra.Command, args []string) error {
	c := cfg
	c.Archive = c.Archive || logscanArchive

	runner := app.NewRunner(c, logger)
	defer runner.Close()

	res, err := runner.LineScan(cmd.Context(), args[0], logscanPatterns)
	if res != nil {
		writeLineReport(os.Stdout, res.Report, logscanPrint, useColor)
		writeRunID(os.Stdout, res, useColor)
	}
	return scanError(err)
}

// scanError adapts a scan failure for Execute. Interrupted scans have
// already printed their partial report.
func scanError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return exitError{code: exitScan, err: errors.New("interrupted")}
	}
	return archiveError(err)
}
