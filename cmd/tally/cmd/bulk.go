package cmd

import (
	"os"

	"github.com/corey/tally/internal/app"
	"github.com/corey/tally/internal/domain/engine"
	"github.com/spf13/cobra"
)

var (
	bulkOut        string
	bulkPolicy     string
	bulkDuplicates string
	bulkWorkers    int
	bulkArchive    bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk [flags] <document> <patterns>",
	Short: "Count each pattern across a whole document",
	Long: "Reads the document as one text (patterns may span lines) and counts the\n" +
		"non-overlapping matches of every pattern in the pattern file. Results go to\n" +
		"<document>_wc.txt as one \"<pattern>|<count>\" line per pattern, in file order.\n\n" +
		"Invalid patterns follow --policy: sentinel writes a count of -1, skip leaves\n" +
		"them out, abort fails the run without writing anything.",
	Args: exactArgs(2),
	RunE: runBulk,
}

func init() {
	f := bulkCmd.Flags()
	f.StringVarP(&bulkOut, "out", "o", "", "Output file (default <document>_wc.txt)")
	f.StringVar(&bulkPolicy, "policy", "", "Invalid pattern policy: sentinel, skip, abort (default $TALLY_POLICY or sentinel)")
	f.StringVar(&bulkDuplicates, "duplicates", "last-wins", "Repeated pattern names: last-wins, reject")
	f.IntVarP(&bulkWorkers, "workers", "w", 0, "Patterns scanned in parallel (default $TALLY_WORKERS or 1)")
	f.BoolVar(&bulkArchive, "archive", false, "Save the report to the run archive")
}

func runBulk(cmd *cobra.Command, args []string) error {
	c := cfg
	c.Archive = c.Archive || bulkArchive
	if bulkPolicy != "" {
		p, err := engine.PolicyFromName(bulkPolicy)
		if err != nil {
			return usageError(err)
		}
		c.Policy = p
	}
	d, err := engine.DuplicatePolicyFromName(bulkDuplicates)
	if err != nil {
		return usageError(err)
	}
	c.Duplicates = d
	if cmd.Flags().Changed("workers") {
		if bulkWorkers < 1 {
			return usageErrorf("--workers must be at least 1, got %d", bulkWorkers)
		}
		c.Workers = bulkWorkers
	}

	runner := app.NewRunner(c, logger)
	defer runner.Close()

	res, err := runner.BulkScan(cmd.Context(), args[0], args[1], bulkOut)
	if res != nil {
		writeBulkResult(os.Stdout, res, useColor)
		writeRunID(os.Stdout, res, useColor)
	}
	return scanError(err)
}
