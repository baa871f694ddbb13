package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/corey/tally/internal/app"
	"github.com/corey/tally/internal/domain/report"
	"github.com/spf13/cobra"
)

var (
	showJSON   bool
	showDelete bool
)

var showCmd = &cobra.Command{
	Use:   "show [flags] [run-id]",
	Short: "List archived runs or print one",
	Long:  "Without arguments, lists archived runs newest first. With a run ID, prints that report.",
	Args:  maxArgs(1),
	RunE:  runShow,
}

func init() {
	f := showCmd.Flags()
	f.BoolVar(&showJSON, "json", false, "Print the archived record as JSON")
	f.BoolVar(&showDelete, "delete", false, "Delete the given run instead of printing it")
}

func runShow(cmd *cobra.Command, args []string) error {
	runner := app.NewRunner(cfg, logger)
	defer runner.Close()

	store, err := runner.Store()
	if err != nil {
		return archiveError(err)
	}

	if len(args) == 0 {
		if showDelete {
			return usageErrorf("--delete needs a run ID")
		}
		runs, err := store.ListRuns()
		if err != nil {
			return err
		}
		if showJSON {
			return writeJSON(runs)
		}
		writeRunList(os.Stdout, runs, useColor)
		return nil
	}

	runID := args[0]
	if showDelete {
		if err := store.DeleteRun(runID); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted %s\n", runID)
		return nil
	}

	rec, err := store.LoadReport(runID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no archived run %q", runID)
	}
	if showJSON {
		return writeJSON(rec)
	}
	rep, err := report.FromRecord(rec)
	if err != nil {
		return err
	}
	writeArchivedReport(os.Stdout, rec, rep, useColor)
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
