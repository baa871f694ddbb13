// tally counts pattern occurrences in log files and documents.
// Line mode tallies extracted keys per line; bulk mode counts each pattern
// across a whole document and writes a <name>_wc.txt report.
package main

import (
	"os"

	"github.com/corey/tally/cmd/tally/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
