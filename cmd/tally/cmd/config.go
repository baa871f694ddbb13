package cmd

import (
	"fmt"
	"os"

	"github.com/corey/tally/internal/app"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the state directory, archive path and scan defaults after flags and TALLY_* variables are applied.",
	Args:  exactArgs(0),
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	paths := cfg.Paths()

	archive := paint(useColor, colorYellow, "✗ none yet")
	if _, err := os.Stat(paths.DB); err == nil {
		archive = paint(useColor, colorGreen, "✓ present")
	}

	fmt.Printf("%s\n", paint(useColor, colorBold, "tally config"))
	fmt.Printf("  Home:       %s\n", cfg.Home)
	fmt.Printf("  State dir:  %s\n", paths.Root)
	fmt.Printf("  Archive:    %s (%s)\n", paths.DB, archive)
	fmt.Printf("  Watch log:  %s\n", paths.WatchLog)
	fmt.Printf("  Workers:    %d\n", cfg.Workers)
	fmt.Printf("  Policy:     %s\n", cfg.Policy)
	fmt.Printf("  Duplicates: %s\n", cfg.Duplicates)
	fmt.Printf("  Log level:  %s\n", envOr(app.EnvLogLevel, "warn"))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
