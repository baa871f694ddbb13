package app

import (
	"os"
	"path/filepath"
)

// StateDirName is the per-project state directory created under the home directory.
const StateDirName = ".tally"

// Paths holds all resolved filesystem paths for the .tally/ state directory.
// All fields are pre-computed strings.
type Paths struct {
	Root string // .tally/
	DB   string // .tally/tally.db

	LogDir   string // .tally/log/
	WatchLog string // .tally/log/watch.log
}

// NewPaths constructs all resolved paths from a home directory.
func NewPaths(home string) *Paths {
	root := filepath.Join(home, StateDirName)
	return &Paths{
		Root: root,
		DB:   filepath.Join(root, "tally.db"),

		LogDir:   filepath.Join(root, "log"),
		WatchLog: filepath.Join(root, "log", "watch.log"),
	}
}

// EnsureDirs creates all subdirectories under .tally/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
