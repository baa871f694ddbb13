package app

import (
	"context"

	fsw "github.com/corey/tally/internal/adapters/fsnotify"
)

// Watch runs LineScan over logPath once, then again every time the log or
// the pattern file changes, until ctx is done. Each scan starts from scratch; nothing carries
// over between runs. onScan receives every result, including failed scans
// (a missing file, for example), and the watch keeps going.
func (r *Runner) Watch(ctx context.Context, logPath, patternsPath string, onScan func(*ScanResult, error)) error {
	w, err := fsw.NewWatcher(fsw.WithErrorHandler(func(err error) {
		r.log.Warn("watch error", "err", err)
	}))
	if err != nil {
		return err
	}
	defer w.Stop()

	paths := []string{logPath}
	if patternsPath != "" {
		paths = append(paths, patternsPath)
	}
	changed := make(chan struct{}, 1)
	if err := w.Watch(paths, func(path string) {
		select {
		case changed <- struct{}{}:
		default: // a rescan is already pending
		}
	}); err != nil {
		return err
	}
	r.log.Info("watching", "path", absPath(logPath), "patterns", patternsPath)

	scan := func() {
		res, err := r.LineScan(ctx, logPath, patternsPath)
		if ctx.Err() != nil {
			return
		}
		onScan(res, err)
	}

	scan()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			r.log.Debug("file changed", "path", logPath)
			scan()
		}
	}
}
