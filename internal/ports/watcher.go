package ports

// Watcher monitors input files and reports when they change so a caller can
// re-run a scan from scratch. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring the given files. onChange is called with the
	// absolute path of each changed file, debounced per path. The callback may
	// be invoked from any goroutine. A file may be missing when Watch starts;
	// its directory must exist.
	Watch(paths []string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
