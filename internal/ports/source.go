package ports

// LineSource yields a text source one line at a time.
// Next returns the line without its terminator, or io.EOF once the input is
// exhausted. Any other error (unreadable input, undecodable line) is final:
// callers must not call Next again.
type LineSource interface {
	Next() (string, error)
	Close() error
}

// DocumentSource yields a whole document as a single span.
type DocumentSource interface {
	Document() (string, error)
}
