// Package textsource reads log files, documents and pattern lists from disk.
package textsource

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/corey/tally/internal/ports"
)

// LineError reports a line that is not valid UTF-8.
type LineError struct {
	Path string // empty for plain readers
	Line int    // 1-based
}

func (e *LineError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: invalid UTF-8", e.Line)
	}
	return fmt.Sprintf("%s:%d: invalid UTF-8", e.Path, e.Line)
}

// LineReader splits a reader into lines. Terminators (\n, \r\n or a lone
// \r) are dropped; a final line without a terminator is still returned, and
// a trailing terminator does not produce an extra empty line.
type LineReader struct {
	r       *bufio.Reader
	closer  io.Closer
	path    string
	line    int
	pending []byte // bytes read past a lone \r
	err     error
}

var _ ports.LineSource = (*LineReader)(nil)

// NewLineReader reads lines from r. Close closes r if it is an io.Closer.
func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
	if c, ok := r.(io.Closer); ok {
		lr.closer = c
	}
	return lr
}

// OpenLines opens path for line reading.
func OpenLines(path string) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	lr := NewLineReader(f)
	lr.path = path
	return lr, nil
}

// Next returns the next line, or io.EOF once the input is exhausted.
func (lr *LineReader) Next() (string, error) {
	if lr.err != nil {
		return "", lr.err
	}

	chunk := lr.pending
	lr.pending = nil
	if len(chunk) == 0 {
		b, err := lr.r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			lr.err = fmt.Errorf("read %s: %w", lr.name(), err)
			return "", lr.err
		}
		if len(b) == 0 {
			lr.err = io.EOF
			return "", lr.err
		}
		chunk = b
	}
	lr.line++

	line, rest := splitLine(chunk)
	if len(rest) > 0 {
		lr.pending = rest
	}
	if !utf8.Valid(line) {
		lr.err = &LineError{Path: lr.path, Line: lr.line}
		return "", lr.err
	}
	return string(line), nil
}

// Line returns the number of lines returned so far.
func (lr *LineReader) Line() int { return lr.line }

// Close releases the underlying file, if any.
func (lr *LineReader) Close() error {
	if lr.closer == nil {
		return nil
	}
	c := lr.closer
	lr.closer = nil
	return c.Close()
}

func (lr *LineReader) name() string {
	if lr.path == "" {
		return "input"
	}
	return lr.path
}

// splitLine cuts chunk at its first terminator. chunk holds at most one \n,
// at its end, so anything after a lone \r is the start of the next line.
func splitLine(chunk []byte) (line, rest []byte) {
	i := bytes.IndexAny(chunk, "\r\n")
	if i < 0 {
		return chunk, nil
	}
	line, rest = chunk[:i], chunk[i+1:]
	if chunk[i] == '\r' && len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}
	return line, rest
}
