package textsource

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/corey/tally/internal/ports"
)

// FileDocument loads a whole file as one document.
type FileDocument struct {
	Path string
}

var _ ports.DocumentSource = FileDocument{}

// Document reads the file line by line and joins the lines with "\n",
// terminating every line including the last. \r\n becomes \n.
func (d FileDocument) Document() (string, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return "", err
	}
	lr := NewLineReader(f)
	lr.path = d.Path
	defer lr.Close()
	return ReadDocument(lr)
}

// ReadDocument drains src into a single newline-joined document.
func ReadDocument(src ports.LineSource) (string, error) {
	var sb strings.Builder
	for {
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
