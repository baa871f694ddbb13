// Package reportfile writes count tables as "<key>|<count>" lines.
package reportfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corey/tally/internal/domain/report"
)

// Suffix replaces the input file's extension in OutputPath.
const Suffix = "_wc.txt"

// Write emits one "<key>|<count>" line per entry, in order, with no header.
func Write(w io.Writer, entries []report.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		bw.WriteString(e.Key)
		bw.WriteByte('|')
		bw.WriteString(strconv.Itoa(e.Count))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes entries to path, replacing any existing file.
func WriteFile(path string, entries []report.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}

// OutputPath derives the report path for an input document: the final
// extension of the base name is replaced by Suffix, in the same directory.
// "novel.txt" becomes "novel_wc.txt"; "README" becomes "README_wc.txt".
// A leading dot is part of the name, not an extension.
func OutputPath(in string) string {
	dir, base := filepath.Split(in)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return dir + base + Suffix
}
