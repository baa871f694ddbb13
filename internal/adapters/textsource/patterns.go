package textsource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/tally/internal/ports"
	"gopkg.in/yaml.v3"
)

// PatternFile reads pattern declarations from a file.
//
// Files ending in .yaml or .yml hold a list of {name, pattern, kind, group}
// mappings. Anything else is plain text with one raw pattern per line; the
// pattern doubles as its name. Blank and whitespace-only lines are kept;
// an empty one fails compilation like any other empty pattern.
type PatternFile struct {
	Path string
}

var _ ports.PatternSource = PatternFile{}

// Patterns returns the declarations in file order.
func (p PatternFile) Patterns() ([]ports.PatternDef, error) {
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".yaml", ".yml":
		return p.yamlPatterns()
	default:
		return p.plainPatterns()
	}
}

func (p PatternFile) plainPatterns() ([]ports.PatternDef, error) {
	lr, err := OpenLines(p.Path)
	if err != nil {
		return nil, err
	}
	defer lr.Close()

	var defs []ports.PatternDef
	for {
		line, err := lr.Next()
		if errors.Is(err, io.EOF) {
			return defs, nil
		}
		if err != nil {
			return nil, err
		}
		defs = append(defs, ports.PatternDef{Pattern: line})
	}
}

func (p PatternFile) yamlPatterns() ([]ports.PatternDef, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	var defs []ports.PatternDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.Path, err)
	}
	return defs, nil
}
