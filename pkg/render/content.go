package render

import (
	"strings"

	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/grid"
)

// ContentLookup maps a label to its display text.
type ContentLookup interface {
	Content(label grid.Label) (string, bool)
}

// ContentMap looks display text up by label.
type ContentMap map[grid.Label]string

// Content implements ContentLookup.
func (m ContentMap) Content(label grid.Label) (string, bool) {
	s, ok := m[label]
	return s, ok
}

// Labels displays every label as its own text.
type Labels struct{}

// Content implements ContentLookup.
func (Labels) Content(label grid.Label) (string, bool) { return label, true }

// ContentFunc adapts a function to ContentLookup.
type ContentFunc func(label grid.Label) (string, bool)

// Content implements ContentLookup.
func (f ContentFunc) Content(label grid.Label) (string, bool) { return f(label) }

// Fallback consults each lookup in order and returns the first hit.
type Fallback []ContentLookup

// Content implements ContentLookup.
func (f Fallback) Content(label grid.Label) (string, bool) {
	for _, l := range f {
		if s, ok := l.Content(label); ok {
			return s, true
		}
	}
	return "", false
}

// Lookup returns the display text of cell, normalized to "\n" line breaks
// with tabs expanded. A miss is a MISSING_CONTENT error naming the label and
// its anchor position.
func Lookup(content ContentLookup, cell grid.Cell) (string, error) {
	s, ok := content.Content(cell.Label)
	if !ok {
		return "", errs.New(errs.ErrCodeMissingContent,
			"no content for label %q anchored at row %d, column %d", cell.Label, cell.Row, cell.Col)
	}
	return Normalize(s), nil
}

var normalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", "    ")

// Normalize converts line endings to "\n" and expands tabs to four spaces.
func Normalize(s string) string {
	return normalizer.Replace(s)
}

// Lines splits display text into lines. Empty text is a single empty line.
func Lines(s string) []string {
	return strings.Split(s, "\n")
}
