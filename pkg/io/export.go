package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tablespan/pkg/grid"
)

// Layout returns g as a rectangular array of rows in which anchors hold
// their label and every other position is nil.
func Layout(g *grid.Grid) [][]*string {
	out := make([][]*string, g.Rows())
	for r := range out {
		out[r] = make([]*string, g.Cols())
		for c, s := range g.Row(r) {
			if s.IsAnchor() {
				label := s.Label
				out[r][c] = &label
			}
		}
	}
	return out
}

// MarshalLayout encodes g as compact layout JSON without a trailing newline.
func MarshalLayout(g *grid.Grid) ([]byte, error) {
	data, err := json.Marshal(Layout(g))
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// WriteLayout writes the layout JSON of g to w, followed by a newline.
func WriteLayout(g *grid.Grid, w io.Writer) error {
	data, err := MarshalLayout(g)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// ExportLayout writes the layout JSON of g to a file at path.
// This is a convenience wrapper around [WriteLayout] for file-based output.
func ExportLayout(g *grid.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(g, f)
}
