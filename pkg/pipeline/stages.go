package pipeline

import (
	"fmt"

	"github.com/matzehuels/tablespan/pkg/grid"
	tsio "github.com/matzehuels/tablespan/pkg/io"
	"github.com/matzehuels/tablespan/pkg/render/text"
	"github.com/matzehuels/tablespan/pkg/render/xlsx"
)

// Resolve runs the resolve stage.
func Resolve(in Input) (*grid.Grid, error) {
	return grid.Resolve(in.Table, in.Spans)
}

// Render generates output artifacts in the requested formats. opts must
// already be validated.
func Render(g *grid.Grid, in Input, opts Options) (map[string][]byte, error) {
	content := opts.Lookup(in)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatText:
			var s string
			s, err = text.Render(g, content, opts.TextOptions()...)
			data = []byte(s)
		case FormatJSON:
			data, err = tsio.MarshalLayout(g)
		case FormatXLSX:
			data, err = xlsx.Render(g, content)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// ResolveJSON resolves a span map and a logical table given as JSON
// documents and returns the layout JSON: one array per row, holding the
// label at each anchor and null everywhere else.
//
//	out, _ := pipeline.ResolveJSON(
//	    []byte(`{"B": [2, 2], "H": [2, 1]}`),
//	    []byte(`[["A", "B", "C"], ["D", "E"], ["F", "G", "H"]]`))
//	// [["A","B",null,"C"],["D",null,null,"E"],["F","G","H",null]]
func ResolveJSON(spanJSON, tableJSON []byte) ([]byte, error) {
	spans, err := tsio.ParseSpanMap(spanJSON)
	if err != nil {
		return nil, err
	}
	table, err := tsio.ParseTable(tableJSON)
	if err != nil {
		return nil, err
	}
	g, err := grid.Resolve(table, spans)
	if err != nil {
		return nil, err
	}
	return tsio.MarshalLayout(g)
}
