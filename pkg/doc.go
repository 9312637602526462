// Package pkg provides the libraries behind tablespan.
//
// # Overview
//
// Tablespan turns a compact table description into a resolved grid and
// renders it. A description has two parts: a logical table listing, per
// row, the labels of the cells that start in that row, and a span map
// giving each label's column and row span.
//
// # Architecture
//
//	span map + logical table (JSON)
//	         ↓
//	    [io] package (decode and validate)
//	         ↓
//	    [grid] package (span resolution)
//	         ↓
//	    [render/text], [render/xlsx], [io] (text, spreadsheet, JSON layout)
//
// [pipeline] runs these stages with caching through [cache] and reports
// progress through [observability]. Every package returns [errors] values
// carrying a machine-readable code.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/tablespan/pkg/grid"
//	    "github.com/matzehuels/tablespan/pkg/render"
//	    "github.com/matzehuels/tablespan/pkg/render/text"
//	)
//
//	spans := grid.SpanMap{"A": {Cols: 2, Rows: 1}}
//	table := grid.LogicalTable{{"A", "B"}, {"C", "D"}}
//
//	g, err := grid.Resolve(table, spans)
//	if err != nil {
//	    return err
//	}
//	out, err := text.Render(g, render.Labels{})
//
// [io]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/io
// [grid]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/grid
// [render/text]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/render/text
// [render/xlsx]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/render/xlsx
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tablespan/pkg/errors
package pkg
