// Package render groups the output formats for resolved table grids.
//
// # Overview
//
// Rendering starts from a [grid.Grid] produced by [grid.Resolve] and a
// content lookup that maps each label to its display text. Two sinks are
// provided:
//
//   - [text]: a bordered plain-text table where spanning cells occupy their
//     whole rectangle. Column widths and row heights grow to fit content.
//   - [xlsx]: a spreadsheet where each cell is written at its anchor and
//     spans become merged ranges.
//
// Both sinks take a [ContentLookup]; [Labels] displays each label as its own
// text and [ContentMap] looks text up in a map.
//
// The JSON layout format (labels at anchors, null elsewhere) lives in the
// io package, next to the input decoders.
//
//	g, err := grid.Resolve(table, spans)
//	out, err := text.Render(g, render.Labels{}, text.WithBorder("rounded"))
//	book, err := xlsx.Render(g, render.Labels{})
//
// [grid.Grid]: github.com/matzehuels/tablespan/pkg/grid.Grid
// [grid.Resolve]: github.com/matzehuels/tablespan/pkg/grid.Resolve
// [text]: github.com/matzehuels/tablespan/pkg/render/text
// [xlsx]: github.com/matzehuels/tablespan/pkg/render/xlsx
package render
