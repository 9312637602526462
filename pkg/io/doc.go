// Package io provides JSON import and export for table descriptions and
// resolved layouts.
//
// # Overview
//
// A table is described by two JSON documents: a span map and a logical
// table. An optional third document maps labels to display text. This
// package decodes all three with strict validation and writes resolved
// grids back out as a layout array.
//
// # Span Map
//
// A JSON object mapping labels to a two-element array of positive
// integers, [colspan, rowspan]:
//
//	{"A": [2, 1], "E": [3, 3]}
//
// Labels absent from the map span a single position. Values that are not
// two integers are rejected as MALFORMED_INPUT. Values below 1 are decoded
// and left to [grid.Resolve], which rejects them as INVALID_SPAN.
//
// # Logical Table
//
// A two-dimensional JSON array of labels, one inner array per row, listing
// only the labels that anchor in that row:
//
//	[["A", "B"], ["C", "D"]]
//
// Non-string values, including null, are rejected as MALFORMED_INPUT.
//
// # Document
//
// [Document] bundles the three inputs into one object, the shape accepted
// by the HTTP API and by "tablespan render --file":
//
//	{
//	  "spans": {"A": [2, 1]},
//	  "table": [["A", "B"], ["C", "D"]],
//	  "content": {"A": "Totals"}
//	}
//
// # Layout
//
// [WriteLayout] encodes a resolved grid as a rectangular array of rows.
// Anchors appear as their label; continuation and empty positions are
// null:
//
//	[["A",null,"B"],["C","D",null]]
//
// # Files and Arguments
//
// [ImportDocument] and [ExportLayout] are file-based conveniences.
// [ReadArg] resolves command-line arguments that are either inline JSON or
// "@path" references to a file.
//
// [grid.Resolve]: github.com/matzehuels/tablespan/pkg/grid.Resolve
package io
