// Package grid resolves a compact, reading-order table description into a
// rectangular physical grid.
//
// # Overview
//
// A table is described by two inputs:
//
//   - A [LogicalTable]: rows of labels in left-to-right reading order. A row
//     lists only the labels that start (anchor) in that row; positions
//     covered by a taller cell from a row above are never listed.
//   - A [SpanMap]: for each label, how many columns and rows it covers.
//     Labels without an entry cover a single position.
//
// [Resolve] turns these into a [Grid], where every position is exactly one
// of:
//
//   - [Anchor]: the top-left position of a cell, holding its label and its
//     resolved extent
//   - [Continuation]: a position covered by a cell anchored elsewhere
//   - [Empty]: an unused position (short rows, gaps left by placement)
//
// # Placement
//
// Rows are processed top to bottom with a cursor that only moves right. A
// cell is placed at the first column at or after the cursor where all of
// its columns are free in the current row; columns skipped on the way stay
// [Empty]. Because the cursor never revisits an occupied column, two cells
// can never overlap and no overlap check is needed after the fact.
//
// Cells taller than the remaining rows are clipped to the rows that exist:
// the grid never grows rows that the logical table does not have.
//
// # Example
//
//	spans := grid.SpanMap{"A": {Cols: 2, Rows: 1}}
//	g, err := grid.Resolve(grid.LogicalTable{{"A", "B"}, {"C", "D"}}, spans)
//	// g.String():
//	// A ~A B
//	// C D .
//
// # Errors
//
// Resolution fails, without a partial result, when a span is smaller than
// 1×1 (INVALID_SPAN) or when a label anchors more than once
// (DUPLICATE_ANCHOR). Span entries for labels that never appear in the table
// are ignored.
package grid
