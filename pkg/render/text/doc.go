// Package text renders a resolved table grid as bordered plain text.
//
// # Sizing
//
// Column widths start from the widest single-column cell anchored in each
// column, never below the configured minimum. Cells spanning several
// columns are then fitted in order of increasing colspan: when a cell's
// text is wider than its columns plus the separators between them, the
// missing width is shared among those columns in proportion to their
// current widths (largest-remainder rounding), so the cell fits exactly.
// Row heights follow the same rule using line counts.
//
// Display width is measured with go-runewidth, so East Asian wide
// characters take two columns.
//
// # Drawing
//
// Every cell, including empty positions, is drawn as a box over its whole
// rectangle. Border glyphs come from a lipgloss border set; the glyph at
// each junction is chosen from the edges that meet there, so spans produce
// the expected tees and corners.
//
//	out, err := text.Render(g, render.Labels{},
//	    text.WithBorder(text.BorderRounded),
//	    text.WithAlign(text.AlignCenter),
//	)
//
// # Options
//
//   - [WithBorder]: named border set (normal, rounded, thick, double, ascii, hidden)
//   - [WithMinWidth]: minimum content width of a column (default 1)
//   - [WithPadding]: spaces between the border and the content (default 1)
//   - [WithAlign]: left (default), center or right placement of each line
package text
