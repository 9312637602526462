package grid

import (
	"slices"
	"sort"

	errs "github.com/matzehuels/tablespan/pkg/errors"
)

// Limits on the size of a resolved grid. MaxCols matches the widest sheet a
// spreadsheet can hold.
const (
	MaxCols  = 16384
	MaxCells = 1 << 20
)

// activeSpan is one column of a cell that continues into the rows below
// its anchor row.
type activeSpan struct {
	col       int
	label     Label
	anchorRow int
	anchorCol int
	remaining int
}

// rowBuffer is the occupancy array of the row being built. A column is free
// when it lies past the end of the buffer or holds an Empty slot.
type rowBuffer struct {
	slots []Slot
}

func (b *rowBuffer) free(col int) bool {
	return col >= len(b.slots) || b.slots[col].Kind == Empty
}

// fits reports whether n consecutive columns starting at col are free.
func (b *rowBuffer) fits(col, n int) bool {
	for i := 0; i < n; i++ {
		if !b.free(col + i) {
			return false
		}
	}
	return true
}

// nextFit returns the first column at or after from where n columns are
// free. Columns past the buffer are always free, so the scan terminates.
func (b *rowBuffer) nextFit(from, n int) int {
	col := from
	for !b.fits(col, n) {
		col++
	}
	return col
}

func (b *rowBuffer) set(col int, s Slot) {
	for len(b.slots) <= col {
		b.slots = append(b.slots, Slot{})
	}
	b.slots[col] = s
}

// Validate checks that every span covers at least one column and one row.
// Labels are checked in sorted order so the reported label is stable.
func (m SpanMap) Validate() error {
	labels := make([]Label, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if s := m[label]; !s.Valid() {
			return errs.New(errs.ErrCodeInvalidSpan,
				"span for label %q is %s: colspan and rowspan must be at least 1", label, s)
		}
	}
	return nil
}

// Resolve places every label of table into a rectangular grid, honoring the
// spans in spans.
//
// Rows are filled left to right with a cursor that starts at column 0.
// Columns still covered by taller cells from rows above are marked first;
// each label is then placed at the first column at or after the cursor
// where all of its columns are free, and the cursor moves past it. Cells
// whose rowspan runs past the last row are clipped.
//
// Resolve returns an INVALID_SPAN error if any span in spans is smaller than
// 1×1, a DUPLICATE_ANCHOR error if a label is listed more than once, and a
// TABLE_TOO_LARGE error if the grid would exceed [MaxCols] columns or
// [MaxCells] positions. The limits are checked as each row is built, so an
// oversized span fails before its columns are allocated.
func Resolve(table LogicalTable, spans SpanMap) (*Grid, error) {
	if err := spans.Validate(); err != nil {
		return nil, err
	}

	var (
		rows   = make([][]Slot, len(table))
		cells  = make([]Cell, 0, table.CellCount())
		placed = make(map[Label]Cell, table.CellCount())
		active []activeSpan
		width  int
	)

	for r, labels := range table {
		var buf rowBuffer

		next := active[:0]
		for _, a := range active {
			buf.set(a.col, Slot{Kind: Continuation, Label: a.label, Row: a.anchorRow, Col: a.anchorCol})
			if a.remaining--; a.remaining > 0 {
				next = append(next, a)
			}
		}
		active = next

		cursor := 0
		for _, label := range labels {
			if prev, dup := placed[label]; dup {
				return nil, errs.New(errs.ErrCodeDuplicateAnchor,
					"label %q already anchored at row %d, column %d; listed again in row %d",
					label, prev.Row, prev.Col, r)
			}

			span := spans.Lookup(label)
			col := buf.nextFit(cursor, min(span.Cols, MaxCols+1))
			if span.Cols > MaxCols-col {
				return nil, errs.New(errs.ErrCodeTableTooLarge,
					"label %q in row %d would end past column %d", label, r, MaxCols)
			}
			cell := Cell{Label: label, Row: r, Col: col, ColSpan: span.Cols, RowSpan: span.Rows}

			buf.set(col, Slot{Kind: Anchor, Label: label, Row: r, Col: col, ColSpan: span.Cols, RowSpan: span.Rows})
			for i := 1; i < span.Cols; i++ {
				buf.set(col+i, Slot{Kind: Continuation, Label: label, Row: r, Col: col})
			}
			if span.Rows > 1 {
				for i := 0; i < span.Cols; i++ {
					active = append(active, activeSpan{
						col:       col + i,
						label:     label,
						anchorRow: r,
						anchorCol: col,
						remaining: span.Rows - 1,
					})
				}
			}

			placed[label] = cell
			cells = append(cells, cell)
			cursor = col + span.Cols
		}

		slices.SortFunc(active, func(a, b activeSpan) int { return a.col - b.col })
		rows[r] = buf.slots
		width = max(width, len(buf.slots))
		if width > MaxCells/len(table) {
			return nil, errs.New(errs.ErrCodeTableTooLarge,
				"grid of %d rows by %d columns exceeds %d positions", len(table), width, MaxCells)
		}
	}

	g := &Grid{
		rows:  len(table),
		cols:  width,
		slots: make([]Slot, len(table)*width),
	}
	if width == 0 {
		// All rows are empty; there are no positions to hold.
		g.rows = 0
		g.slots = nil
	}
	for r, row := range rows {
		copy(g.slots[r*width:], row)
	}

	// Clip spans that run past the last row.
	for i, c := range cells {
		if c.EndRow() > g.rows {
			cells[i].RowSpan = g.rows - c.Row
			g.slots[c.Row*width+c.Col].RowSpan = cells[i].RowSpan
		}
	}
	g.cells = cells

	return g, nil
}
