package grid

import (
	"fmt"
	"strings"
)

// Label is an opaque identifier naming a logical cell.
type Label = string

// Span is the number of columns and rows a cell covers.
type Span struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// DefaultSpan is the span of a label with no entry in a [SpanMap].
var DefaultSpan = Span{Cols: 1, Rows: 1}

// Valid reports whether both dimensions are at least 1.
func (s Span) Valid() bool {
	return s.Cols >= 1 && s.Rows >= 1
}

// String returns the span as [cols, rows].
func (s Span) String() string {
	return fmt.Sprintf("[%d, %d]", s.Cols, s.Rows)
}

// SpanMap maps labels to their spans.
type SpanMap map[Label]Span

// Lookup returns the span for label, or [DefaultSpan] if it has none.
func (m SpanMap) Lookup(label Label) Span {
	if s, ok := m[label]; ok {
		return s
	}
	return DefaultSpan
}

// LogicalTable is the reading-order description of a table: each row lists
// the labels anchored in it, left to right.
type LogicalTable [][]Label

// CellCount returns the number of labels listed across all rows.
func (t LogicalTable) CellCount() int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
}

// SlotKind tags the variant held by a [Slot].
type SlotKind uint8

const (
	// Empty is an unused grid position.
	Empty SlotKind = iota
	// Anchor is the top-left position of a cell.
	Anchor
	// Continuation is a position covered by a cell anchored elsewhere.
	Continuation
)

// String returns the lower-case name of the kind.
func (k SlotKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Anchor:
		return "anchor"
	case Continuation:
		return "continuation"
	default:
		return fmt.Sprintf("SlotKind(%d)", uint8(k))
	}
}

// Slot is one position of a [Grid].
//
// For Anchor and Continuation slots, Label names the cell and Row/Col hold
// the position of its anchor. ColSpan and RowSpan are set on Anchor slots
// only and give the resolved extent, after clipping. Empty slots carry no
// other fields.
type Slot struct {
	Kind    SlotKind
	Label   Label
	Row     int
	Col     int
	ColSpan int
	RowSpan int
}

// IsEmpty reports whether the slot is unused.
func (s Slot) IsEmpty() bool { return s.Kind == Empty }

// IsAnchor reports whether the slot holds a cell's content.
func (s Slot) IsAnchor() bool { return s.Kind == Anchor }

// IsContinuation reports whether the slot is covered by a cell anchored
// elsewhere.
func (s Slot) IsContinuation() bool { return s.Kind == Continuation }

// Cell is a resolved cell: its label, anchor position and extent.
type Cell struct {
	Label   Label
	Row     int
	Col     int
	ColSpan int
	RowSpan int
}

// EndCol returns the column just past the cell.
func (c Cell) EndCol() int { return c.Col + c.ColSpan }

// EndRow returns the row just past the cell.
func (c Cell) EndRow() int { return c.Row + c.RowSpan }

// Contains reports whether the cell covers (row, col).
func (c Cell) Contains(row, col int) bool {
	return row >= c.Row && row < c.EndRow() && col >= c.Col && col < c.EndCol()
}

// Grid is a resolved, rectangular table layout. It is immutable once built
// by [Resolve]; accessors return copies.
type Grid struct {
	rows  int
	cols  int
	slots []Slot // row-major, rows*cols
	cells []Cell // reading order
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// At returns the slot at (row, col). It panics if the position is out of
// range.
func (g *Grid) At(row, col int) Slot {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		panic(fmt.Sprintf("grid: position (%d, %d) out of range %dx%d", row, col, g.rows, g.cols))
	}
	return g.slots[row*g.cols+col]
}

// Row returns a copy of the slots of row r.
func (g *Grid) Row(r int) []Slot {
	out := make([]Slot, g.cols)
	copy(out, g.slots[r*g.cols:(r+1)*g.cols])
	return out
}

// Cells returns all cells in reading order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Cell returns the resolved cell for label.
func (g *Grid) Cell(label Label) (Cell, bool) {
	for _, c := range g.cells {
		if c.Label == label {
			return c, true
		}
	}
	return Cell{}, false
}

// String renders the grid compactly, one line per row: anchors as their
// label, continuations as ~label, empty slots as a dot.
func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < g.cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			s := g.slots[r*g.cols+c]
			switch s.Kind {
			case Anchor:
				b.WriteString(s.Label)
			case Continuation:
				b.WriteString("~" + s.Label)
			default:
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
