package text

import (
	"slices"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/render"
)

// Metrics is the computed size of every column and row.
type Metrics struct {
	// ColWidths is the content width of each column, excluding padding and
	// borders.
	ColWidths []int
	// RowHeights is the number of content lines of each row.
	RowHeights []int
}

// block is a cell with its measured content.
type block struct {
	cell  grid.Cell
	lines []string
	width int
}

// extent is a run of n sizes starting at start that must hold need units.
type extent struct {
	start int
	n     int
	need  int
}

// Measure computes column widths and row heights for g without drawing it.
func Measure(g *grid.Grid, content render.ContentLookup, opts ...Option) (Metrics, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return Metrics{}, err
	}
	blocks, err := measureBlocks(g, content)
	if err != nil {
		return Metrics{}, err
	}
	return computeMetrics(g, blocks, cfg), nil
}

func measureBlocks(g *grid.Grid, content render.ContentLookup) ([]block, error) {
	cells := g.Cells()
	blocks := make([]block, len(cells))
	for i, c := range cells {
		s, err := render.Lookup(content, c)
		if err != nil {
			return nil, err
		}
		lines := render.Lines(s)
		w := 0
		for _, line := range lines {
			w = max(w, runewidth.StringWidth(line))
		}
		blocks[i] = block{cell: c, lines: lines, width: w}
	}
	return blocks, nil
}

func computeMetrics(g *grid.Grid, blocks []block, cfg config) Metrics {
	widths := make([]int, g.Cols())
	for i := range widths {
		widths[i] = cfg.minWidth
	}
	heights := make([]int, g.Rows())
	for i := range heights {
		heights[i] = 1
	}

	var wide, tall []extent
	for _, b := range blocks {
		c := b.cell
		if c.ColSpan == 1 {
			widths[c.Col] = max(widths[c.Col], b.width)
		} else {
			wide = append(wide, extent{start: c.Col, n: c.ColSpan, need: b.width})
		}
		if c.RowSpan == 1 {
			heights[c.Row] = max(heights[c.Row], len(b.lines))
		} else {
			tall = append(tall, extent{start: c.Row, n: c.RowSpan, need: len(b.lines)})
		}
	}

	fit(widths, wide, cfg.separator())
	fit(heights, tall, 1)

	return Metrics{ColWidths: widths, RowHeights: heights}
}

// fit grows sizes so every extent holds its need, counting sep units
// between adjacent sizes. Narrower extents are fitted first; ties keep
// reading order.
func fit(sizes []int, extents []extent, sep int) {
	slices.SortStableFunc(extents, func(a, b extent) int { return a.n - b.n })
	for _, e := range extents {
		part := sizes[e.start : e.start+e.n]
		have := (e.n - 1) * sep
		for _, s := range part {
			have += s
		}
		if e.need > have {
			distribute(part, e.need-have)
		}
	}
}

// distribute adds extra units to sizes in proportion to their current
// values, rounding with the largest-remainder method. Ties go to the
// leftmost size. When all sizes are zero the units are shared equally.
func distribute(sizes []int, extra int) {
	weights := slices.Clone(sizes)
	total := 0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = len(weights)
	}

	type remainder struct{ idx, rem int }
	rems := make([]remainder, len(sizes))
	given := 0
	for i, w := range weights {
		q := extra * w
		sizes[i] += q / total
		given += q / total
		rems[i] = remainder{idx: i, rem: q % total}
	}

	slices.SortStableFunc(rems, func(a, b remainder) int { return b.rem - a.rem })
	for k := 0; k < extra-given; k++ {
		sizes[rems[k].idx]++
	}
}

// offsets returns the position of the leading border of each size, plus
// the position of the closing border, when every size is followed by gap
// units and one border unit.
func offsets(sizes []int, gap int) []int {
	out := make([]int, len(sizes)+1)
	for i, s := range sizes {
		out[i+1] = out[i] + s + gap + 1
	}
	return out
}
