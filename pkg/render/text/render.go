package text

import (
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/render"
)

// Render draws g as a bordered text table. Each anchor's content comes from
// content; a label without content is a MISSING_CONTENT error. An empty
// grid renders as the empty string.
func Render(g *grid.Grid, content render.ContentLookup, opts ...Option) (string, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return "", err
	}
	blocks, err := measureBlocks(g, content)
	if err != nil {
		return "", err
	}
	if g.Rows() == 0 || g.Cols() == 0 {
		return "", nil
	}

	m := computeMetrics(g, blocks, cfg)
	xs := offsets(m.ColWidths, 2*cfg.padding)
	ys := offsets(m.RowHeights, 0)
	cv := newCanvas(xs[len(xs)-1]+1, ys[len(ys)-1]+1)

	for _, b := range blocks {
		c := b.cell
		x0, x1 := xs[c.Col], xs[c.EndCol()]
		y0 := ys[c.Row]
		cv.box(x0, y0, x1, ys[c.EndRow()])

		area := x1 - x0 - 1 - 2*cfg.padding
		for i, line := range b.lines {
			cv.write(x0+1+cfg.padding+indent(cfg.align, area, runewidth.StringWidth(line)), y0+1+i, line)
		}
	}

	for r := 0; r < g.Rows(); r++ {
		for col := 0; col < g.Cols(); col++ {
			if g.At(r, col).IsEmpty() {
				cv.box(xs[col], ys[r], xs[col+1], ys[r+1])
			}
		}
	}

	return cv.render(borders[cfg.border]()), nil
}

// indent returns the offset of a line of width w inside an area of width
// area.
func indent(align string, area, w int) int {
	switch align {
	case AlignCenter:
		return (area - w) / 2
	case AlignRight:
		return area - w
	default:
		return 0
	}
}
