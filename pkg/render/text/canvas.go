package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Edge directions leaving a border point.
const (
	edgeUp uint8 = 1 << iota
	edgeDown
	edgeLeft
	edgeRight
)

// canvas is a character grid with a separate layer of border edges. Border
// glyphs are resolved only when the canvas is printed, so overlapping boxes
// merge into proper junctions.
type canvas struct {
	width  int
	height int
	cells  [][]string // "" marks a cell covered by a wide cluster to its left
	edges  [][]uint8
}

func newCanvas(width, height int) *canvas {
	c := &canvas{
		width:  width,
		height: height,
		cells:  make([][]string, height),
		edges:  make([][]uint8, height),
	}
	for y := range c.cells {
		c.cells[y] = make([]string, width)
		for x := range c.cells[y] {
			c.cells[y][x] = " "
		}
		c.edges[y] = make([]uint8, width)
	}
	return c
}

func (c *canvas) hline(y, x0, x1 int) {
	for x := x0; x < x1; x++ {
		c.edges[y][x] |= edgeRight
		c.edges[y][x+1] |= edgeLeft
	}
}

func (c *canvas) vline(x, y0, y1 int) {
	for y := y0; y < y1; y++ {
		c.edges[y][x] |= edgeDown
		c.edges[y+1][x] |= edgeUp
	}
}

// box draws the outline of the rectangle with corners (x0, y0) and (x1, y1).
func (c *canvas) box(x0, y0, x1, y1 int) {
	c.hline(y0, x0, x1)
	c.hline(y1, x0, x1)
	c.vline(x0, y0, y1)
	c.vline(x1, y0, y1)
}

// write places s starting at (x, y), one grapheme cluster per step. A
// cluster takes as many cells as its display width; a zero-width cluster
// attaches to the cluster before it, or to the next one when it leads.
func (c *canvas) write(x, y int, s string) {
	last := -1
	pending := ""
	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w := runewidth.StringWidth(cluster)
		if w == 0 {
			if last >= 0 {
				c.cells[y][last] += cluster
			} else {
				pending += cluster
			}
			continue
		}
		if x+w > c.width {
			return
		}
		c.cells[y][x] = pending + cluster
		pending = ""
		for i := 1; i < w; i++ {
			c.cells[y][x+i] = ""
		}
		last = x
		x += w
	}
	if pending != "" && x < c.width {
		c.cells[y][x] = " " + pending
	}
}

// render prints the canvas with glyphs from b. Every line ends in "\n".
func (c *canvas) render(b lipgloss.Border) string {
	var sb strings.Builder
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			if e := c.edges[y][x]; e != 0 {
				sb.WriteString(glyph(e, b))
				continue
			}
			sb.WriteString(c.cells[y][x])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// glyph picks the border glyph for a point whose edges leave in the
// directions of mask.
func glyph(mask uint8, b lipgloss.Border) string {
	var s string
	switch mask {
	case edgeLeft | edgeRight, edgeLeft, edgeRight:
		s = b.Top
	case edgeUp | edgeDown, edgeUp, edgeDown:
		s = b.Left
	case edgeDown | edgeRight:
		s = b.TopLeft
	case edgeDown | edgeLeft:
		s = b.TopRight
	case edgeUp | edgeRight:
		s = b.BottomLeft
	case edgeUp | edgeLeft:
		s = b.BottomRight
	case edgeUp | edgeDown | edgeRight:
		s = b.MiddleLeft
	case edgeUp | edgeDown | edgeLeft:
		s = b.MiddleRight
	case edgeLeft | edgeRight | edgeDown:
		s = b.MiddleTop
	case edgeLeft | edgeRight | edgeUp:
		s = b.MiddleBottom
	default:
		s = b.Middle
	}
	if s == "" {
		return " "
	}
	return s
}
