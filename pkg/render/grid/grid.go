package grid

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

// Default screen pixels per cell; terminal cells are about twice as tall
// as they are wide.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

// Kind classifies what a cell shows.
type Kind int

const (
	KindEmpty Kind = iota
	KindConnector
	KindBorder
	KindText
)

// Cell is one terminal cell. A zero Rune marks the right half of a wide
// glyph.
type Cell struct {
	Rune   rune
	Kind   Kind
	NodeID string
	Level  int
}

// Grid is a rasterized scene.
type Grid struct {
	cols, rows int
	cells      []Cell
	cellW      float64
	cellH      float64
	view       viewport.State
}

// Option configures rasterization.
type Option func(*Grid)

// WithCellSize sets the screen pixels covered by one cell.
func WithCellSize(w, h float64) Option {
	return func(g *Grid) {
		if w > 0 && h > 0 {
			g.cellW, g.cellH = w, h
		}
	}
}

// Rasterize draws the scene through the viewport onto cols x rows cells.
func Rasterize(s render.Scene, view viewport.State, cols, rows int, opts ...Option) *Grid {
	g := &Grid{
		cols:  max(0, cols),
		rows:  max(0, rows),
		cellW: DefaultCellWidth,
		cellH: DefaultCellHeight,
		view:  view,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.view.Zoom == 0 {
		g.view.Zoom = 1
	}
	g.cells = make([]Cell, g.cols*g.rows)
	for i := range g.cells {
		g.cells[i] = Cell{Rune: ' '}
	}

	lines := make([]uint8, len(g.cells))
	for _, c := range s.Connections {
		for i := 1; i < len(c.Points); i++ {
			g.segment(lines, c.Points[i-1], c.Points[i])
		}
	}
	for i, m := range lines {
		if m != 0 {
			g.cells[i] = Cell{Rune: lineRune(m), Kind: KindConnector}
		}
	}

	for _, n := range s.Nodes() {
		g.node(n)
	}
	return g
}

// Fit rasterizes the whole scene at zoom 1 with the grid sized to its
// extent.
func Fit(s render.Scene, opts ...Option) *Grid {
	sized := &Grid{cellW: DefaultCellWidth, cellH: DefaultCellHeight}
	for _, opt := range opts {
		opt(sized)
	}
	ext := s.Extent()
	cols := int(math.Ceil(ext.Width / sized.cellW))
	rows := int(math.Ceil(ext.Height / sized.cellH))
	return Rasterize(s, viewport.Identity, cols, rows, opts...)
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// At returns the cell at column x and row y. Out of range yields a blank.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return Cell{Rune: ' '}
	}
	return g.cells[y*g.cols+x]
}

// CellAt maps a screen pixel to its cell.
func (g *Grid) CellAt(p geom.Point) (x, y int) {
	return int(math.Floor(p.X / g.cellW)), int(math.Floor(p.Y / g.cellH))
}

// ScreenPoint returns the screen pixel at the center of a cell.
func (g *Grid) ScreenPoint(x, y int) geom.Point {
	return geom.Point{X: (float64(x) + 0.5) * g.cellW, Y: (float64(y) + 0.5) * g.cellH}
}

// Rows returns each row as a string, skipping wide-glyph continuations.
func (g *Grid) Rows() []string {
	out := make([]string, g.rows)
	var b strings.Builder
	for y := range g.rows {
		b.Reset()
		for x := range g.cols {
			if r := g.cells[y*g.cols+x].Rune; r != 0 {
				b.WriteRune(r)
			}
		}
		out[y] = b.String()
	}
	return out
}

// String joins the rows with trailing blanks removed.
func (g *Grid) String() string {
	rows := g.Rows()
	for i, r := range rows {
		rows[i] = strings.TrimRight(r, " ")
	}
	return strings.TrimRight(strings.Join(rows, "\n"), "\n") + "\n"
}

func (g *Grid) cell(p geom.Point) (int, int) {
	return g.CellAt(g.view.CanvasToScreen(p))
}

func (g *Grid) in(x, y int) bool { return x >= 0 && y >= 0 && x < g.cols && y < g.rows }

func (g *Grid) set(x, y int, c Cell) {
	if g.in(x, y) {
		g.cells[y*g.cols+x] = c
	}
}

const (
	up uint8 = 1 << iota
	down
	left
	right
)

func (g *Grid) segment(lines []uint8, a, b geom.Point) {
	x0, y0 := g.cell(a)
	x1, y1 := g.cell(b)
	mark := func(x, y int, m uint8) {
		if g.in(x, y) {
			lines[y*g.cols+x] |= m
		}
	}
	switch {
	case y0 == y1 && x0 != x1:
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		for x := x0; x <= x1; x++ {
			var m uint8
			if x > x0 {
				m |= left
			}
			if x < x1 {
				m |= right
			}
			mark(x, y0, m)
		}
	case x0 == x1 && y0 != y1:
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		for y := y0; y <= y1; y++ {
			var m uint8
			if y > y0 {
				m |= up
			}
			if y < y1 {
				m |= down
			}
			mark(x0, y, m)
		}
	}
}

func lineRune(m uint8) rune {
	switch m {
	case left, right, left | right:
		return '─'
	case up, down, up | down:
		return '│'
	case down | right:
		return '┌'
	case down | left:
		return '┐'
	case up | right:
		return '└'
	case up | left:
		return '┘'
	case up | down | right:
		return '├'
	case up | down | left:
		return '┤'
	case down | left | right:
		return '┬'
	case up | left | right:
		return '┴'
	default:
		return '┼'
	}
}

func (g *Grid) node(n render.NodeBox) {
	x0, y0 := g.cell(geom.Point{X: n.Box.X, Y: n.Box.Y})
	x1, y1 := g.cell(geom.Point{X: n.Box.Right(), Y: n.Box.Bottom()})
	x1, y1 = max(x0, x1-1), max(y0, y1-1)
	border := func(x, y int, r rune) {
		g.set(x, y, Cell{Rune: r, Kind: KindBorder, NodeID: n.ID, Level: n.Level})
	}

	if x1-x0 < 2 || y1-y0 < 2 {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				border(x, y, '▪')
			}
		}
		return
	}

	for x := x0 + 1; x < x1; x++ {
		border(x, y0, '─')
		border(x, y1, '─')
	}
	for y := y0 + 1; y < y1; y++ {
		border(x0, y, '│')
		border(x1, y, '│')
		for x := x0 + 1; x < x1; x++ {
			g.set(x, y, Cell{Rune: ' ', Kind: KindText, NodeID: n.ID, Level: n.Level})
		}
	}
	border(x0, y0, '╭')
	border(x1, y0, '╮')
	border(x0, y1, '╰')
	border(x1, y1, '╯')

	inner, height := x1-x0-1, y1-y0-1
	lines := wrap(n.Text, inner, height)
	top := y0 + 1 + (height-len(lines))/2
	for i, line := range lines {
		x := x0 + 1 + (inner-runewidth.StringWidth(line))/2
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			g.set(x, top+i, Cell{Rune: r, Kind: KindText, NodeID: n.ID, Level: n.Level})
			if w == 2 {
				g.set(x+1, top+i, Cell{Kind: KindText, NodeID: n.ID, Level: n.Level})
			}
			x += max(1, w)
		}
	}
}

// wrap fits text into at most height lines of width cells. Overflow is
// marked with an ellipsis on the last line.
func wrap(text string, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	var lines []string
	cur := ""
	for _, w := range strings.Fields(text) {
		switch {
		case cur == "":
			cur = w
		case runewidth.StringWidth(cur+" "+w) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) > height {
		lines = lines[:height]
		lines[height-1] = runewidth.Truncate(lines[height-1], width-1, "") + "…"
	}
	for i, l := range lines {
		lines[i] = runewidth.Truncate(l, width, "…")
	}
	return lines
}
