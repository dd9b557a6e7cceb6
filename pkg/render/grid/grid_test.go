package grid

import (
	"strings"
	"testing"

	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

func testScene(root *mindmap.Node) render.Scene {
	eng := layout.New()
	canvas := geom.Size{Width: 800, Height: 600}
	pos := eng.Layout(root, canvas)
	return render.Scene{
		Root:        root,
		Canvas:      canvas,
		Positions:   pos,
		Sizes:       eng.Sizes(),
		Connections: route.New().Estimate(root, pos, eng.Sizes()),
	}
}

func TestRasterizeNode(t *testing.T) {
	// Root box spans x 340..460 and y 80..140 on an 800 wide canvas.
	g := Rasterize(testScene(&mindmap.Node{ID: "r", Text: "Root"}), viewport.Identity, 100, 40)

	tests := []struct {
		x, y int
		want rune
		kind Kind
	}{
		{42, 5, '╭', KindBorder},
		{56, 5, '╮', KindBorder},
		{42, 7, '╰', KindBorder},
		{56, 7, '╯', KindBorder},
		{47, 6, 'R', KindText},
		{50, 6, 't', KindText},
		{0, 0, ' ', KindEmpty},
	}
	for _, tt := range tests {
		c := g.At(tt.x, tt.y)
		if c.Rune != tt.want || c.Kind != tt.kind {
			t.Errorf("At(%d,%d) = %q/%d, want %q/%d", tt.x, tt.y, c.Rune, c.Kind, tt.want, tt.kind)
		}
	}
	if c := g.At(47, 6); c.NodeID != "r" || c.Level != 0 {
		t.Errorf("text cell owner = %q level %d", c.NodeID, c.Level)
	}
}

func TestRasterizeConnector(t *testing.T) {
	root := &mindmap.Node{ID: "r", Text: "Root", Children: []*mindmap.Node{{ID: "a", Text: "A"}}}
	// Connector runs (400,140) -> (400,160) -> (390,160) -> (390,180).
	g := Rasterize(testScene(root), viewport.Identity, 100, 40)

	tests := []struct {
		x, y int
		want rune
	}{
		{50, 8, '│'},
		{50, 9, '│'},
		{50, 10, '┘'},
		{49, 10, '─'},
		{48, 10, '┌'},
	}
	for _, tt := range tests {
		c := g.At(tt.x, tt.y)
		if c.Rune != tt.want || c.Kind != KindConnector {
			t.Errorf("At(%d,%d) = %q, want connector %q", tt.x, tt.y, c.Rune, tt.want)
		}
	}
	if c := g.At(48, 11); c.Kind != KindBorder || c.NodeID != "a" {
		t.Error("child frame should paint over the connector end")
	}
}

func TestRasterizeViewport(t *testing.T) {
	scene := testScene(&mindmap.Node{ID: "r", Text: "Root"})
	g := Rasterize(scene, viewport.State{PanX: -80, PanY: -32, Zoom: 1}, 100, 40)
	if c := g.At(32, 3); c.Rune != '╭' {
		t.Errorf("panned corner = %q, want ╭", c.Rune)
	}

	zoomed := Rasterize(scene, viewport.State{Zoom: 0.8}, 100, 40)
	if c := zoomed.At(34, 4); c.Rune != '╭' {
		t.Errorf("zoomed corner = %q, want ╭", c.Rune)
	}
}

func TestFit(t *testing.T) {
	g := Fit(testScene(&mindmap.Node{ID: "r", Text: "Root"}))
	cols, rows := g.Size()
	if cols != 100 || rows != 38 {
		t.Errorf("Size() = %d x %d, want 100 x 38", cols, rows)
	}
	if !strings.Contains(g.String(), "Root") {
		t.Errorf("String() should contain the label:\n%s", g.String())
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text          string
		width, height int
		want          []string
	}{
		{"hello world", 5, 2, []string{"hello", "world"}},
		{"hello world", 11, 2, []string{"hello world"}},
		{"a b c d e", 3, 1, []string{"a …"}},
		{"extraordinary", 5, 1, []string{"extr…"}},
		{"anything", 0, 1, nil},
	}
	for _, tt := range tests {
		got := wrap(tt.text, tt.width, tt.height)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrap(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.height, got, tt.want)
		}
	}
}

func TestLineRune(t *testing.T) {
	if lineRune(left|right) != '─' || lineRune(up|down) != '│' || lineRune(up|down|left|right) != '┼' {
		t.Error("unexpected line runes")
	}
	if lineRune(down|left|right) != '┬' {
		t.Error("tee should point down")
	}
}

func TestAtOutOfRange(t *testing.T) {
	g := Rasterize(render.Scene{}, viewport.Identity, 2, 2)
	if c := g.At(5, 5); c.Rune != ' ' {
		t.Errorf("out of range cell = %q", c.Rune)
	}
	if x, y := g.CellAt(geom.Point{X: 17, Y: 33}); x != 2 || y != 2 {
		t.Errorf("CellAt = %d,%d", x, y)
	}
}
