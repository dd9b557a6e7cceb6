package dot

import (
	"strings"
	"testing"

	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

func testScene() render.Scene {
	root := &mindmap.Node{ID: "r", Text: "Root", Children: []*mindmap.Node{
		{ID: "a", Text: "Alpha"},
		{ID: "b", Text: "Beta \"quoted\""},
	}}
	eng := layout.New()
	canvas := geom.Size{Width: 1000, Height: 800}
	pos := eng.Layout(root, canvas)
	return render.Scene{
		Root:        root,
		Canvas:      canvas,
		Positions:   pos,
		Sizes:       eng.Sizes(),
		Connections: route.New().Estimate(root, pos, eng.Sizes()),
	}
}

func TestToDOT(t *testing.T) {
	out := ToDOT(testScene(), Options{})

	for _, want := range []string{
		"digraph mindmap {",
		"layout=neato;",
		`"r" [label="Root"`,
		`"r" -> "a";`,
		`"r" -> "b";`,
		`label="Beta \"quoted\""`,
		"!\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q\n%s", want, out)
		}
	}
}

func TestToDOTPinnedCenters(t *testing.T) {
	s := testScene()
	out := ToDOT(s, Options{})

	// Root is centered horizontally at 500px, i.e. 375pt.
	if !strings.Contains(out, `pos="375.0,`) {
		t.Errorf("root should be pinned at its center x:\n%s", out)
	}
}

func TestToDOTUnpinned(t *testing.T) {
	out := ToDOT(testScene(), Options{Unpinned: true, Detailed: true})
	if strings.Contains(out, "pos=") {
		t.Error("unpinned output should not carry positions")
	}
	if !strings.Contains(out, "rankdir=TB;") {
		t.Error("unpinned output should use a top-down rank direction")
	}
	if !strings.Contains(out, `level: 1`) {
		t.Error("detailed labels should include the depth")
	}
}
