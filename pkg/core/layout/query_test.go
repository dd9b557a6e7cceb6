package layout

import (
	"testing"

	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

func TestPrune(t *testing.T) {
	root := node("r", leaf("a"), leaf("b"))
	pos := New().Layout(root, canvas)

	next, _ := mindmap.Delete(root, "b")
	pruned := Prune(pos, next)
	if len(pruned) != 2 {
		t.Fatalf("len = %d, want 2", len(pruned))
	}
	if _, ok := pruned["b"]; ok {
		t.Error("stale entry b was kept")
	}
	if len(pos) != 3 {
		t.Error("Prune() modified its input")
	}
}

func TestNeedsRelayout(t *testing.T) {
	root := node("r", leaf("a"))
	renamed, _ := mindmap.UpdateText(root, "a", "changed")
	grown, _ := mindmap.AddChild(root, "a", leaf("b"))
	other := geom.Size{Width: 500, Height: 500}

	tests := []struct {
		name       string
		next       *mindmap.Node
		nextCanvas geom.Size
		want       bool
	}{
		{"Same", root, canvas, false},
		{"TextEdit", renamed, canvas, true},
		{"NodeAdded", grown, canvas, true},
		{"Resized", root, other, true},
		{"Cleared", nil, canvas, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsRelayout(root, tt.next, canvas, tt.nextCanvas); got != tt.want {
				t.Errorf("NeedsRelayout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeAt(t *testing.T) {
	root := node("r", leaf("a"))
	e := New()
	pos := e.Layout(root, canvas)
	sizes := e.Sizes()

	box, _ := pos.Box("a", sizes)
	if id, ok := NodeAt(pos, sizes, box.Center()); !ok || id != "a" {
		t.Errorf("NodeAt(center of a) = %q, %v", id, ok)
	}
	if _, ok := NodeAt(pos, sizes, geom.Point{X: -100, Y: -100}); ok {
		t.Error("NodeAt(outside) should miss")
	}
}

func TestBounds(t *testing.T) {
	root := node("r", leaf("a"), leaf("b"))
	e := New()
	pos := e.Layout(root, canvas)

	b, ok := Bounds(pos, e.Sizes())
	if !ok {
		t.Fatal("Bounds() found nothing")
	}
	for _, id := range pos.IDs() {
		nb, _ := pos.Box(id, e.Sizes())
		if b.Union(nb) != b {
			t.Errorf("bounds %+v does not contain %s %+v", b, id, nb)
		}
	}
	if _, ok := Bounds(Positions{}, Sizes{}); ok {
		t.Error("Bounds(empty) should report false")
	}
}

func TestMoved(t *testing.T) {
	pos := Positions{"a": {NodeID: "a", X: 1, Y: 2}}
	out := Moved(pos, "a", 3, 4)
	if out["a"].X != 4 || out["a"].Y != 6 {
		t.Errorf("Moved() = %+v", out["a"])
	}
	if pos["a"].X != 1 {
		t.Error("Moved() modified its input")
	}
}
