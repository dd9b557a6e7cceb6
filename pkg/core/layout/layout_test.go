package layout

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

var canvas = geom.Size{Width: 1000, Height: 800}

func leaf(id string) *mindmap.Node { return &mindmap.Node{ID: id, Text: id} }

func node(id string, kids ...*mindmap.Node) *mindmap.Node {
	return &mindmap.Node{ID: id, Text: id, Children: kids}
}

// randomTree builds a tree of n nodes with a fixed seed.
func randomTree(seed uint64, n int) *mindmap.Node {
	r := rand.New(rand.NewPCG(seed, seed))
	nodes := []*mindmap.Node{{ID: "n0", Text: "root"}}
	for i := 1; i < n; i++ {
		parent := nodes[r.IntN(len(nodes))]
		c := &mindmap.Node{ID: fmt.Sprintf("n%d", i), Text: fmt.Sprintf("idea %d", i)}
		parent.Children = append(parent.Children, c)
		nodes = append(nodes, c)
	}
	return nodes[0]
}

func TestLayoutRootOnly(t *testing.T) {
	pos := New().Layout(&mindmap.Node{ID: "r", Text: "Idea"}, canvas)
	if len(pos) != 1 {
		t.Fatalf("len = %d, want 1", len(pos))
	}
	want := Position{NodeID: "r", X: 440, Y: DefaultTopOffset, Level: 0}
	if pos["r"] != want {
		t.Errorf("root = %+v, want %+v", pos["r"], want)
	}
}

func TestLayoutRootChildrenRow(t *testing.T) {
	root := &mindmap.Node{ID: "r", Text: "Idea", Children: []*mindmap.Node{leaf("a"), leaf("b"), leaf("c")}}
	e := New()
	pos := e.Layout(root, canvas)

	r := pos["r"]
	rowY := r.Y + e.Sizes()["r"].Height + DefaultVerticalSpacing
	if pos["b"].X != r.X {
		t.Errorf("b.X = %v, want root x %v", pos["b"].X, r.X)
	}
	if pos["a"].X != pos["b"].X-DefaultHorizontalSpacing {
		t.Errorf("a.X = %v, want %v", pos["a"].X, pos["b"].X-DefaultHorizontalSpacing)
	}
	if pos["c"].X != pos["b"].X+DefaultHorizontalSpacing {
		t.Errorf("c.X = %v, want %v", pos["c"].X, pos["b"].X+DefaultHorizontalSpacing)
	}
	for _, id := range []string{"a", "b", "c"} {
		if pos[id].Y != rowY || pos[id].Level != 1 {
			t.Errorf("%s = %+v, want y %v level 1", id, pos[id], rowY)
		}
	}
}

func TestLayoutRowCentering(t *testing.T) {
	for k := 1; k <= 6; k++ {
		t.Run(fmt.Sprintf("children=%d", k), func(t *testing.T) {
			root := &mindmap.Node{ID: "r", Text: "Idea"}
			for i := range k {
				root.Children = append(root.Children, leaf(fmt.Sprintf("c%d", i)))
			}
			pos := New().Layout(root, canvas)

			var left, right float64
			for _, c := range root.Children {
				d := pos[c.ID].X - pos["r"].X
				if d < 0 {
					left += -d
				} else {
					right += d
				}
			}
			if left != right {
				t.Errorf("left offsets %v != right offsets %v", left, right)
			}
		})
	}
}

func TestLayoutChain(t *testing.T) {
	root := node("r", node("x", node("y", leaf("z"))))
	e := New()
	pos := e.Layout(root, canvas)
	sizes := e.Sizes()

	ids := []string{"r", "x", "y", "z"}
	for _, id := range ids[1:] {
		if pos[id].X != pos["r"].X {
			t.Errorf("%s.X = %v, want %v", id, pos[id].X, pos["r"].X)
		}
	}
	for i := 1; i < len(ids); i++ {
		prev, cur := ids[i-1], ids[i]
		want := pos[prev].Y + sizes[prev].Height + DefaultVerticalSpacing
		if pos[cur].Y != want {
			t.Errorf("%s.Y = %v, want %v", cur, pos[cur].Y, want)
		}
		if pos[cur].Level != i {
			t.Errorf("%s.Level = %d, want %d", cur, pos[cur].Level, i)
		}
	}
}

func TestLayoutColumnsDoNotOverlap(t *testing.T) {
	root := node("r", node("a", node("a1", leaf("a11"), leaf("a12")), leaf("a2")))
	e := New()
	pos := e.Layout(root, canvas)
	sizes := e.Sizes()

	a12Bottom := pos["a12"].Y + sizes["a12"].Height
	if want := a12Bottom + DefaultVerticalSpacing; pos["a2"].Y != want {
		t.Errorf("a2.Y = %v, want %v (below a1's subtree)", pos["a2"].Y, want)
	}
	if pos["a11"].Y != pos["a1"].Y+sizes["a1"].Height+DefaultVerticalSpacing {
		t.Errorf("a11 should sit directly below a1")
	}
}

func TestLayoutProperties(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		n := int(seed)*7 + 1
		root := randomTree(seed, n)
		e := New()
		first := e.Layout(root, canvas)

		if len(first) != n {
			t.Fatalf("seed %d: positions = %d, want %d", seed, len(first), n)
		}
		if len(e.Sizes()) != n {
			t.Fatalf("seed %d: sizes = %d, want %d", seed, len(e.Sizes()), n)
		}
		for id, p := range first {
			if p.NodeID != id {
				t.Fatalf("seed %d: key %s holds %s", seed, id, p.NodeID)
			}
		}
		second := e.Layout(root, canvas)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("seed %d: layout is not idempotent", seed)
		}
	}
}

func TestLayoutNil(t *testing.T) {
	if pos := New().Layout(nil, canvas); len(pos) != 0 {
		t.Errorf("Layout(nil) = %v, want empty", pos)
	}
}

func TestLayoutOptions(t *testing.T) {
	root := node("r", leaf("a"), leaf("b"))
	pos := New(
		WithHorizontalSpacing(100),
		WithVerticalSpacing(10),
		WithTopOffset(0),
	).Layout(root, canvas)

	if pos["r"].Y != 0 {
		t.Errorf("root y = %v, want 0", pos["r"].Y)
	}
	if d := pos["b"].X - pos["a"].X; d != 100 {
		t.Errorf("spacing = %v, want 100", d)
	}

	// Level-1 columns stay on the fixed spacing whatever their width.
	wide := node("r", node("a", leaf("a much wider label than the spacing")), leaf("b"), leaf("c"))
	pos = New(WithHorizontalSpacing(100)).Layout(wide, canvas)
	if d := pos["c"].X - pos["a"].X; d != 200 {
		t.Errorf("row span = %v, want 200", d)
	}
}

func TestFreeDrag(t *testing.T) {
	root := node("r", leaf("a"), leaf("b"))

	fixed := New()
	if fixed.Drag("a", 10, 10) {
		t.Error("Drag() should be rejected in tree mode")
	}

	e := New(WithMode(ModeFreeDrag))
	base := e.Layout(root, canvas)
	if !e.Drag("a", 15, -5) || !e.Drag("a", 5, 0) {
		t.Fatal("Drag() rejected in free-drag mode")
	}
	moved := e.Layout(root, canvas)
	if moved["a"].X != base["a"].X+20 || moved["a"].Y != base["a"].Y-5 {
		t.Errorf("a = %+v, want offset (20,-5) from %+v", moved["a"], base["a"])
	}
	if moved["b"] != base["b"] {
		t.Error("undragged node moved")
	}

	pruned, _ := mindmap.Delete(root, "a")
	e.Layout(pruned, canvas)
	if e.Offset("a") != (geom.Point{}) {
		t.Error("offset of removed node should be discarded")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"tree": ModeTree, "": ModeTree, "free-drag": ModeFreeDrag} {
		got, ok := ParseMode(in)
		if !ok || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseMode("force"); ok {
		t.Error("ParseMode(force) should fail")
	}
	if ModeFreeDrag.String() != "free-drag" {
		t.Errorf("String() = %s", ModeFreeDrag)
	}
}
