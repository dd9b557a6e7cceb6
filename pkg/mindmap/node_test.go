package mindmap

import (
	"reflect"
	"testing"
)

func sample() *Node {
	return &Node{ID: "r", Text: "Idea", Children: []*Node{
		{ID: "a", Text: "A", Children: []*Node{
			{ID: "a1", Text: "A1"},
			{ID: "a2", Text: "A2"},
		}},
		{ID: "b", Text: "B"},
	}}
}

func TestWalkPreOrder(t *testing.T) {
	var order []string
	var depths []int
	Walk(sample(), func(n, _ *Node, depth int) bool {
		order = append(order, n.ID)
		depths = append(depths, depth)
		return true
	})

	if want := []string{"r", "a", "a1", "a2", "b"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if want := []int{0, 1, 2, 2, 1}; !reflect.DeepEqual(depths, want) {
		t.Errorf("depths = %v, want %v", depths, want)
	}
}

func TestWalkSkipSubtree(t *testing.T) {
	var order []string
	Walk(sample(), func(n, _ *Node, _ int) bool {
		order = append(order, n.ID)
		return n.ID != "a"
	})
	if want := []string{"r", "a", "b"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestCountAndEdges(t *testing.T) {
	root := sample()
	if got := Count(root); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
	edges := Edges(root)
	if len(edges) != Count(root)-1 {
		t.Errorf("len(Edges()) = %d, want %d", len(edges), Count(root)-1)
	}
	if edges[0] != (Edge{From: "r", To: "a"}) {
		t.Errorf("first edge = %v, want r->a", edges[0])
	}
	if Count(nil) != 0 || len(Edges(nil)) != 0 {
		t.Error("nil tree should have no nodes and no edges")
	}
}

func TestFind(t *testing.T) {
	root := sample()
	if n := Find(root, "a2"); n == nil || n.Text != "A2" {
		t.Errorf("Find(a2) = %v", n)
	}
	if n := Find(root, "missing"); n != nil {
		t.Errorf("Find(missing) = %v, want nil", n)
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := sample()
	c := Clone(root)
	if !reflect.DeepEqual(root, c) {
		t.Fatal("clone differs from original")
	}
	c.Children[0].Text = "changed"
	if root.Children[0].Text != "A" {
		t.Error("mutating clone changed original")
	}
}

func TestLabel(t *testing.T) {
	if got := (&Node{}).Label(); got != PlaceholderText {
		t.Errorf("Label() = %q, want placeholder", got)
	}
	var n *Node
	if got := n.Label(); got != PlaceholderText {
		t.Errorf("nil Label() = %q, want placeholder", got)
	}
	if got := (&Node{Text: "x"}).Label(); got != "x" {
		t.Errorf("Label() = %q, want x", got)
	}
}
