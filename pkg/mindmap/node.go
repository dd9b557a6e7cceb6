package mindmap

// PlaceholderText is displayed for nodes whose text is empty.
const PlaceholderText = "New idea"

// Node is a single idea in the mind map.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Text     string  `json:"text" yaml:"text"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Label returns the text to display for the node.
func (n *Node) Label() string {
	if n == nil || n.Text == "" {
		return PlaceholderText
	}
	return n.Text
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n == nil || len(n.Children) == 0 }

// Walk visits every node in pre-order together with its depth and parent.
// The root has depth 0 and a nil parent. Returning false from fn skips the
// node's subtree.
func Walk(root *Node, fn func(n, parent *Node, depth int) bool) {
	var visit func(n, parent *Node, depth int)
	visit = func(n, parent *Node, depth int) {
		if n == nil {
			return
		}
		if !fn(n, parent, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, n, depth+1)
		}
	}
	visit(root, nil, 0)
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node, *Node, int) bool {
		n++
		return true
	})
	return n
}

// IDs returns the set of node ids in the tree.
func IDs(root *Node) map[string]struct{} {
	ids := make(map[string]struct{})
	Walk(root, func(n, _ *Node, _ int) bool {
		ids[n.ID] = struct{}{}
		return true
	})
	return ids
}

// Find returns the node with the given id, or nil.
func Find(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n, _ *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Edge is a parent/child pair derived from the tree's adjacency.
type Edge struct {
	From, To string
}

// Edges returns every parent/child edge in pre-order. A single-rooted tree
// with N nodes has exactly N-1 edges.
func Edges(root *Node) []Edge {
	var edges []Edge
	Walk(root, func(n, parent *Node, _ int) bool {
		if parent != nil {
			edges = append(edges, Edge{From: parent.ID, To: n.ID})
		}
		return true
	})
	return edges
}

// Clone returns a deep copy of the tree.
func Clone(root *Node) *Node {
	if root == nil {
		return nil
	}
	out := &Node{ID: root.ID, Text: root.Text}
	if len(root.Children) > 0 {
		out.Children = make([]*Node, len(root.Children))
		for i, c := range root.Children {
			out.Children[i] = Clone(c)
		}
	}
	return out
}
