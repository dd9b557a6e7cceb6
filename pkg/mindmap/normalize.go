package mindmap

import (
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/mindcanvas/pkg/errors"
)

// IDFunc generates ids for nodes that arrive without a usable one.
type IDFunc func() string

// NewID is the default IDFunc.
func NewID() string { return uuid.NewString() }

// Normalize returns a copy of the tree that is safe to lay out, along with
// one MALFORMED_INPUT issue per substitution:
//   - a nil root or nil child becomes a placeholder leaf
//   - an empty or invalid id is replaced with a generated one
//   - an id already seen earlier in pre-order is re-issued
//   - empty text is replaced with [PlaceholderText]
//
// The input tree is never modified.
func Normalize(root *Node) (*Node, []*errors.Error) {
	return NormalizeWith(root, NewID)
}

// NormalizeWith is [Normalize] with a custom id generator.
func NormalizeWith(root *Node, newID IDFunc) (*Node, []*errors.Error) {
	if newID == nil {
		newID = NewID
	}
	n := &normalizer{
		newID:  newID,
		seen:   make(map[string]struct{}),
		onPath: make(map[*Node]bool),
	}
	if root == nil {
		n.issue("tree has no root node, using placeholder")
		return n.node(&Node{}), n.issues
	}
	return n.node(root), n.issues
}

type normalizer struct {
	newID  IDFunc
	seen   map[string]struct{}
	onPath map[*Node]bool
	issues []*errors.Error
}

func (n *normalizer) issue(format string, args ...any) {
	n.issues = append(n.issues, errors.New(errors.ErrCodeMalformedInput, format, args...))
}

func (n *normalizer) node(in *Node) *Node {
	out := &Node{ID: in.ID, Text: in.Text}

	switch {
	case out.ID == "":
		out.ID = n.freshID()
		n.issue("node missing id, generated %s", out.ID)
	case errors.ValidateNodeID(out.ID) != nil:
		old := out.ID
		out.ID = n.freshID()
		n.issue("node id %q is invalid, generated %s", old, out.ID)
	default:
		if _, dup := n.seen[out.ID]; dup {
			old := out.ID
			out.ID = n.freshID()
			n.issue("node id %q appears more than once, generated %s", old, out.ID)
		}
	}
	n.seen[out.ID] = struct{}{}

	if strings.TrimSpace(out.Text) == "" {
		out.Text = PlaceholderText
		n.issue("node %s missing text, using placeholder", out.ID)
	}

	if len(in.Children) > 0 {
		out.Children = make([]*Node, 0, len(in.Children))
		for _, c := range in.Children {
			switch {
			case c == nil:
				n.issue("node %s has a null child, using placeholder", out.ID)
				c = &Node{}
			case n.onPath[c]:
				n.issue("node %s is its own ancestor, cutting cycle", c.ID)
				c = &Node{}
			}
			n.onPath[in] = true
			out.Children = append(out.Children, n.node(c))
			delete(n.onPath, in)
		}
	}
	return out
}

func (n *normalizer) freshID() string {
	for {
		id := n.newID()
		if _, taken := n.seen[id]; !taken && id != "" {
			return id
		}
	}
}
