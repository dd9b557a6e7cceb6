package mindmap

// EditFunc receives the replacement value of an edited node. A nil node
// signals that the node was deleted.
type EditFunc func(updated *Node)

// Apply folds an edit callback value back into the tree: a nil updated node
// deletes id, any other value replaces the node's text and children. The
// replacement keeps id so the node set identity is preserved. It returns the
// new root and whether id was found.
func Apply(root *Node, id string, updated *Node) (*Node, bool) {
	if updated == nil {
		return Delete(root, id)
	}
	return replace(root, id, func(old *Node) *Node {
		return &Node{ID: old.ID, Text: updated.Text, Children: updated.Children}
	})
}

// UpdateText returns a tree where node id carries the new text.
func UpdateText(root *Node, id, text string) (*Node, bool) {
	return replace(root, id, func(old *Node) *Node {
		return &Node{ID: old.ID, Text: text, Children: old.Children}
	})
}

// AddChild returns a tree where child is appended to parentID's children.
func AddChild(root *Node, parentID string, child *Node) (*Node, bool) {
	if child == nil {
		return root, false
	}
	return replace(root, parentID, func(old *Node) *Node {
		children := make([]*Node, len(old.Children), len(old.Children)+1)
		copy(children, old.Children)
		return &Node{ID: old.ID, Text: old.Text, Children: append(children, child)}
	})
}

// Delete returns a tree without node id and its subtree. Deleting the root
// yields a nil tree.
func Delete(root *Node, id string) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.ID == id {
		return nil, true
	}
	for i, c := range root.Children {
		next, ok := Delete(c, id)
		if !ok {
			continue
		}
		children := make([]*Node, 0, len(root.Children))
		children = append(children, root.Children[:i]...)
		if next != nil {
			children = append(children, next)
		}
		children = append(children, root.Children[i+1:]...)
		return &Node{ID: root.ID, Text: root.Text, Children: children}, true
	}
	return root, false
}

// replace rebuilds the path from root to id, sharing every untouched subtree.
func replace(root *Node, id string, fn func(old *Node) *Node) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.ID == id {
		return fn(root), true
	}
	for i, c := range root.Children {
		next, ok := replace(c, id, fn)
		if !ok {
			continue
		}
		children := make([]*Node, len(root.Children))
		copy(children, root.Children)
		children[i] = next
		return &Node{ID: root.ID, Text: root.Text, Children: children}, true
	}
	return root, false
}

// Editor emits replacement node values for a host-owned tree. The host
// folds them back with [Apply].
type Editor struct {
	OnEdit EditFunc
}

// Commit emits the replacement value for a node.
func (e Editor) Commit(updated *Node) {
	if e.OnEdit != nil && updated != nil {
		e.OnEdit(Clone(updated))
	}
}

// Remove emits the deletion signal.
func (e Editor) Remove() {
	if e.OnEdit != nil {
		e.OnEdit(nil)
	}
}
