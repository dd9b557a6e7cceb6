// Package mindmap defines the node tree rendered by mindcanvas and the
// operations that turn untrusted payloads into a tree the layout engine can
// consume.
//
// # Tree Shape
//
// A mind map is a single-rooted ordered tree:
//
//	{
//	  "id": "r",
//	  "text": "Idea",
//	  "children": [{"id": "a", "text": "First"}, {"id": "b", "text": "Second"}]
//	}
//
// Children order is significant: it is the order siblings are laid out in.
//
// # Immutability
//
// Trees are treated as immutable once handed to the engine. Every edit
// ([UpdateText], [AddChild], [Delete], [Apply]) returns a new root that
// shares unchanged subtrees with the old one, so a layout pass never observes
// a half-updated tree.
//
// # Malformed Input
//
// [Normalize] substitutes safe defaults for nodes missing an id or text and
// re-issues duplicated ids. It never fails; each substitution is reported as
// a MALFORMED_INPUT issue. Structural problems (for example a "children"
// field that is not an array) are rejected earlier by [ReadTree], which
// validates payloads against an embedded JSON schema.
package mindmap
