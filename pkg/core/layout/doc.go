// Package layout computes canvas-space positions for every node of a mind map.
//
// # Algorithm
//
// [Engine.Layout] runs one pre-order pass over the tree:
//
//   - The root is centered horizontally on the canvas, [WithTopOffset] below
//     the top edge.
//   - The root's children form a horizontal row centered under the root. The
//     row spans (n-1) * horizontal spacing and starts at rootX - span/2, so odd
//     and even child counts center the same way.
//   - Deeper children are stacked in a column that shares their parent's x.
//     Each sibling starts below the previous sibling's whole subtree, so
//     nested columns never overlap.
//
// Every node is estimated exactly once through [estimate.Estimator], which
// keeps the pass O(n). The result is deterministic for a given tree and canvas
// size and is always recomputed from scratch.
//
// # Modes
//
// [ModeTree] yields the computed positions as-is. [ModeFreeDrag] additionally
// keeps a per-node offset set through [Engine.Drag] and applies it on top of
// the computed position, so users can nudge individual nodes while the
// structure stays tree-shaped. Offsets of nodes that leave the tree are
// discarded on the next layout.
//
// An Engine is not safe for concurrent use; the settle package serializes
// access to it.
package layout
