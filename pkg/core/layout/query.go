package layout

import (
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// Prune returns a copy of positions without entries for nodes that are no
// longer in root. Routing must only ever see pruned positions.
func Prune(positions Positions, root *mindmap.Node) Positions {
	ids := mindmap.IDs(root)
	out := make(Positions, len(ids))
	for id, p := range positions {
		if _, ok := ids[id]; ok {
			out[id] = p
		}
	}
	return out
}

// NeedsRelayout reports whether moving from prev to next requires a full
// layout. Trees are replaced rather than mutated, so any new tree identity,
// node count or canvas size qualifies.
func NeedsRelayout(prev, next *mindmap.Node, prevCanvas, nextCanvas geom.Size) bool {
	return prevCanvas != nextCanvas || prev != next || mindmap.Count(prev) != mindmap.Count(next)
}

// NodeAt returns the node whose box contains p. When boxes overlap the
// deepest node wins, ties broken by id.
func NodeAt(positions Positions, sizes Sizes, p geom.Point) (string, bool) {
	var (
		hit   string
		level = -1
	)
	for id, pos := range positions {
		box, ok := positions.Box(id, sizes)
		if !ok || !box.Contains(p) {
			continue
		}
		if pos.Level > level || (pos.Level == level && id < hit) {
			hit, level = id, pos.Level
		}
	}
	return hit, level >= 0
}

// Bounds returns the box enclosing every node with a known size.
func Bounds(positions Positions, sizes Sizes) (geom.Box, bool) {
	var (
		out   geom.Box
		found bool
	)
	for id := range positions {
		box, ok := positions.Box(id, sizes)
		if !ok {
			continue
		}
		if !found {
			out, found = box, true
			continue
		}
		out = out.Union(box)
	}
	return out, found
}

// Moved returns a copy of positions with node id shifted by (dx, dy).
func Moved(positions Positions, id string, dx, dy float64) Positions {
	out := positions.Clone()
	if p, ok := out[id]; ok {
		p.X += dx
		p.Y += dy
		out[id] = p
	}
	return out
}
