package layout

import (
	"slices"

	"github.com/matzehuels/mindcanvas/pkg/core/estimate"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// Default spacing constants, in canvas pixels.
const (
	DefaultHorizontalSpacing = 250.0
	DefaultVerticalSpacing   = 40.0
	DefaultTopOffset         = 80.0
)

// Mode selects how computed positions are post-processed.
type Mode int

const (
	// ModeTree uses the computed positions unchanged.
	ModeTree Mode = iota
	// ModeFreeDrag applies user drag offsets on top of the computed positions.
	ModeFreeDrag
)

func (m Mode) String() string {
	switch m {
	case ModeFreeDrag:
		return "free-drag"
	default:
		return "tree"
	}
}

// ParseMode maps "tree" and "free-drag" to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "tree", "":
		return ModeTree, true
	case "free-drag", "freedrag", "free":
		return ModeFreeDrag, true
	}
	return ModeTree, false
}

// Position is the top-left anchor of a node box in canvas space.
type Position struct {
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Level  int     `json:"level"`
}

// Point returns the anchor as a point.
func (p Position) Point() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

// Positions maps node ids to their positions.
type Positions map[string]Position

// Sizes maps node ids to box sizes.
type Sizes map[string]geom.Size

// Box returns the canvas box of a node, if both its position and size are known.
func (p Positions) Box(id string, sizes Sizes) (geom.Box, bool) {
	pos, ok := p[id]
	if !ok {
		return geom.Box{}, false
	}
	s, ok := sizes[id]
	if !ok {
		return geom.Box{}, false
	}
	return geom.NewBox(pos.Point(), s), true
}

// Clone returns a copy of the map.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// IDs returns the node ids in sorted order.
func (p Positions) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Option configures an Engine.
type Option func(*Engine)

// WithEstimator sets the dimension estimator (default [estimate.New]).
func WithEstimator(est *estimate.Estimator) Option {
	return func(e *Engine) {
		if est != nil {
			e.estimator = est
		}
	}
}

// WithHorizontalSpacing sets the distance between root children (default 250).
func WithHorizontalSpacing(v float64) Option {
	return func(e *Engine) { e.hSpacing = v }
}

// WithVerticalSpacing sets the gap between a node and the next row or
// sibling below it (default 40).
func WithVerticalSpacing(v float64) Option {
	return func(e *Engine) { e.vSpacing = v }
}

// WithTopOffset sets the root's y coordinate (default 80).
func WithTopOffset(v float64) Option {
	return func(e *Engine) { e.topOffset = v }
}

// WithMode sets the layout mode (default [ModeTree]).
func WithMode(m Mode) Option {
	return func(e *Engine) { e.mode = m }
}

// Engine lays out mind map trees.
type Engine struct {
	estimator *estimate.Estimator
	hSpacing  float64
	vSpacing  float64
	topOffset float64
	mode      Mode

	offsets map[string]geom.Point
	sizes   Sizes
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		estimator: estimate.New(),
		hSpacing:  DefaultHorizontalSpacing,
		vSpacing:  DefaultVerticalSpacing,
		topOffset: DefaultTopOffset,
		offsets:   make(map[string]geom.Point),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the engine's layout mode.
func (e *Engine) Mode() Mode { return e.mode }

// Estimator returns the engine's dimension estimator.
func (e *Engine) Estimator() *estimate.Estimator { return e.estimator }

// Layout computes a position for every node of root on a canvas of the given
// size. The tree is expected to be normalized; with duplicate ids the later
// node wins. A nil root yields an empty map.
func (e *Engine) Layout(root *mindmap.Node, canvas geom.Size) Positions {
	n := mindmap.Count(root)
	pos := make(Positions, n)
	e.sizes = make(Sizes, n)
	if root == nil {
		clear(e.offsets)
		return pos
	}

	rs := e.measure(root, 0)
	e.place(root, Position{
		NodeID: root.ID,
		X:      canvas.Width/2 - rs.Width/2,
		Y:      e.topOffset,
		Level:  0,
	}, pos)

	for id := range e.offsets {
		if _, ok := pos[id]; !ok {
			delete(e.offsets, id)
		}
	}
	if e.mode == ModeFreeDrag {
		for id, off := range e.offsets {
			p := pos[id]
			p.X += off.X
			p.Y += off.Y
			pos[id] = p
		}
	}
	return pos
}

// Sizes returns the estimated box sizes of the last Layout call.
func (e *Engine) Sizes() Sizes { return e.sizes }

// Drag records a user offset for a node. It reports false outside
// [ModeFreeDrag], where positions are fixed.
func (e *Engine) Drag(id string, dx, dy float64) bool {
	if e.mode != ModeFreeDrag {
		return false
	}
	off := e.offsets[id]
	off.X += dx
	off.Y += dy
	e.offsets[id] = off
	return true
}

// Offset returns the accumulated drag offset of a node.
func (e *Engine) Offset(id string) geom.Point { return e.offsets[id] }

// ResetOffsets discards all drag offsets.
func (e *Engine) ResetOffsets() { clear(e.offsets) }

func (e *Engine) measure(n *mindmap.Node, level int) geom.Size {
	s := e.estimator.Estimate(n.Text, level)
	e.sizes[n.ID] = s
	return s
}

// place records p for n, lays out n's children and returns the bottom edge
// of n's subtree.
func (e *Engine) place(n *mindmap.Node, p Position, pos Positions) float64 {
	pos[n.ID] = p
	size := e.sizes[n.ID]
	bottom := p.Y + size.Height

	kids := make([]*mindmap.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c != nil {
			kids = append(kids, c)
		}
	}
	if len(kids) == 0 {
		return bottom
	}

	rowY := p.Y + size.Height + e.vSpacing
	level := p.Level + 1

	if p.Level == 0 {
		span := float64(len(kids)-1) * e.hSpacing
		startX := p.X - span/2
		for i, c := range kids {
			e.measure(c, level)
			b := e.place(c, Position{NodeID: c.ID, X: startX + float64(i)*e.hSpacing, Y: rowY, Level: level}, pos)
			bottom = max(bottom, b)
		}
		return bottom
	}

	y := rowY
	for _, c := range kids {
		e.measure(c, level)
		b := e.place(c, Position{NodeID: c.ID, X: p.X, Y: y, Level: level}, pos)
		bottom = max(bottom, b)
		y = b + e.vSpacing
	}
	return bottom
}
