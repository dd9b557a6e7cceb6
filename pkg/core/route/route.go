package route

import (
	"math"

	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// GeometryProvider reports the rendered size of a node. Hosts implement it
// on top of whatever measured the node (a DOM, a text shaper, a terminal).
type GeometryProvider interface {
	RenderedBox(nodeID string) (geom.Size, bool)
}

// SizeMap is a GeometryProvider backed by a map.
type SizeMap map[string]geom.Size

// RenderedBox implements GeometryProvider.
func (m SizeMap) RenderedBox(id string) (geom.Size, bool) {
	s, ok := m[id]
	if !ok || s.Empty() {
		return geom.Size{}, false
	}
	return s, true
}

// ProviderFunc adapts a function to GeometryProvider.
type ProviderFunc func(nodeID string) (geom.Size, bool)

// RenderedBox implements GeometryProvider.
func (f ProviderFunc) RenderedBox(id string) (geom.Size, bool) { return f(id) }

// Connection is one parent to child connector.
type Connection struct {
	ID         string       `json:"id"`
	FromNodeID string       `json:"from"`
	ToNodeID   string       `json:"to"`
	Points     []geom.Point `json:"points"`
}

// ConnectionID returns the id of the connector between two nodes.
func ConnectionID(from, to string) string { return from + "->" + to }

// MidY returns the y coordinate of the horizontal segment.
func (c Connection) MidY() float64 {
	if len(c.Points) < 2 {
		return 0
	}
	return c.Points[1].Y
}

// Report lists connectors omitted from a routing pass.
type Report struct {
	Dropped []*errors.Error
}

// Complete reports whether every edge was routed.
func (r Report) Complete() bool { return len(r.Dropped) == 0 }

// Err returns the dropped connectors as a single error, or nil.
func (r Report) Err() error { return errors.Join(r.Dropped) }

// Router turns positions and sizes into connectors.
type Router struct{}

// New returns a Router.
func New() *Router { return &Router{} }

// Estimate builds phase A connectors from estimated sizes. Edges whose
// endpoints are missing from positions or sizes are skipped.
func (r *Router) Estimate(root *mindmap.Node, positions layout.Positions, sizes layout.Sizes) []Connection {
	conns, _ := r.Route(root, positions, SizeMap(sizes))
	return conns
}

// Route builds phase B connectors from rendered geometry. Coordinates are
// rounded to whole pixels.
func (r *Router) Route(root *mindmap.Node, positions layout.Positions, geometry GeometryProvider) ([]Connection, Report) {
	edges := mindmap.Edges(root)
	conns := make([]Connection, 0, len(edges))
	var report Report

	boxes := make(map[string]geom.Box, len(edges)+1)
	box := func(id string) (geom.Box, bool) {
		if b, ok := boxes[id]; ok {
			return b, true
		}
		p, ok := positions[id]
		if !ok {
			return geom.Box{}, false
		}
		s, ok := geometry.RenderedBox(id)
		if !ok {
			return geom.Box{}, false
		}
		b := geom.NewBox(p.Point(), s)
		boxes[id] = b
		return b, true
	}

	for _, e := range edges {
		parent, ok := box(e.From)
		if !ok {
			report.Dropped = append(report.Dropped, unavailable(e, e.From))
			continue
		}
		child, ok := box(e.To)
		if !ok {
			report.Dropped = append(report.Dropped, unavailable(e, e.To))
			continue
		}
		conns = append(conns, Connection{
			ID:         ConnectionID(e.From, e.To),
			FromNodeID: e.From,
			ToNodeID:   e.To,
			Points:     Path(parent, child),
		})
	}
	return conns, report
}

func unavailable(e mindmap.Edge, missing string) *errors.Error {
	return errors.New(errors.ErrCodeGeometryUnavailable,
		"connection %s dropped: no geometry for %s", ConnectionID(e.From, e.To), missing)
}

// Path returns the four points of the orthogonal connector from parent to
// child, snapped to whole pixels.
func Path(parent, child geom.Box) []geom.Point {
	from := parent.BottomCenter().Round()
	to := child.TopCenter().Round()
	midY := math.Round(from.Y + (to.Y-from.Y)/2)
	return []geom.Point{
		from,
		{X: from.X, Y: midY},
		{X: to.X, Y: midY},
		to,
	}
}
