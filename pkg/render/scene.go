package render

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// Scene is everything a sink needs to draw one layout generation.
type Scene struct {
	Root        *mindmap.Node
	Canvas      geom.Size
	Phase       settle.Phase
	Positions   layout.Positions
	Sizes       layout.Sizes
	Connections []route.Connection
	Dropped     []*errors.Error
}

// FromFrame builds a scene from a settler frame.
func FromFrame(f settle.Frame) Scene {
	return Scene{
		Root:        f.Root,
		Canvas:      f.Canvas,
		Phase:       f.Phase,
		Positions:   f.Positions,
		Sizes:       f.Sizes,
		Connections: f.Connections,
		Dropped:     f.Dropped,
	}
}

// NodeBox is a node ready to draw.
type NodeBox struct {
	ID    string
	Text  string
	Level int
	Box   geom.Box
}

// Nodes returns the drawable nodes, shallowest first and then by id, so
// that deeper boxes paint over their ancestors. Nodes without a position
// or size are skipped.
func (s Scene) Nodes() []NodeBox {
	var out []NodeBox
	mindmap.Walk(s.Root, func(n, _ *mindmap.Node, depth int) bool {
		if b, ok := s.Positions.Box(n.ID, s.Sizes); ok {
			out = append(out, NodeBox{ID: n.ID, Text: n.Label(), Level: depth, Box: b})
		}
		return true
	})
	slices.SortStableFunc(out, func(a, b NodeBox) int {
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Bounds returns the union of all node boxes and connector points.
func (s Scene) Bounds() (geom.Box, bool) {
	b, ok := layout.Bounds(s.Positions, s.Sizes)
	for _, c := range s.Connections {
		for _, p := range c.Points {
			pb := geom.Box{X: p.X, Y: p.Y}
			if !ok {
				b, ok = pb, true
				continue
			}
			b = b.Union(pb)
		}
	}
	return b, ok
}

// Extent returns the drawing size: the canvas, grown to cover the bounds.
func (s Scene) Extent() geom.Size {
	size := s.Canvas
	if b, ok := s.Bounds(); ok {
		size.Width = max(size.Width, b.Right())
		size.Height = max(size.Height, b.Bottom())
	}
	return size
}

type jsonScene struct {
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	Phase       string           `json:"phase"`
	Nodes       []jsonNode       `json:"nodes"`
	Connections []jsonConnection `json:"connections"`
	Dropped     []string         `json:"dropped,omitempty"`
}

type jsonNode struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Level  int     `json:"level"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonConnection struct {
	ID     string       `json:"id"`
	From   string       `json:"from"`
	To     string       `json:"to"`
	Points []geom.Point `json:"points"`
}

// RenderJSON serializes the scene for clients that draw it themselves.
func RenderJSON(s Scene) ([]byte, error) {
	ext := s.Extent()
	out := jsonScene{
		Width:       ext.Width,
		Height:      ext.Height,
		Phase:       s.Phase.String(),
		Nodes:       []jsonNode{},
		Connections: []jsonConnection{},
	}
	for _, n := range s.Nodes() {
		out.Nodes = append(out.Nodes, jsonNode{
			ID: n.ID, Text: n.Text, Level: n.Level,
			X: n.Box.X, Y: n.Box.Y, Width: n.Box.Width, Height: n.Box.Height,
		})
	}
	for _, c := range s.Connections {
		out.Connections = append(out.Connections, jsonConnection{ID: c.ID, From: c.FromNodeID, To: c.ToNodeID, Points: c.Points})
	}
	for _, d := range s.Dropped {
		out.Dropped = append(out.Dropped, d.Error())
	}
	return json.MarshalIndent(out, "", "  ")
}
