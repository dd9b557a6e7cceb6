package viewport

import (
	"context"
	"strconv"

	"github.com/matzehuels/mindcanvas/pkg/core/input"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/observability"
)

// Default zoom configuration.
const (
	DefaultZoomMin  = 0.3
	DefaultZoomMax  = 3.0
	DefaultZoomStep = 0.1
	DefaultFitZoom  = 0.8
)

// Config bounds and tunes zooming.
type Config struct {
	ZoomMin  float64 `json:"zoom_min" toml:"zoom_min"`
	ZoomMax  float64 `json:"zoom_max" toml:"zoom_max"`
	ZoomStep float64 `json:"zoom_step" toml:"zoom_step"`
	FitZoom  float64 `json:"fit_zoom" toml:"fit_zoom"`
}

// DefaultConfig returns the default zoom configuration.
func DefaultConfig() Config {
	return Config{
		ZoomMin:  DefaultZoomMin,
		ZoomMax:  DefaultZoomMax,
		ZoomStep: DefaultZoomStep,
		FitZoom:  DefaultFitZoom,
	}
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.ZoomMin == 0 {
		c.ZoomMin = d.ZoomMin
	}
	if c.ZoomMax == 0 {
		c.ZoomMax = d.ZoomMax
	}
	if c.ZoomStep == 0 {
		c.ZoomStep = d.ZoomStep
	}
	if c.FitZoom == 0 {
		c.FitZoom = d.FitZoom
	}
}

// Validate checks that the zoom range is usable.
func (c Config) Validate() error {
	if c.ZoomMin <= 0 || c.ZoomMax < c.ZoomMin {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom range [%g, %g] is invalid", c.ZoomMin, c.ZoomMax)
	}
	if c.ZoomStep <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom step must be positive, got %g", c.ZoomStep)
	}
	if c.FitZoom <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "fit zoom must be positive, got %g", c.FitZoom)
	}
	return nil
}

// State is the viewport transform: screen = canvas*Zoom + Pan.
type State struct {
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
	Zoom float64 `json:"zoom"`
}

// Identity is the initial viewport state.
var Identity = State{Zoom: 1}

// Gesture is the controller's gesture state.
type Gesture int

const (
	Idle Gesture = iota
	Panning
	Pinching
	DraggingNode
)

func (g Gesture) String() string {
	switch g {
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	case DraggingNode:
		return "dragging_node"
	default:
		return "idle"
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnNodeDrag registers the callback for node drags. dx and dy are in
// canvas units.
func WithOnNodeDrag(fn func(id string, dx, dy float64)) Option {
	return func(c *Controller) { c.onNodeDrag = fn }
}

// WithOnChange registers a callback invoked after every viewport change.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller runs the gesture state machine. It is not safe for concurrent
// use; hosts feed it from their single event loop.
type Controller struct {
	cfg        Config
	state      State
	gesture    Gesture
	onNodeDrag func(id string, dx, dy float64)
	onChange   func(State)

	// Panning: pointer minus pan at gesture start.
	offset geom.Point

	// Pinching: distance and zoom at gesture start.
	pinchDist float64
	pinchZoom float64

	// DraggingNode: dragged node and last pointer position.
	dragNode string
	dragLast geom.Point
}

// New creates a Controller in the identity state. Zero config fields take
// their defaults.
func New(cfg Config, opts ...Option) *Controller {
	cfg.SetDefaults()
	c := &Controller{cfg: cfg, state: Identity}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config { return c.cfg }

// State returns the current viewport state.
func (c *Controller) State() State { return c.state }

// Gesture returns the current gesture state.
func (c *Controller) Gesture() Gesture { return c.gesture }

// Handle applies one canonical event and reports whether the viewport state
// changed.
func (c *Controller) Handle(ev input.Event) bool {
	switch ev.Type {
	case input.PanStart:
		if c.gesture != Idle {
			return false
		}
		switch ev.Target.Kind {
		case input.TargetCanvas:
			c.offset = geom.Point{X: ev.X - c.state.PanX, Y: ev.Y - c.state.PanY}
			c.transition(Panning)
		case input.TargetNode:
			c.dragNode = ev.Target.NodeID
			c.dragLast = ev.Point()
			c.transition(DraggingNode)
		}
		return false

	case input.PanMove:
		switch c.gesture {
		case Panning:
			return c.set(State{PanX: ev.X - c.offset.X, PanY: ev.Y - c.offset.Y, Zoom: c.state.Zoom})
		case DraggingNode:
			dx := (ev.X - c.dragLast.X) / c.state.Zoom
			dy := (ev.Y - c.dragLast.Y) / c.state.Zoom
			c.dragLast = ev.Point()
			if c.onNodeDrag != nil && (dx != 0 || dy != 0) {
				c.onNodeDrag(c.dragNode, dx, dy)
			}
		}
		return false

	case input.PanEnd:
		if c.gesture == Panning || c.gesture == DraggingNode {
			c.dragNode = ""
			c.transition(Idle)
		}
		return false

	case input.PinchStart:
		if c.gesture == Pinching {
			return false
		}
		c.pinchDist = ev.Distance
		c.pinchZoom = c.state.Zoom
		c.dragNode = ""
		c.transition(Pinching)
		return false

	case input.PinchMove:
		if c.gesture != Pinching || c.pinchDist <= 0 {
			return false
		}
		return c.setZoom(c.pinchZoom * ev.Distance / c.pinchDist)

	case input.PinchEnd:
		if c.gesture == Pinching {
			c.transition(Idle)
		}
		return false

	case input.ZoomDelta:
		switch {
		case ev.Delta > 0:
			return c.ZoomIn()
		case ev.Delta < 0:
			return c.ZoomOut()
		}
	}
	return false
}

// ZoomIn steps the zoom up, clamped.
func (c *Controller) ZoomIn() bool { return c.setZoom(c.state.Zoom + c.cfg.ZoomStep) }

// ZoomOut steps the zoom down, clamped.
func (c *Controller) ZoomOut() bool { return c.setZoom(c.state.Zoom - c.cfg.ZoomStep) }

// SetZoom sets the zoom, clamped to the configured range.
func (c *Controller) SetZoom(z float64) bool { return c.setZoom(z) }

// PanBy shifts the pan offset by a screen-space delta.
func (c *Controller) PanBy(dx, dy float64) bool {
	return c.set(State{PanX: c.state.PanX + dx, PanY: c.state.PanY + dy, Zoom: c.state.Zoom})
}

// Reset restores the identity state and abandons any gesture.
func (c *Controller) Reset() bool {
	if c.gesture != Idle {
		c.transition(Idle)
	}
	return c.set(Identity)
}

// Restore replaces the viewport state, clamping its zoom.
func (c *Controller) Restore(s State) bool {
	s.Zoom = c.clamp(s.Zoom)
	return c.set(s)
}

// FitToFrame centers the root box in a viewport of the given pixel size at
// the configured fit zoom. Node positions are not touched.
func (c *Controller) FitToFrame(root geom.Box, viewport geom.Size) State {
	z := c.clamp(c.cfg.FitZoom)
	c.set(State{
		PanX: viewport.Width/2 - root.CenterX()*z,
		PanY: viewport.Height/2 - root.CenterY()*z,
		Zoom: z,
	})
	return c.state
}

// FitAll centers the whole tree's bounds in the viewport with a zoom that
// shows all of it, limited to the fit zoom and the configured range.
func (c *Controller) FitAll(bounds geom.Box, viewport geom.Size) State {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return c.FitToFrame(bounds, viewport)
	}
	z := min(viewport.Width/bounds.Width, viewport.Height/bounds.Height) * 0.9
	z = c.clamp(min(z, c.cfg.FitZoom))
	c.set(State{
		PanX: viewport.Width/2 - bounds.CenterX()*z,
		PanY: viewport.Height/2 - bounds.CenterY()*z,
		Zoom: z,
	})
	return c.state
}

// ScreenToCanvas maps a screen point into canvas space.
func (c *Controller) ScreenToCanvas(p geom.Point) geom.Point {
	return c.state.ScreenToCanvas(p)
}

// CanvasToScreen maps a canvas point into screen space.
func (c *Controller) CanvasToScreen(p geom.Point) geom.Point {
	return c.state.CanvasToScreen(p)
}

// CSSTransform returns the state as a CSS transform.
func (c *Controller) CSSTransform() string { return c.state.CSSTransform() }

// SVGTransform returns the state as an SVG transform attribute.
func (c *Controller) SVGTransform() string { return c.state.SVGTransform() }

func (c *Controller) clamp(z float64) float64 {
	return geom.Clamp(z, c.cfg.ZoomMin, c.cfg.ZoomMax)
}

func (c *Controller) setZoom(z float64) bool {
	return c.set(State{PanX: c.state.PanX, PanY: c.state.PanY, Zoom: c.clamp(z)})
}

func (c *Controller) set(s State) bool {
	if s == c.state {
		return false
	}
	zoomed := s.Zoom != c.state.Zoom
	c.state = s
	if zoomed {
		observability.Gesture().OnZoom(context.Background(), s.Zoom)
	}
	if c.onChange != nil {
		c.onChange(s)
	}
	return true
}

func (c *Controller) transition(to Gesture) {
	from := c.gesture
	c.gesture = to
	observability.Gesture().OnTransition(context.Background(), from.String(), to.String())
}

// ScreenToCanvas maps a screen point into canvas space.
func (s State) ScreenToCanvas(p geom.Point) geom.Point {
	z := s.Zoom
	if z == 0 {
		z = 1
	}
	return geom.Point{X: (p.X - s.PanX) / z, Y: (p.Y - s.PanY) / z}
}

// CanvasToScreen maps a canvas point into screen space.
func (s State) CanvasToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*s.Zoom + s.PanX, Y: p.Y*s.Zoom + s.PanY}
}

// CSSTransform formats the state as "translate(Xpx, Ypx) scale(Z)".
func (s State) CSSTransform() string {
	return "translate(" + num(s.PanX) + "px, " + num(s.PanY) + "px) scale(" + num(s.Zoom) + ")"
}

// SVGTransform formats the state as "translate(X Y) scale(Z)".
func (s State) SVGTransform() string {
	return "translate(" + num(s.PanX) + " " + num(s.PanY) + ") scale(" + num(s.Zoom) + ")"
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
