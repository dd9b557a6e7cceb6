package input

import (
	"math"

	"github.com/matzehuels/mindcanvas/pkg/geom"
)

// =============================================================================
// Targets
// =============================================================================

// TargetKind classifies what a pointer landed on.
type TargetKind int

const (
	TargetCanvas TargetKind = iota
	TargetNode
	TargetControl
)

func (k TargetKind) String() string {
	switch k {
	case TargetNode:
		return "node"
	case TargetControl:
		return "control"
	default:
		return "canvas"
	}
}

// Target is the surface under a pointer when a gesture starts.
type Target struct {
	Kind   TargetKind `json:"kind"`
	NodeID string     `json:"node_id,omitempty"`
}

// Canvas returns the empty-canvas target.
func Canvas() Target { return Target{Kind: TargetCanvas} }

// Node returns the target for a node surface.
func Node(id string) Target { return Target{Kind: TargetNode, NodeID: id} }

// Control returns the target for an interactive control.
func Control() Target { return Target{Kind: TargetControl} }

// =============================================================================
// Raw device events
// =============================================================================

// MouseKind is the phase of a mouse event.
type MouseKind int

const (
	MouseDown MouseKind = iota
	MouseMove
	MouseUp
	MouseCancel
)

// Button identifies a mouse button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// MouseEvent is a raw mouse event in screen space.
type MouseEvent struct {
	Kind   MouseKind `json:"kind"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Button Button    `json:"button"`
	Target Target    `json:"target"`
}

// TouchKind is the phase of a touch event.
type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
	TouchCancel
)

// Touch is one active contact point.
type Touch struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// TouchEvent is a raw touch event. Touches lists the contacts still down
// after the event.
type TouchEvent struct {
	Kind    TouchKind `json:"kind"`
	Touches []Touch   `json:"touches"`
	Target  Target    `json:"target"`
}

// WheelEvent is a raw wheel event. Negative DeltaY scrolls up.
type WheelEvent struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"delta_y"`
	Ctrl   bool    `json:"ctrl"`
	Meta   bool    `json:"meta"`
}

// =============================================================================
// Canonical events
// =============================================================================

// EventType is a canonical gesture event type.
type EventType int

const (
	PanStart EventType = iota
	PanMove
	PanEnd
	ZoomDelta
	PinchStart
	PinchMove
	PinchEnd
)

var eventNames = [...]string{
	PanStart:   "pan_start",
	PanMove:    "pan_move",
	PanEnd:     "pan_end",
	ZoomDelta:  "zoom_delta",
	PinchStart: "pinch_start",
	PinchMove:  "pinch_move",
	PinchEnd:   "pinch_end",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[t]
}

// Event is a canonical gesture event. X and Y are the pointer (or pinch
// center) in screen space. Delta is +1 to zoom in and -1 to zoom out.
// Distance is the current distance between two touches.
type Event struct {
	Type     EventType
	X, Y     float64
	Delta    float64
	Distance float64
	Target   Target
}

// Point returns the event location.
func (e Event) Point() geom.Point { return geom.Point{X: e.X, Y: e.Y} }

// =============================================================================
// Normalizer
// =============================================================================

// Normalizer maps raw device events to canonical events. It is not safe for
// concurrent use.
type Normalizer struct {
	// WheelRequiresModifier limits wheel zoom to ctrl or cmd wheels.
	WheelRequiresModifier bool

	mouseDown   bool
	touchPan    bool
	pinching    bool
	afterPinch  bool
	pinchTarget Target
}

// NewNormalizer returns a Normalizer.
func NewNormalizer(wheelRequiresModifier bool) *Normalizer {
	return &Normalizer{WheelRequiresModifier: wheelRequiresModifier}
}

// Mouse normalizes a mouse event.
func (n *Normalizer) Mouse(ev MouseEvent) []Event {
	switch ev.Kind {
	case MouseDown:
		if ev.Button != ButtonPrimary || n.mouseDown {
			return nil
		}
		n.mouseDown = true
		return []Event{{Type: PanStart, X: ev.X, Y: ev.Y, Target: ev.Target}}
	case MouseMove:
		if !n.mouseDown {
			return nil
		}
		return []Event{{Type: PanMove, X: ev.X, Y: ev.Y, Target: ev.Target}}
	case MouseUp, MouseCancel:
		if !n.mouseDown || (ev.Kind == MouseUp && ev.Button != ButtonPrimary) {
			return nil
		}
		n.mouseDown = false
		return []Event{{Type: PanEnd, X: ev.X, Y: ev.Y, Target: ev.Target}}
	}
	return nil
}

// Touch normalizes a touch event.
func (n *Normalizer) Touch(ev TouchEvent) []Event {
	touches := ev.Touches
	if ev.Kind == TouchCancel {
		touches = nil
	}

	switch {
	case len(touches) >= 2:
		a, b := touches[0], touches[1]
		cx, cy := (a.X+b.X)/2, (a.Y+b.Y)/2
		d := math.Hypot(b.X-a.X, b.Y-a.Y)
		if !n.pinching {
			n.pinching = true
			n.touchPan = false
			n.pinchTarget = ev.Target
			return []Event{{Type: PinchStart, X: cx, Y: cy, Distance: d, Target: ev.Target}}
		}
		return []Event{{Type: PinchMove, X: cx, Y: cy, Distance: d, Target: n.pinchTarget}}

	case len(touches) == 1:
		t := touches[0]
		if n.pinching {
			n.pinching = false
			n.afterPinch = true
			return []Event{{Type: PinchEnd, X: t.X, Y: t.Y, Target: n.pinchTarget}}
		}
		if n.afterPinch {
			return nil
		}
		if !n.touchPan {
			if ev.Kind != TouchStart {
				return nil
			}
			n.touchPan = true
			return []Event{{Type: PanStart, X: t.X, Y: t.Y, Target: ev.Target}}
		}
		if ev.Kind == TouchMove {
			return []Event{{Type: PanMove, X: t.X, Y: t.Y, Target: ev.Target}}
		}
		return nil

	default:
		var out []Event
		if n.pinching {
			out = append(out, Event{Type: PinchEnd, Target: n.pinchTarget})
		}
		if n.touchPan {
			out = append(out, Event{Type: PanEnd, Target: ev.Target})
		}
		n.pinching, n.touchPan, n.afterPinch = false, false, false
		return out
	}
}

// Wheel normalizes a wheel event into a zoom step.
func (n *Normalizer) Wheel(ev WheelEvent) []Event {
	if ev.DeltaY == 0 {
		return nil
	}
	if n.WheelRequiresModifier && !ev.Ctrl && !ev.Meta {
		return nil
	}
	delta := 1.0
	if ev.DeltaY > 0 {
		delta = -1
	}
	return []Event{{Type: ZoomDelta, X: ev.X, Y: ev.Y, Delta: delta, Target: Canvas()}}
}

// Reset forgets all pointer state.
func (n *Normalizer) Reset() {
	n.mouseDown, n.touchPan, n.pinching, n.afterPinch = false, false, false, false
}
