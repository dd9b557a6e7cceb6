// Package input collapses mouse, touch and wheel events into one small set
// of canonical gesture events.
//
// Hosts forward raw device events to a [Normalizer]; it tracks which
// pointers are down and emits [Event] values of seven types:
//
//	PanStart  PanMove  PanEnd
//	PinchStart  PinchMove  PinchEnd
//	ZoomDelta
//
// Every Event carries the [Target] the gesture started on (empty canvas, a
// node, or an interactive control) so the viewport controller can decide
// between panning and dragging a node without querying the host.
//
// Mouse buttons other than the primary one are ignored. A second touch
// point turns any single-finger pan into a pinch; lifting back to one
// finger ends the pinch without resuming the pan, so the view does not jump.
package input
