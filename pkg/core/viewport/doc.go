// Package viewport owns the pan offset and zoom factor of a mind map canvas.
//
// A [Controller] consumes canonical [input.Event] values and runs the
// gesture state machine:
//
//	Idle ──PanStart(canvas)──▶ Panning ──PanEnd──▶ Idle
//	Idle ──PanStart(node)────▶ DraggingNode ──PanEnd──▶ Idle
//	Idle | Panning | DraggingNode ──PinchStart──▶ Pinching ──PinchEnd──▶ Idle
//
// ZoomDelta events step the zoom in any state without changing it.
// A pointer that lands on a node never pans the canvas; its movement is
// reported through [WithOnNodeDrag] in canvas units instead. Pointers on
// interactive controls are ignored entirely.
//
// Zoom is always clamped to the configured range; pan is unconstrained.
// Pan and zoom changes never touch node positions, so hosts re-apply the
// transform from [Controller.CSSTransform] or [Controller.SVGTransform]
// without re-running layout.
package viewport
