// Package dot emits Graphviz DOT for a laid-out mind map and renders it
// with go-graphviz.
//
// Node positions from the layout engine are pinned (pos="x,y!") so the
// neato engine reproduces the mind map's own geometry instead of
// computing a new one. The plain DOT text is also a useful export for
// external tools:
//
//	text := dot.ToDOT(scene, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, text)
package dot
