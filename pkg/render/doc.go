// Package render turns a laid-out mind map into output formats.
//
// # Overview
//
// Rendering works on a [Scene]: the tree, the canvas, node positions and
// sizes, and the routed connectors of one layout generation. A Scene is
// usually built from a settled frame with [FromFrame]:
//
//	frame := settler.Frame()
//	scene := render.FromFrame(frame)
//	svgBytes := svg.Render(scene, svg.WithViewport(state))
//
// Sinks live in subpackages:
//
//   - [svg]: SVG output and the word-wrapping text measurer that acts as
//     the rendering surface for connector settling
//   - [dot]: Graphviz DOT with pinned positions, rendered via go-graphviz
//   - [grid]: a rune raster for terminals
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
//	png, err := render.ToPNG(ctx, svgBytes, 2.0)
//
// [svg]: github.com/matzehuels/mindcanvas/pkg/render/svg
// [dot]: github.com/matzehuels/mindcanvas/pkg/render/dot
// [grid]: github.com/matzehuels/mindcanvas/pkg/render/grid
package render
