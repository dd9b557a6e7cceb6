// Package svg renders mind map scenes as SVG and measures labels the way
// the SVG output lays them out.
//
// The [Measurer] is the rendering surface for connector settling: it wraps
// each label on word boundaries with per-glyph advances and reports the
// resulting box sizes. Its [Measurement] implements
// [route.GeometryProvider], so a settler can be completed with the exact
// sizes this package will draw:
//
//	m := svg.NewMeasurer(est).Measure(frame.Root)
//	frame, _ = settler.Rendered(m)
//	out := svg.Render(render.FromFrame(frame), svg.WithMeasurement(m))
//
// [route.GeometryProvider]: github.com/matzehuels/mindcanvas/pkg/core/route.GeometryProvider
package svg
