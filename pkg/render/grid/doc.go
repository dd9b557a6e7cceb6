// Package grid rasterizes a mind map scene onto a grid of terminal cells.
//
// The scene is first mapped through a viewport (pan and zoom), then each
// cell covers a fixed number of screen pixels. Connectors become
// box-drawing lines and nodes become rounded frames holding their
// wrapped label. Each cell remembers what it shows so a terminal UI can
// style it:
//
//	g := grid.Rasterize(scene, state, 120, 40)
//	for y := range g.Rows() { ... g.At(x, y).Kind ... }
package grid
