// Package route computes orthogonal connectors between parent and child boxes.
//
// Every connector is a three-segment path: a vertical drop from the parent's
// bottom-center to a shared mid line, a horizontal run to the child's x, and
// a vertical drop onto the child's top-center. When parent and child share
// an x the horizontal run has zero length and the path is a straight line.
//
// Routing happens twice per layout:
//
//   - [Router.Estimate] (phase A) uses the estimated sizes from the layout
//     engine so the first frame always has connectors.
//   - [Router.Route] (phase B) asks a [GeometryProvider] for each node's
//     rendered size and snaps every coordinate to whole pixels. Connectors
//     whose endpoints have no geometry yet are dropped and listed in the
//     [Report] so the caller can retry on the next settling cycle.
//
// Edges are derived from the tree's children only; the router never invents
// or keeps edges of its own.
package route
