// Package estimate predicts node box sizes before anything is rendered.
//
// The first layout pass needs a width and height for every node, but the
// true size of a node depends on font metrics and text wrapping that are only
// known after the host has painted it. [Estimator] closes that gap with a
// character-width model: the label is assumed to be a run of average-width
// glyphs, wrapped at the level's maximum width.
//
// Estimates are intentionally approximate. The connection router replaces
// them with measured geometry once the host reports it.
//
// # Levels
//
// Metrics are chosen by depth:
//
//   - Level 0 (root): largest font, widest cap, tallest minimum box
//   - Level 1 (branch): the row of ideas directly under the root
//   - Level 2 and deeper (leaf): compact boxes stacked in columns
//
// The defaults keep root > branch > leaf in both minimum height and maximum
// width, so very short labels still read as a hierarchy.
package estimate
