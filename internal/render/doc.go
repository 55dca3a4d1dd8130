// Package render draws the operator-facing previews of a crop session.
//
// Previews live in display space: the phase's image fitted to the viewport.
// The rotate phase shows the source (or its edge map) with the selected
// angle's supporting segments, turned by that angle, under an alignment grid.
// The crop phase outlines the active circle, rectangle or freeform selection
// on the rotated image. The save phase shows the final crop.
package render
