// Package stroke provides the stroke expansion used to derive stroke
// outlines from fill outlines.
//
// # Algorithm Overview
//
// The input is a set of flattened subpaths (polylines). For every vertex
// the expander emits points on two parallel offset paths:
//   - Forward path: offset by -width/2 along the left normal
//   - Backward path: offset by +width/2 along the left normal
//
// Closed subpaths yield two rings (forward, reversed backward) whose
// opposite windings leave only the band between them filled under the
// nonzero rule. Open subpaths are joined into one ring through their caps.
//
// # Line Joins
//
// On the outer side of a corner the expander emits either a miter point
// (LineJoinMiter, bounded by the miter limit) or two bevel points. The
// inner side always passes through the vertex itself, which keeps the
// outline correct for very short segments.
//
// # Usage
//
//	e := stroke.NewExpander(stroke.Style{Width: 2, MiterLimit: 4})
//	rings := e.Expand([]stroke.Polyline{{
//	    Points: []stroke.Point{{0, 0}, {100, 0}, {100, 100}},
//	    Closed: true,
//	}})
//
// Expansion is deterministic: the same input always produces the same
// contours, point for point.
package stroke
