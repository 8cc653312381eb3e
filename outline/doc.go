// Package outline computes the fill outline of a node from its shape
// parameters and size.
//
// Every generator is a pure function: identical inputs produce identical
// paths, element for element. A nil path means the shape has no geometry
// (fewer than three points, zero width or height, nothing to lay out);
// callers treat it as "remove whatever was rendered", never as an error.
//
// Generate dispatches over the closed set of scene shapes:
//
//	p := outline.Generate(scene.Star{Points: 5, InnerRatio: 0.5}, compose.Sz(100, 100), nil)
//
// Text is delegated to a TextLayouter; a nil layouter yields no outline.
package outline
