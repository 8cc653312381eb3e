// Package engine runs the update pass that keeps an SVG element tree in
// sync with a scene graph.
//
// One call to Engine.Update is one pass:
//
//  1. apply the mutation batch to the scene store, dropping stale or
//     invalid mutations
//  2. walk the touched nodes breadth-first, pushing the styles of every
//     node and the children of every resized container
//  3. regenerate fill and stroke outlines for nodes whose shape or size
//     changed
//  4. update the node's element structure, then sibling order, then
//     remove deleted nodes and sweep the store
//  5. drain the element tree into the change queue and flush one batch to
//     the sink
//
// Every node with geometry, and every container, is mirrored by a fixed
// group of elements created the first time it is needed:
//
//	<g transform opacity display>        wrapper
//	  <g filter>                          body
//	    <g> <path/>... </g>               fills, one path per fill style
//	    <g> <path/>... </g>               strokes, one path per stroke style
//	  </g>
//	  <g clip-path> wrappers... </g>      children, containers only
//	</g>
//
// Gradients, image patterns, drop-shadow filters and frame clip paths live
// in <defs>, one level above anything that references them.
package engine
