// Package compose is the geometry core of an incremental scene-graph to SVG
// engine for interactive vector design tools.
//
// # Overview
//
// A design document is a scene graph of nodes (rectangles, ellipses, stars,
// polygons, text, vectors, frames and groups) with layered fill, stroke and
// drop-shadow styles. The engine computes each node's outline, derives its
// stroke outlines, mirrors the result into a retained SVG element tree and
// flushes only the minimal set of element changes to a consumer such as a
// browser DOM patcher.
//
// This package holds the shared geometry: Point, Size, Matrix, Path with its
// SVG path-data formatter and parser, curve flattening, and the stroke
// generator StrokeOutline.
//
// # Architecture
//
// The module is organized into:
//   - scene: the scene graph store (nodes, styles, paints, mutations)
//   - outline: one outline generator per shape kind
//   - text: text layout and font collaborators
//   - svgdom: the SVG element tree with per-element change tracking
//   - change: change records, ordering and sinks
//   - engine: the synchronous update pass tying everything together
//
// # Coordinate System
//
// Uses SVG coordinates:
//   - Origin (0,0) at the node's top-left
//   - X increases right
//   - Y increases down
//   - Angles in radians unless a field says degrees
//
// # Logging
//
// compose is silent by default. Call SetLogger to route diagnostics from all
// sub-packages to a *slog.Logger.
package compose

// Version is the current version of the module.
const Version = "0.1.0"
