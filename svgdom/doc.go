// Package svgdom holds the retained SVG element tree mirrored from the
// scene graph, together with the per-element change tracking that turns
// tree edits into change records.
//
// Children are kept in document order: the last child paints on top. An
// element's position key is its depth and its index counted from the last
// child, which matches the scene graph's convention where index 0 is the
// topmost node.
//
// Edits coalesce within a pass. Each attribute and style key remembers the
// value it had when the pass started; Drain compares against that value, so
// any number of writes produce at most one record per key, and none when
// the final value equals the starting one. Elements created during the pass
// are reported as one ElementCreated record carrying their state at drain
// time.
//
// Calls that would corrupt the tree, such as appending to an element that
// was never created, are ignored and logged at Error level. Trees built
// with WithStrictInvariants panic instead.
package svgdom
