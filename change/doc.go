// Package change defines the diff records flushed by the engine, the queue
// that orders them once per update pass, and the sinks that deliver them.
//
// # Ordering
//
// Records carry the position key of the element they originate from: its
// hierarchy level (depth in the element tree) and its child index, counted
// from the last DOM child, so index 0 paints on top. Queue.Drain sorts by
// level ascending, creations first within a level, then child index
// descending. Appending in that order rebuilds every sibling list in paint
// order. ChildrenReordered records sit one level below their parent with
// index -1 and therefore follow every append at that level. Deletions are
// flushed last so that elements moved out of a deleted subtree are already
// in place when the subtree goes away.
//
// Consumers must treat ElementDeleted for an element that is no longer
// present as a no-op: an element moved into a deleted subtree during the
// same pass is reported on its own, and on the consumer side it may
// already have gone with an ancestor.
//
// # Sinks
//
// A Sink receives one Batch per pass. Callback calls a function in
// process, JSONLines writes an envelope per line, Replica applies batches
// to an in-memory mirror and rejects ordering violations, and WebSocket
// broadcasts to connected DOM patchers.
package change
