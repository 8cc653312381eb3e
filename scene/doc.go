// Package scene is the scene graph store: nodes, styles and paints held in
// generational arenas and related by plain ids.
//
// # Ownership
//
// The Store owns every entity. Relations (node parent and children, node
// styles, the style to paint link) are ids, never pointers, so an entity
// can be removed without leaving dangling references: a stale id simply
// fails to resolve.
//
// # Change detection
//
// Every write stamps the affected component with the store's clock. A
// consumer remembers the stamps it last observed and compares them with
// the current ones; nodes touched since the last TakeTouched are listed in
// first-touch order.
//
// # Deletion
//
// DeleteNode is two-phase. The mark phase walks the subtree breadth-first
// and flags nodes, their styles and their paints; marked entities stay
// readable (Node.Deleted reports true) but reject further mutations. Sweep
// frees them once the consumer has observed the deletion.
//
// # Mutations
//
// Collaborators never write entities directly; they submit Mutation
// records. An id that does not resolve yields a *StaleReferenceError and
// the mutation is dropped without affecting the others:
//
//	s := scene.New()
//	id := s.Reserve()
//	err := s.Apply(scene.CreateNode{ID: id, Shape: scene.Star{Points: 5, InnerRatio: 0.5}, Size: compose.Sz(100, 100)})
package scene
