// Package access decides which actor may read, write or aggregate which records.
//
// A request flows through an ordered pipeline of pure functions:
//
//	Identity (Actor) -> AssignOwner (creates) -> Authorize / Scope -> storage call
//
// Every function takes the resolved Actor as an explicit argument; nothing here reads
// request-scoped or global state, and nothing here touches storage.
package access
