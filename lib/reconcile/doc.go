// Package reconcile implements the keyset reconciliation algorithms: the
// order-preserving reconciler, the key remover and the three-way merger.
//
// Key Components:
//
//   - ApplyNewKeyset: merges a desired keyset into an existing one in
//     place. Existing keys keep their "order" metadata, genuinely new keys
//     are renumbered past the maximum existing order while preserving
//     their relative order, and keys carrying the reserved deletion marker
//     remove their counterpart by exact name.
//
//   - KeyRemover: detaches individual keys or whole subtrees from a live
//     keyset according to a marker keyset. Recursive markers cut the
//     entire subtree, plain markers remove the exact name only. A marker
//     for a nonexistent key is a no-op, never an error.
//
//   - Merge: reconciles a desired state ("ours") and the live state
//     ("theirs") against their common ancestor ("base"). Keys changed on
//     one side pass through, keys changed differently on both sides are
//     conflicts, resolved by strategy (abort, ours, theirs). Aborting
//     merges report the conflicting key names through ConflictError.
//
// All functions operate on keysets the caller owns exclusively; nothing
// here touches the database.
package reconcile
