// Package kdb provides the in-memory data model for the key database:
// keys, keysets and the reserved metadata vocabulary used by the
// reconciliation engine.
//
// Key Components:
//
//   - Key: a named, valued, metadata-bearing configuration entry. Names are
//     hierarchical, "/"-separated paths qualified by a namespace prefix
//     (e.g. "user:/app/setting"). A key may simultaneously hold a value and
//     be the ancestor of other keys.
//
//   - KeySet: an insertion-ordered, name-unique collection of keys with
//     exact-name lookup, atomic subtree extraction (Cut) and deep
//     duplication (Dup). Each set owns its keys exclusively - duplication
//     copies every key so mutation of a copy cannot alias the original.
//     This property is what allows the merger to work on a duplicate of
//     the live state without disturbing it.
//
//   - Reserved metadata: all metadata lives under the "meta:/" prefix.
//     Plain names are canonicalized on access, so "order" and "meta:/order"
//     address the same metadatum. The engine's bookkeeping metadata
//     (removal marker "meta:/elektra/removed", array length "meta:/array",
//     sequencing "meta:/order") round-trips through the flatten/build
//     pipeline without colliding with user metadata.
//
// Thread Safety:
//
//	Keys and keysets are not synchronized. Every instance is owned by a
//	single operation for its whole lifetime and never shared across
//	operations.
package kdb
