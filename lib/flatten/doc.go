// Package flatten turns nested declarative configuration documents into
// flat, addressable keysets.
//
// The package works in two stages:
//
//   - Flatten walks a document tree (an explicit sum type over scalars,
//     order-preserving mappings and sequences, decoded from YAML or JSON)
//     and produces an ordered mapping from fully qualified key name to a
//     flat descriptor holding value, path-qualified metadata and a removal
//     flag. Sequences below a path are directive lists: value, remove,
//     meta, keys (descendants of a leaf) and array (synthetic #0, #1, ...
//     indices with "array" length bookkeeping).
//
//   - Build converts the flattened mapping into a kdb.KeySet, optionally
//     attaching sequential "order" metadata reflecting the input sequence.
//     Removal flags become the reserved deletion marker
//     ("meta:/elektra/removed"), user metadata is stored under the
//     reserved "meta:/" prefix.
//
// Traversal order is preserved end to end: the keyset iterates in the
// same order the author wrote the document, which is later the basis for
// order-preserving reconciliation.
package flatten
