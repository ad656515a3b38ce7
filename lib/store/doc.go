// Package store defines the abstract interface to the key database
// backend together with the unified error reporting used across the
// reconciliation engine.
//
// The package focuses on:
//   - A unified interface (IStore) for reading and writing keysets scoped
//     to a root key, with tri-state result codes (RetCode)
//   - A structured error system (Error/ErrCode) that classifies failures
//     (read, write, mount, unmount, recording, transaction) so the
//     orchestrator can make informed decisions instead of matching on
//     error strings
//   - The Diff type, the exchange format for "what would change" queries
//     and for session-recording deltas. Modified and removed entries carry
//     the old key state so a pre-change snapshot can be reconstructed from
//     the current state.
//   - Structured, non-fatal Warnings that are accumulated by the backend
//     and surfaced to the caller without ever aborting an operation
//
// Implementations:
//
//	The in-memory implementation lives in the
//	"github.com/ElektraInitiative/kdbtask/lib/store/memstore" package. It
//	backs the test suites and the local CLI. Production deployments are
//	expected to provide an implementation bound to the actual database;
//	the engine only ever talks to IStore.
package store
