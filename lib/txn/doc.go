// Package txn provides whole-database transactions for reconciliation
// operations: a full snapshot at start and a verbatim two-phase restore
// on rollback. The mount topology partition is restored after ordinary
// configuration so no transient state exists where data lives under a
// deleted mount.
package txn
