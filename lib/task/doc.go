// Package task sequences the engine components into one end-to-end
// reconciliation operation.
//
// A Runner executes a Task as a transaction: snapshot the database,
// configure session recording, ensure mountpoints, build the desired
// keyset from the declarative document, apply removals and order
// reconciliation, three-way merge against the base snapshot and write
// the result. Any failure rolls the database back to the snapshot. In
// dry-run mode nothing is written but the Changed answer is the same as
// a real run would report.
package task
