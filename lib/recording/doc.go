// Package recording manages the session-recording feature of the
// database backend: a live diff of all changes made below a chosen root
// since the session was enabled or reset.
//
// The reconciliation engine uses the session in two ways. The session
// diff is the source of the merge base (ReconstructBase derives the
// pre-session snapshot from the current state), and recording can be
// toggled around an operation so the operation's own changes end up in
// the session for later undo.
//
// The Manager never computes diffs itself; that is delegated to the
// backend. In dry-run mode mutations are suppressed but simulated, so
// HasChanged still answers correctly.
package recording
