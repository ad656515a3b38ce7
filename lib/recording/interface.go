package recording

import (
	"github.com/ElektraInitiative/kdbtask/lib/store"
)

// IRecordingBackend is the session-recording facility of the database
// backend. The backend owns the diff computation; the manager only
// toggles and queries it.
type IRecordingBackend interface {
	// Status reports whether recording is active and the key below which
	// changes are tracked.
	Status() (active bool, root string, err error)
	// GetDiff returns the changes accumulated since the session started
	// or was last reset.
	GetDiff() (store.Diff, error)
	// Enable turns recording on below root.
	Enable(root string) error
	// Disable turns recording off, keeping the accumulated session.
	Disable() error
	// Reset discards the accumulated session.
	Reset() error
}
