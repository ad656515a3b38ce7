package txn

import (
	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store"
)

// --------------------------------------------------------------------------
// Transaction Manager
// --------------------------------------------------------------------------

// Manager snapshots the entire database at operation start and restores
// it verbatim when the operation fails.
type Manager struct {
	store    store.IStore
	dryRun   bool
	snapshot *kdb.KeySet // nil while idle
}

// NewManager creates a transaction manager.
func NewManager(st store.IStore, dryRun bool) *Manager {
	return &Manager{store: st, dryRun: dryRun}
}

// Active reports whether a snapshot is held.
func (m *Manager) Active() bool {
	return m.snapshot != nil
}

// Start reads the entire database into the snapshot. A failed read is
// fatal: without a complete snapshot no transaction is possible.
func (m *Manager) Start() error {
	snapshot, rc, err := m.store.Get("/")
	if err != nil || rc == store.RetError {
		return store.NewErrorf(store.ErrCTransactionFailure,
			"failed to snapshot the database: %v", err)
	}
	m.snapshot = snapshot
	return nil
}

// Rollback restores the snapshot. Without a snapshot or in dry-run mode
// it is a no-op.
//
// The restore happens in two phases. First the ordinary partition is
// written merged with whatever currently exists below the mount
// topology, so data created under mountpoints added by the failed
// operation is detached while their mount entries are still present.
// Only then is the topology partition itself restored. A failure in
// either phase is fatal and unrecoverable.
func (m *Manager) Rollback() error {
	if m.snapshot == nil || m.dryRun {
		return nil
	}

	ordinary := m.snapshot.Dup()
	topology := ordinary.Cut(kdb.MountpointsRoot)

	currentTopology, rc, err := m.store.Get(kdb.MountpointsRoot)
	if err != nil || rc == store.RetError {
		return store.NewErrorf(store.ErrCTransactionFailure,
			"rollback failed reading the mount topology: %v", err)
	}
	ordinary.Append(currentTopology)
	if _, err := m.store.Set(ordinary, "/"); err != nil {
		return store.NewErrorf(store.ErrCTransactionFailure,
			"rollback failed restoring configuration: %v", err)
	}

	if _, err := m.store.Set(topology, kdb.MountpointsRoot); err != nil {
		return store.NewErrorf(store.ErrCTransactionFailure,
			"rollback failed restoring the mount topology: %v", err)
	}

	m.snapshot = nil
	return nil
}
