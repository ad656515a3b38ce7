package recording

import (
	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store"
)

// --------------------------------------------------------------------------
// State
// --------------------------------------------------------------------------

// State is a snapshot of the recording session: whether it is active,
// the key below which it runs and whether it has accumulated changes.
type State struct {
	Active  bool
	Root    string
	HasDiff bool
}

// --------------------------------------------------------------------------
// Recording Manager
// --------------------------------------------------------------------------

// Manager drives the session-recording feature of the backend for one
// operation. In dry-run mode all state-mutating operations are no-ops on
// the backend but still track what would change, so HasChanged reports
// the same answer as a real run.
type Manager struct {
	backend IRecordingBackend
	dryRun  bool

	statusQuo State // state at GetStatusQuo time
	would     State // state after the requested mutations
	discarded bool  // a reset threw away a non-empty session
}

// NewManager creates a recording manager over the given backend.
func NewManager(backend IRecordingBackend, dryRun bool) *Manager {
	return &Manager{backend: backend, dryRun: dryRun}
}

// GetStatusQuo reads the current session state and remembers it as the
// reference point for HasChanged.
func (m *Manager) GetStatusQuo() (State, error) {
	active, root, err := m.backend.Status()
	if err != nil {
		return State{}, store.NewErrorf(store.ErrCRecordingFailure, "failed to read recording state: %v", err)
	}
	diff, err := m.backend.GetDiff()
	if err != nil {
		return State{}, store.NewErrorf(store.ErrCRecordingFailure, "failed to read recording session: %v", err)
	}
	m.statusQuo = State{Active: active, Root: root, HasDiff: !diff.IsEmpty()}
	m.would = m.statusQuo
	return m.statusQuo, nil
}

// Diff returns the accumulated session diff. Read-only, allowed in
// dry-run mode.
func (m *Manager) Diff() (store.Diff, error) {
	diff, err := m.backend.GetDiff()
	if err != nil {
		return store.Diff{}, store.NewErrorf(store.ErrCRecordingFailure, "failed to read recording session: %v", err)
	}
	return diff, nil
}

// Disable turns recording off for the duration of the operation.
func (m *Manager) Disable() error {
	m.would.Active = false
	if m.dryRun {
		return nil
	}
	if err := m.backend.Disable(); err != nil {
		return store.NewErrorf(store.ErrCRecordingFailure, "failed to disable recording: %v", err)
	}
	return nil
}

// ResetIfRequested clears the accumulated session when requested.
func (m *Manager) ResetIfRequested(requested bool) error {
	if !requested {
		return nil
	}
	if m.would.HasDiff {
		m.discarded = true
	}
	m.would.HasDiff = false
	if m.dryRun {
		return nil
	}
	if err := m.backend.Reset(); err != nil {
		return store.NewErrorf(store.ErrCRecordingFailure, "failed to reset recording session: %v", err)
	}
	return nil
}

// EnableForSelfIfRequested turns recording on below the cascading root so
// the changes of this very operation are captured in the session.
func (m *Manager) EnableForSelfIfRequested(requested bool) error {
	if !requested {
		return nil
	}
	return m.enable("/")
}

// EnableIfRequested turns recording on below root as the final state of
// the operation.
func (m *Manager) EnableIfRequested(requested bool, root string) error {
	if !requested {
		return nil
	}
	if root == "" {
		root = "/"
	}
	return m.enable(root)
}

func (m *Manager) enable(root string) error {
	m.would.Active = true
	m.would.Root = root
	if m.dryRun {
		return nil
	}
	if err := m.backend.Enable(root); err != nil {
		return store.NewErrorf(store.ErrCRecordingFailure, "failed to enable recording below %s: %v", root, err)
	}
	return nil
}

// HasChanged compares the status quo against the (possibly simulated)
// final state: changed if the active flag differs, the recording root
// differs, or a reset discarded a non-empty session.
func (m *Manager) HasChanged() bool {
	if m.discarded {
		return true
	}
	if m.statusQuo.Active != m.would.Active {
		return true
	}
	return m.would.Active && m.statusQuo.Root != m.would.Root
}

// --------------------------------------------------------------------------
// Base Reconstruction
// --------------------------------------------------------------------------

// ReconstructBase derives the pre-session snapshot from the current state
// and the session diff: added keys are dropped, modified keys revert to
// their old state, removed keys reappear.
func ReconstructBase(current *kdb.KeySet, diff store.Diff) *kdb.KeySet {
	base := current.Dup()
	if diff.Added != nil {
		for _, name := range diff.Added.Names() {
			base.Pop(name)
		}
	}
	if diff.Modified != nil {
		for _, old := range diff.Modified.Keys() {
			base.AppendKey(old.Dup())
		}
	}
	if diff.Removed != nil {
		for _, old := range diff.Removed.Keys() {
			base.AppendKey(old.Dup())
		}
	}
	return base
}
