package memstore

import (
	"sort"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

// MemStore is an in-memory key database. It implements store.IStore and
// the recording.IRecordingBackend collaborator, which makes it suitable
// for the test suites and for local dry runs of the engine.
//
// Concurrent readers are safe; concurrent writers are expected to be
// serialized externally (single-writer semantics), matching the
// guarantees of the real database.
type MemStore struct {
	keys     *xsync.MapOf[string, *kdb.Key]
	warnings []store.Warning

	recActive bool
	recRoot   string
	recBase   *kdb.KeySet // snapshot of the recording scope at enable/reset
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		keys: xsync.NewMapOf[string, *kdb.Key](),
	}
}

// --------------------------------------------------------------------------
// store.IStore
// --------------------------------------------------------------------------

// Get returns deep copies of all keys at or below root, sorted by name.
func (s *MemStore) Get(root string) (*kdb.KeySet, store.RetCode, error) {
	ks := s.snapshot(root)
	return ks, store.RetChanged, nil
}

// Set replaces the content at or below root with ks. Keys outside the
// root scope are skipped with a warning.
func (s *MemStore) Set(ks *kdb.KeySet, root string) (store.RetCode, error) {
	changed := false

	// drop stored keys below root that are missing from ks
	s.keys.Range(func(name string, _ *kdb.Key) bool {
		if kdb.IsBelowOrSame(root, name) {
			if _, ok := ks.Lookup(name); !ok {
				s.keys.Delete(name)
				changed = true
			}
		}
		return true
	})

	for _, k := range ks.Keys() {
		if !kdb.IsBelowOrSame(root, k.Name()) {
			s.warn(store.Warning{
				Module:      "memstore",
				Code:        "C01110",
				Description: "key outside of write scope skipped",
				Reason:      k.Name() + " is not below " + root,
			})
			continue
		}
		if old, ok := s.keys.Load(k.Name()); !ok || !old.Equal(k) {
			s.keys.Store(k.Name(), k.Dup())
			changed = true
		}
	}

	if changed {
		return store.RetChanged, nil
	}
	return store.RetNoChange, nil
}

// CalculateDiff compares ks against the stored content below root.
func (s *MemStore) CalculateDiff(ks *kdb.KeySet, root string) (store.Diff, error) {
	return diffAgainst(ks, s.snapshot(root)), nil
}

// Warnings drains the accumulated warnings.
func (s *MemStore) Warnings() []store.Warning {
	w := s.warnings
	s.warnings = nil
	return w
}

// --------------------------------------------------------------------------
// recording.IRecordingBackend
// --------------------------------------------------------------------------

// Status reports whether session recording is active and at which root.
func (s *MemStore) Status() (bool, string, error) {
	return s.recActive, s.recRoot, nil
}

// Enable turns on session recording rooted at root. The current content
// below root becomes the session base.
func (s *MemStore) Enable(root string) error {
	s.recActive = true
	s.recRoot = root
	s.recBase = s.snapshot(root)
	return nil
}

// Disable turns session recording off. The accumulated session is kept
// until Reset.
func (s *MemStore) Disable() error {
	s.recActive = false
	return nil
}

// Reset discards the accumulated session.
func (s *MemStore) Reset() error {
	root := s.recRoot
	if root == "" {
		root = "/"
	}
	s.recBase = s.snapshot(root)
	return nil
}

// GetDiff returns the changes made below the recording root since the
// session base was taken. Modified and Removed carry the old state.
func (s *MemStore) GetDiff() (store.Diff, error) {
	if s.recBase == nil {
		return store.NewDiff(), nil
	}
	root := s.recRoot
	if root == "" {
		root = "/"
	}
	return diffAgainst(s.snapshot(root), s.recBase), nil
}

// --------------------------------------------------------------------------
// internal helpers
// --------------------------------------------------------------------------

// snapshot collects deep copies of all keys at or below root, sorted by
// name.
func (s *MemStore) snapshot(root string) *kdb.KeySet {
	var collected []*kdb.Key
	s.keys.Range(func(name string, k *kdb.Key) bool {
		if kdb.IsBelowOrSame(root, name) {
			collected = append(collected, k.Dup())
		}
		return true
	})
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].Name() < collected[j].Name()
	})
	return kdb.NewKeySet(collected...)
}

func (s *MemStore) warn(w store.Warning) {
	s.warnings = append(s.warnings, w)
}

// diffAgainst compares ks against the stored keyset. Old key state ends
// up in Modified/Removed.
func diffAgainst(ks, stored *kdb.KeySet) store.Diff {
	diff := store.NewDiff()
	for _, k := range ks.Keys() {
		old, ok := stored.Lookup(k.Name())
		switch {
		case !ok:
			diff.Added.AppendKey(k.Dup())
		case !old.Equal(k):
			diff.Modified.AppendKey(old.Dup())
		}
	}
	for _, old := range stored.Keys() {
		if _, ok := ks.Lookup(old.Name()); !ok {
			diff.Removed.AppendKey(old.Dup())
		}
	}
	return diff
}
