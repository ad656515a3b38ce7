package memstore

import (
	"testing"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store"
	storetesting "github.com/ElektraInitiative/kdbtask/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "MemStore", func() store.IStore {
		return NewMemStore()
	})
}

// --------------------------------------------------------------------------
// Recording backend
// --------------------------------------------------------------------------

func TestRecordingSessionDiff(t *testing.T) {
	st := NewMemStore()
	if _, err := st.Set(kdb.NewKeySet(
		kdb.NewKeyValue("user:/app/modified", "old"),
		kdb.NewKeyValue("user:/app/removed", "gone"),
	), "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := st.Enable("/"); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	active, root, err := st.Status()
	if err != nil || !active || root != "/" {
		t.Fatalf("Expected an active session below /, got active=%t root=%s err=%v", active, root, err)
	}

	if _, err := st.Set(kdb.NewKeySet(
		kdb.NewKeyValue("user:/app/modified", "new"),
		kdb.NewKeyValue("user:/app/added", "fresh"),
	), "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	diff, err := st.GetDiff()
	if err != nil {
		t.Fatalf("GetDiff failed: %v", err)
	}
	if _, ok := diff.Added.Lookup("user:/app/added"); !ok {
		t.Errorf("Expected user:/app/added in session diff")
	}
	if old, ok := diff.Modified.Lookup("user:/app/modified"); !ok || old.Value() != "old" {
		t.Errorf("Expected Modified to carry the pre-session state")
	}
	if old, ok := diff.Removed.Lookup("user:/app/removed"); !ok || old.Value() != "gone" {
		t.Errorf("Expected Removed to carry the pre-session state")
	}

	if err := st.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	diff, err = st.GetDiff()
	if err != nil {
		t.Fatalf("GetDiff failed: %v", err)
	}
	if !diff.IsEmpty() {
		t.Errorf("Expected an empty session diff after Reset")
	}
}

func TestOutOfScopeWriteWarns(t *testing.T) {
	st := NewMemStore()
	ks := kdb.NewKeySet(
		kdb.NewKeyValue("user:/app/in", "1"),
		kdb.NewKeyValue("system:/elsewhere", "2"),
	)
	if _, err := st.Set(ks, "user:/app"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	read, _, err := st.Get("/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := read.Lookup("system:/elsewhere"); ok {
		t.Errorf("Expected out-of-scope key to be skipped")
	}

	warnings := st.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Code != "C01110" {
		t.Errorf("Expected warning code C01110, got %s", warnings[0].Code)
	}
	if len(st.Warnings()) != 0 {
		t.Errorf("Expected Warnings to drain")
	}
}
