package testing

import (
	"testing"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store"
)

// StoreFactory is a function that creates a new instance of an IStore implementation
type StoreFactory func() store.IStore

// RunStoreTests runs a conformance test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Get&Set", func(t *testing.T) {
			testGetSet(t, factory())
		})

		t.Run("ScopedSet", func(t *testing.T) {
			testScopedSet(t, factory())
		})

		t.Run("SetRemovesMissingKeys", func(t *testing.T) {
			testSetRemovesMissingKeys(t, factory())
		})

		t.Run("RetCodes", func(t *testing.T) {
			testRetCodes(t, factory())
		})

		t.Run("MetadataRoundTrip", func(t *testing.T) {
			testMetadataRoundTrip(t, factory())
		})

		t.Run("GetReturnsCopies", func(t *testing.T) {
			testGetReturnsCopies(t, factory())
		})

		t.Run("CalculateDiff", func(t *testing.T) {
			testCalculateDiff(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testGetSet(t *testing.T, st store.IStore) {
	ks := kdb.NewKeySet(
		kdb.NewKeyValue("user:/test/a", "1"),
		kdb.NewKeyValue("user:/test/b", "2"),
	)
	if _, err := st.Set(ks, "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	read, rc, err := st.Get("/")
	if err != nil || rc == store.RetError {
		t.Fatalf("Get failed: rc=%d err=%v", rc, err)
	}
	if read.Len() != 2 {
		t.Errorf("Expected 2 keys, got %d", read.Len())
	}
	for _, want := range ks.Keys() {
		got, ok := read.Lookup(want.Name())
		if !ok {
			t.Errorf("Expected key %s to exist after Set", want.Name())
			continue
		}
		if got.Value() != want.Value() {
			t.Errorf("Expected value %s for %s, got %s", want.Value(), want.Name(), got.Value())
		}
	}
}

func testScopedSet(t *testing.T, st store.IStore) {
	seed := kdb.NewKeySet(
		kdb.NewKeyValue("user:/app/a", "1"),
		kdb.NewKeyValue("system:/other/b", "2"),
	)
	if _, err := st.Set(seed, "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// replacing below user:/app must not touch system:/other
	replacement := kdb.NewKeySet(kdb.NewKeyValue("user:/app/c", "3"))
	if _, err := st.Set(replacement, "user:/app"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	read, _, err := st.Get("/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := read.Lookup("user:/app/a"); ok {
		t.Errorf("Expected user:/app/a to be removed by scoped Set")
	}
	if _, ok := read.Lookup("user:/app/c"); !ok {
		t.Errorf("Expected user:/app/c to exist after scoped Set")
	}
	if _, ok := read.Lookup("system:/other/b"); !ok {
		t.Errorf("Expected system:/other/b to survive scoped Set")
	}
}

func testSetRemovesMissingKeys(t *testing.T, st store.IStore) {
	seed := kdb.NewKeySet(
		kdb.NewKeyValue("user:/test/a", "1"),
		kdb.NewKeyValue("user:/test/b", "2"),
	)
	if _, err := st.Set(seed, "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/test/a", "1")), "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	read, _, err := st.Get("/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if read.Len() != 1 {
		t.Errorf("Expected 1 key after removing Set, got %d", read.Len())
	}
	if _, ok := read.Lookup("user:/test/b"); ok {
		t.Errorf("Expected user:/test/b to be removed")
	}
}

func testRetCodes(t *testing.T, st store.IStore) {
	ks := kdb.NewKeySet(kdb.NewKeyValue("user:/test/a", "1"))

	rc, err := st.Set(ks, "/")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if rc != store.RetChanged {
		t.Errorf("Expected first Set to report RetChanged, got %d", rc)
	}

	rc, err = st.Set(ks, "/")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if rc != store.RetNoChange {
		t.Errorf("Expected identical Set to report RetNoChange, got %d", rc)
	}
}

func testMetadataRoundTrip(t *testing.T, st store.IStore) {
	k := kdb.NewKeyValue("user:/test/meta", "v")
	k.SetOrder(7)
	k.SetMeta("comment/#0", "a comment")
	if _, err := st.Set(kdb.NewKeySet(k), "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	read, _, err := st.Get("/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got, ok := read.Lookup("user:/test/meta")
	if !ok {
		t.Fatalf("Expected key to exist after Set")
	}
	if order, ok := got.Order(); !ok || order != 7 {
		t.Errorf("Expected order 7, got %d (ok=%t)", order, ok)
	}
	if v, ok := got.Meta("comment/#0"); !ok || v != "a comment" {
		t.Errorf("Expected comment metadata to round-trip, got %q (ok=%t)", v, ok)
	}
}

func testGetReturnsCopies(t *testing.T, st store.IStore) {
	if _, err := st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/test/a", "1")), "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	read, _, err := st.Get("/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	k, _ := read.Lookup("user:/test/a")
	k.SetValue("mutated")

	again, _, err := st.Get("/")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	k2, _ := again.Lookup("user:/test/a")
	if k2.Value() != "1" {
		t.Errorf("Expected stored value to be unaffected by mutating a read copy, got %s", k2.Value())
	}
}

func testCalculateDiff(t *testing.T, st store.IStore) {
	seed := kdb.NewKeySet(
		kdb.NewKeyValue("user:/test/modified", "old"),
		kdb.NewKeyValue("user:/test/removed", "gone"),
	)
	if _, err := st.Set(seed, "/"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	next := kdb.NewKeySet(
		kdb.NewKeyValue("user:/test/modified", "new"),
		kdb.NewKeyValue("user:/test/added", "fresh"),
	)
	diff, err := st.CalculateDiff(next, "/")
	if err != nil {
		t.Fatalf("CalculateDiff failed: %v", err)
	}
	if diff.IsEmpty() {
		t.Fatalf("Expected a non-empty diff")
	}
	if _, ok := diff.Added.Lookup("user:/test/added"); !ok {
		t.Errorf("Expected user:/test/added in Added")
	}
	if old, ok := diff.Modified.Lookup("user:/test/modified"); !ok || old.Value() != "old" {
		t.Errorf("Expected Modified to carry the old state")
	}
	if old, ok := diff.Removed.Lookup("user:/test/removed"); !ok || old.Value() != "gone" {
		t.Errorf("Expected Removed to carry the old state")
	}

	// the diff of the stored state against itself is empty
	diff, err = st.CalculateDiff(seed, "/")
	if err != nil {
		t.Fatalf("CalculateDiff failed: %v", err)
	}
	if !diff.IsEmpty() {
		t.Errorf("Expected an empty diff for unchanged content")
	}
}
