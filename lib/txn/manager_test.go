package txn

import (
	"testing"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *memstore.MemStore {
	t.Helper()
	st := memstore.NewMemStore()
	withMeta := kdb.NewKeyValue("user:/app/setting", "original")
	withMeta.SetMeta("comment", "keep me")
	_, err := st.Set(kdb.NewKeySet(
		withMeta,
		kdb.NewKeyValue("system:/app/other", "42"),
		kdb.NewKeyValue(kdb.MountpointsRoot+`/system:\/app`, "/etc/app.ini"),
	), "/")
	require.NoError(t, err)
	return st
}

func TestRollbackRestoresExactPriorState(t *testing.T) {
	st := seededStore(t)
	before, _, err := st.Get("/")
	require.NoError(t, err)

	m := NewManager(st, false)
	require.NoError(t, m.Start())
	require.True(t, m.Active())

	// wreck the state: modify, add, delete, and add a new mountpoint with
	// data below it
	after := before.Dup()
	k, _ := after.Lookup("user:/app/setting")
	k.SetValue("broken")
	after.Pop("system:/app/other")
	after.AppendKey(kdb.NewKeyValue("user:/new/key", "junk"))
	after.AppendKey(kdb.NewKeyValue(kdb.MountpointsRoot+`/user:\/new`, "/tmp/new.ini"))
	_, err = st.Set(after, "/")
	require.NoError(t, err)

	require.NoError(t, m.Rollback())

	restored, _, err := st.Get("/")
	require.NoError(t, err)
	assert.True(t, before.Equal(restored), "store must match the pre-transaction snapshot")
	assert.False(t, m.Active())
}

func TestRollbackWithoutSnapshotIsNoop(t *testing.T) {
	st := seededStore(t)
	before, _, err := st.Get("/")
	require.NoError(t, err)

	m := NewManager(st, false)
	require.NoError(t, m.Rollback())

	current, _, err := st.Get("/")
	require.NoError(t, err)
	assert.True(t, before.Equal(current))
}

func TestRollbackInDryRunIsNoop(t *testing.T) {
	st := seededStore(t)
	m := NewManager(st, true)
	require.NoError(t, m.Start())

	_, err := st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/scratch", "x")), "user:/scratch")
	require.NoError(t, err)

	require.NoError(t, m.Rollback())

	current, _, err := st.Get("/")
	require.NoError(t, err)
	_, ok := current.Lookup("user:/scratch")
	assert.True(t, ok, "dry-run rollback must not restore anything")
}
