package task

import (
	"errors"
	"testing"

	"github.com/ElektraInitiative/kdbtask/lib/flatten"
	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/mount"
	"github.com/ElektraInitiative/kdbtask/lib/reconcile"
	"github.com/ElektraInitiative/kdbtask/lib/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMountCommand registers the mountpoint in the topology like the
// real external tool would.
type fakeMountCommand struct {
	store *memstore.MemStore
	calls int
}

func (f *fakeMountCommand) Run(mountpoint, file, resolver string, recommends bool, plugins []mount.Plugin) (int, string, error) {
	f.calls++
	topology, _, err := f.store.Get(kdb.MountpointsRoot)
	if err != nil {
		return -1, "", err
	}
	topology.AppendKey(kdb.NewKeyValue(kdb.MountpointsRoot+"/"+mount.EscapeMountpoint(mountpoint), file))
	if _, err := f.store.Set(topology, kdb.MountpointsRoot); err != nil {
		return -1, "", err
	}
	return 0, "", nil
}

func newTestRunner(t *testing.T) (*Runner, *memstore.MemStore, *fakeMountCommand) {
	t.Helper()
	st := memstore.NewMemStore()
	cmd := &fakeMountCommand{store: st}
	return NewRunner(st, st, cmd), st, cmd
}

func doc(t *testing.T, yaml string) *flatten.Node {
	t.Helper()
	n, err := flatten.ParseYAML([]byte(yaml))
	require.NoError(t, err)
	return n
}

func TestRunAppliesDesiredConfiguration(t *testing.T) {
	r, st, _ := newTestRunner(t)

	task := Task{Keys: doc(t, `
user:
  app:
    setting: hello
    other:
      - value: world
      - meta:
          comment: from the task
`)}

	res, err := r.Run(task)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Conflicts)

	live, _, err := st.Get("/")
	require.NoError(t, err)
	k, ok := live.Lookup("user:/app/setting")
	require.True(t, ok)
	assert.Equal(t, "hello", k.Value())
	k, ok = live.Lookup("user:/app/other")
	require.True(t, ok)
	assert.Equal(t, "world", k.Value())
	comment, _ := k.Meta("comment")
	assert.Equal(t, "from the task", comment)

	// a second identical run is a no-op
	res, err = r.Run(task)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestRunDryRunLeavesStoreUntouched(t *testing.T) {
	r, st, _ := newTestRunner(t)
	_, err := st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/app/setting", "old")), "/")
	require.NoError(t, err)
	before, _, err := st.Get("/")
	require.NoError(t, err)

	res, err := r.Run(Task{
		Keys:   doc(t, "user:\n  app:\n    setting: new\n"),
		DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	after, _, err := st.Get("/")
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestRunRemovesKeysRecursively(t *testing.T) {
	r, st, _ := newTestRunner(t)
	_, err := st.Set(kdb.NewKeySet(
		kdb.NewKeyValue("user:/gone", "root"),
		kdb.NewKeyValue("user:/gone/a", "1"),
		kdb.NewKeyValue("user:/gone/b", "2"),
		kdb.NewKeyValue("user:/stay", "3"),
	), "/")
	require.NoError(t, err)

	res, err := r.Run(Task{
		KeysToRemove: doc(t, "- user:/gone:\n    recursive: true\n"),
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	live, _, err := st.Get("/")
	require.NoError(t, err)
	for _, name := range []string{"user:/gone", "user:/gone/a", "user:/gone/b"} {
		_, ok := live.Lookup(name)
		assert.False(t, ok, name)
	}
	_, ok := live.Lookup("user:/stay")
	assert.True(t, ok)
}

func TestRunMergeConflictAbortsAndRollsBack(t *testing.T) {
	r, st, _ := newTestRunner(t)
	_, err := st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/app/k", "base")), "/")
	require.NoError(t, err)
	// a recording session whose diff recovers the "base" value
	require.NoError(t, st.Enable("/"))
	_, err = st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/app/k", "live")), "/")
	require.NoError(t, err)
	before, _, err := st.Get("/")
	require.NoError(t, err)

	res, err := r.Run(Task{
		Keys:     doc(t, "user:\n  app:\n    k: desired\n"),
		Strategy: reconcile.StrategyAbort,
	})
	require.Error(t, err)

	var conflict *reconcile.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"user:/app/k"}, conflict.Keys)
	assert.Equal(t, []string{"user:/app/k"}, res.Conflicts)

	after, _, err := st.Get("/")
	require.NoError(t, err)
	assert.True(t, before.Equal(after), "conflict must not leave partial writes")
}

func TestRunMergeConflictResolvedByStrategy(t *testing.T) {
	r, st, _ := newTestRunner(t)
	_, err := st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/app/k", "base")), "/")
	require.NoError(t, err)
	require.NoError(t, st.Enable("/"))
	_, err = st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/app/k", "live")), "/")
	require.NoError(t, err)

	res, err := r.Run(Task{
		Keys:     doc(t, "user:\n  app:\n    k: desired\n"),
		Strategy: reconcile.StrategyOurs,
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"user:/app/k"}, res.Conflicts)

	live, _, err := st.Get("/")
	require.NoError(t, err)
	k, ok := live.Lookup("user:/app/k")
	require.True(t, ok)
	assert.Equal(t, "desired", k.Value())
}

func TestRunCallerSuppliedBase(t *testing.T) {
	r, st, _ := newTestRunner(t)
	_, err := st.Set(kdb.NewKeySet(kdb.NewKeyValue("user:/app/k", "live")), "/")
	require.NoError(t, err)

	// base equals the live state, so only the desired side changes
	base := kdb.NewKeySet(kdb.NewKeyValue("user:/app/k", "live"))
	res, err := r.Run(Task{
		Keys: doc(t, "user:\n  app:\n    k: desired\n"),
		Base: base,
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Conflicts)

	live, _, err := st.Get("/")
	require.NoError(t, err)
	k, _ := live.Lookup("user:/app/k")
	assert.Equal(t, "desired", k.Value())
}

func TestRunEnsuresMountpoints(t *testing.T) {
	r, st, cmd := newTestRunner(t)

	res, err := r.Run(Task{
		Mounts: []mount.Spec{{
			Mountpoint: "system:/hosts",
			File:       "/etc/hosts",
			Resolver:   "resolver",
			Plugins:    []mount.Plugin{{Name: "hosts"}},
		}},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, cmd.calls)

	topology, _, err := st.Get(kdb.MountpointsRoot)
	require.NoError(t, err)
	_, ok := topology.Lookup(kdb.MountpointsRoot + `/system:\/hosts`)
	assert.True(t, ok)
}

func TestRunRecordingLifecycle(t *testing.T) {
	r, st, _ := newTestRunner(t)

	res, err := r.Run(Task{
		Recording: Recording{Enable: true, Root: "user:/app"},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed, "enabling recording is a state change")

	active, root, err := st.Status()
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, "user:/app", root)

	// running again with the same request changes nothing
	res, err = r.Run(Task{
		Recording: Recording{Enable: true, Root: "user:/app"},
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestRunKeepOrderAssignsOrderMetadata(t *testing.T) {
	r, st, _ := newTestRunner(t)

	_, err := r.Run(Task{
		Keys:      doc(t, "user:\n  app:\n    first: 1\n    second: 2\n"),
		KeepOrder: true,
	})
	require.NoError(t, err)

	live, _, err := st.Get("/")
	require.NoError(t, err)
	first, _ := live.Lookup("user:/app/first")
	second, _ := live.Lookup("user:/app/second")
	o1, ok := first.Order()
	require.True(t, ok)
	o2, ok := second.Order()
	require.True(t, ok)
	assert.Less(t, o1, o2)
}
