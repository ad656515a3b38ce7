package reconcile

import (
	"testing"

	"github.com/ElektraInitiative/kdbtask/lib/flatten"
	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRemovalDoc(t *testing.T, doc string) *KeyRemover {
	t.Helper()
	n, err := flatten.ParseYAML([]byte(doc))
	require.NoError(t, err)
	remover, err := ParseKeysToRemove(n)
	require.NoError(t, err)
	return remover
}

func TestParseKeysToRemove(t *testing.T) {
	remover := parseRemovalDoc(t, `
- user:/
- spec:/:
    something: else
- dir:/:
    recursive: true
`)

	markers := remover.Markers()
	require.Equal(t, 3, markers.Len())

	k, ok := markers.Lookup("user:/")
	require.True(t, ok)
	assert.False(t, k.HasMeta(kdb.MetaRecursive))

	k, ok = markers.Lookup("spec:/")
	require.True(t, ok)
	assert.False(t, k.HasMeta(kdb.MetaRecursive))

	k, ok = markers.Lookup("dir:/")
	require.True(t, ok)
	assert.True(t, k.HasMeta(kdb.MetaRecursive))
}

func TestParseKeysToRemoveRejectsBadNames(t *testing.T) {
	n, err := flatten.ParseYAML([]byte("- nonamespace"))
	require.NoError(t, err)
	_, err = ParseKeysToRemove(n)
	assert.Error(t, err)
}

func TestRemoveKeys(t *testing.T) {
	live := kdb.NewKeySet(
		kdb.NewKey("user:/test"),
		kdb.NewKey("user:/test/1"),
		kdb.NewKey("user:/test/2"),
		kdb.NewKey("user:/else"),
		kdb.NewKey("user:/else/1"),
		kdb.NewKey("user:/else/2"),
		kdb.NewKey("user:/nice"),
	)

	recursive := kdb.NewKey("user:/test")
	recursive.SetMeta(kdb.MetaRecursive, "true")
	remover := NewKeyRemover(kdb.NewKeySet(kdb.NewKey("user:/else"), recursive))

	removed := remover.RemoveKeys(live)

	assert.ElementsMatch(t,
		[]string{"user:/test", "user:/test/1", "user:/test/2", "user:/else"},
		removed.Names())
	assert.ElementsMatch(t,
		[]string{"user:/else/1", "user:/else/2", "user:/nice"},
		live.Names())
}

func TestRemoveKeysMissingKeyIsNoop(t *testing.T) {
	live := kdb.NewKeySet(kdb.NewKey("user:/a"))
	remover := NewKeyRemover(kdb.NewKeySet(kdb.NewKey("user:/missing")))

	removed := remover.RemoveKeys(live)

	assert.Equal(t, 0, removed.Len())
	assert.Equal(t, 1, live.Len())
}
