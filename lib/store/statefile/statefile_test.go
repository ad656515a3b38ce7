package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	k := kdb.NewKeyValue("user:/app/setting", "hello")
	k.SetOrder(3)
	k.SetMeta("comment", "a comment")
	ks := kdb.NewKeySet(k, kdb.NewKeyValue("system:/other", "42"))

	require.NoError(t, Save(path, ks))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, ks.Equal(loaded))
}

func TestLoadMissingFileYieldsEmptyKeyset(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestLoadRejectsUnnamespacedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	bad := `{"no-namespace": {"value": "x"}}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
