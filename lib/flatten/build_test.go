package flatten

import (
	"testing"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buildFixtureDoc = `
- user:/hosts:
    localhost:
      ipv4:
        - value: 127.0.0.1
        - meta:
            elektra:
              test: "1"
      ipv6:
        - value: "::1"
    example.com:
      ipv4:
        - value: 1.2.3.4
        - remove: true
  system:
    drink:
      - value: beer
      - meta:
          healthy: "false"
    cake: lie
    nonleaf:
      - value: non-leaf value
      - keys:
          further:
            continuation: "123"
          raspberry: pie
  dir:/animals:
    - array:
        - species: cow
          name: Bessie
        - "#":
            - meta:
                goodboy: "true"
            - keys:
                species: dog
                name: Rufus
        - value of 3rd element
        - "#": value of 4th element
    - meta:
        something: abc
`

func keyValue(t *testing.T, ks *kdb.KeySet, name string) string {
	t.Helper()
	k, ok := ks.Lookup(name)
	require.True(t, ok, "missing %s", name)
	return k.Value()
}

func keyMeta(t *testing.T, ks *kdb.KeySet, name, meta string) string {
	t.Helper()
	k, ok := ks.Lookup(name)
	require.True(t, ok, "missing %s", name)
	v, ok := k.Meta(meta)
	require.True(t, ok, "%s has no meta %s", name, meta)
	return v
}

func TestBuildFixtureTree(t *testing.T) {
	ks, err := BuildDocument(mustParse(t, buildFixtureDoc), false)
	require.NoError(t, err)

	assert.Equal(t, 16, ks.Len())

	assert.Equal(t, "127.0.0.1", keyValue(t, ks, "user:/hosts/localhost/ipv4"))
	assert.Equal(t, "1", keyMeta(t, ks, "user:/hosts/localhost/ipv4", "meta:/elektra/test"))
	assert.Equal(t, "1.2.3.4", keyValue(t, ks, "user:/hosts/example.com/ipv4"))

	// the remove directive becomes the reserved deletion marker
	assert.Equal(t, "1", keyMeta(t, ks, "user:/hosts/example.com/ipv4", "meta:/elektra/removed"))

	assert.Equal(t, "beer", keyValue(t, ks, "system:/drink"))
	assert.Equal(t, "false", keyMeta(t, ks, "system:/drink", "meta:/healthy"))
	assert.Equal(t, "lie", keyValue(t, ks, "system:/cake"))
	assert.Equal(t, "non-leaf value", keyValue(t, ks, "system:/nonleaf"))
	assert.Equal(t, "123", keyValue(t, ks, "system:/nonleaf/further/continuation"))
	assert.Equal(t, "pie", keyValue(t, ks, "system:/nonleaf/raspberry"))

	assert.Equal(t, "#3", keyMeta(t, ks, "dir:/animals", "meta:/array"))
	assert.Equal(t, "abc", keyMeta(t, ks, "dir:/animals", "meta:/something"))
	assert.Equal(t, "cow", keyValue(t, ks, "dir:/animals/#0/species"))
	assert.Equal(t, "Bessie", keyValue(t, ks, "dir:/animals/#0/name"))
	assert.Equal(t, "true", keyMeta(t, ks, "dir:/animals/#1", "goodboy"))
	assert.Equal(t, "dog", keyValue(t, ks, "dir:/animals/#1/species"))
	assert.Equal(t, "Rufus", keyValue(t, ks, "dir:/animals/#1/name"))
	assert.Equal(t, "value of 3rd element", keyValue(t, ks, "dir:/animals/#2"))
	assert.Equal(t, "value of 4th element", keyValue(t, ks, "dir:/animals/#3"))
}

func TestBuildNestedMeta(t *testing.T) {
	ks, err := BuildDocument(mustParse(t, `
- user:/test:
    raspberry:
      - value: pie
      - meta:
          comment:
            "#1":
              - value: this is my comment
              - keys:
                  space: Nothing
                  start:
                    - value: "#"
`), false)
	require.NoError(t, err)

	require.Equal(t, 1, ks.Len())
	assert.Equal(t, "pie", keyValue(t, ks, "user:/test/raspberry"))
	assert.Equal(t, "this is my comment", keyMeta(t, ks, "user:/test/raspberry", "meta:/comment/#1"))
	assert.Equal(t, "Nothing", keyMeta(t, ks, "user:/test/raspberry", "meta:/comment/#1/space"))
	assert.Equal(t, "#", keyMeta(t, ks, "user:/test/raspberry", "comment/#1/start"))
}

func TestBuildAssignsSequentialOrder(t *testing.T) {
	ks, err := BuildDocument(mustParse(t, `
user:/b: "1"
user:/a: "2"
user:/c: "3"
`), true)
	require.NoError(t, err)

	for want, name := range []string{"user:/b", "user:/a", "user:/c"} {
		k, ok := ks.Lookup(name)
		require.True(t, ok)
		order, ok := k.Order()
		require.True(t, ok)
		assert.Equal(t, want, order)
	}
}

func TestBuildRejectsUnnamespacedKeys(t *testing.T) {
	flattened, err := Flatten(mustParse(t, `
nonamespace/key: "1"
`), false)
	require.NoError(t, err)
	_, err = Build(flattened, false)
	assert.Error(t, err)
}

func TestBuildRoundTripAddressability(t *testing.T) {
	// every leaf of the fixture must be individually addressable after
	// flatten -> build
	flattened := mustFlatten(t, fixtureDoc)
	ks, err := Build(flattened, false)
	require.NoError(t, err)

	for pair := flattened.Oldest(); pair != nil; pair = pair.Next() {
		k, ok := ks.Lookup(pair.Key)
		require.True(t, ok, "key %s not addressable", pair.Key)
		if pair.Value.HasValue {
			assert.Equal(t, pair.Value.Value, k.Value(), pair.Key)
		}
		if pair.Value.Meta != nil {
			for mp := pair.Value.Meta.Oldest(); mp != nil; mp = mp.Next() {
				v, ok := k.Meta(mp.Key)
				require.True(t, ok, "meta %s of %s lost", mp.Key, pair.Key)
				assert.Equal(t, mp.Value.Value, v)
			}
		}
	}
}
