package flatten

import (
	"fmt"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
)

// --------------------------------------------------------------------------
// Keyset Builder
// --------------------------------------------------------------------------

// Build converts a flattened descriptor mapping into a keyset. One key is
// created per flattened path, in traversal order.
//
// With assignOrder set, each key receives sequential integer "order"
// metadata (0, 1, 2, ...). Removal flags become the reserved deletion
// marker metadatum, metadata entries are stored under the reserved
// "meta:/" prefix.
func Build(flattened *Flattened, assignOrder bool) (*kdb.KeySet, error) {
	ks := kdb.NewKeySet()
	order := 0
	for pair := flattened.Oldest(); pair != nil; pair = pair.Next() {
		name, d := pair.Key, pair.Value
		if _, err := kdb.ParseNamespace(name); err != nil {
			return nil, fmt.Errorf("invalid key in document: %w", err)
		}

		key := kdb.NewKey(name)
		if assignOrder {
			key.SetOrder(order)
			order++
		}
		if d.HasValue {
			key.SetValue(d.Value)
		}
		if d.Remove {
			key.SetMeta(kdb.MetaRemoved, "1")
		}
		if d.Meta != nil {
			for mp := d.Meta.Oldest(); mp != nil; mp = mp.Next() {
				key.SetMeta(mp.Key, mp.Value.Value)
			}
		}
		ks.AppendKey(key)
	}
	return ks, nil
}

// BuildDocument flattens a declarative document (first level treated as
// namespace) and builds the resulting keyset in one step.
func BuildDocument(doc *Node, assignOrder bool) (*kdb.KeySet, error) {
	flattened, err := Flatten(doc, true)
	if err != nil {
		return nil, err
	}
	return Build(flattened, assignOrder)
}
