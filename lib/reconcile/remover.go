package reconcile

import (
	"fmt"

	"github.com/ElektraInitiative/kdbtask/lib/flatten"
	"github.com/ElektraInitiative/kdbtask/lib/kdb"
)

// --------------------------------------------------------------------------
// Key Remover
// --------------------------------------------------------------------------

// KeyRemover detaches keys and subtrees from a live keyset according to a
// removal specification: a keyset of marker keys, each optionally flagged
// recursive.
type KeyRemover struct {
	toRemove *kdb.KeySet
}

// NewKeyRemover creates a remover from an already built marker keyset.
func NewKeyRemover(toRemove *kdb.KeySet) *KeyRemover {
	if toRemove == nil {
		toRemove = kdb.NewKeySet()
	}
	return &KeyRemover{toRemove: toRemove}
}

// ParseKeysToRemove builds a remover from the declarative removal
// document: a sequence whose items are either plain key names or mappings
// from key name to an option object ({"recursive": true}).
func ParseKeysToRemove(doc *flatten.Node) (*KeyRemover, error) {
	markers := kdb.NewKeySet()
	if doc == nil {
		return NewKeyRemover(markers), nil
	}

	items := doc.Items
	if doc.Kind != flatten.KindSequence {
		items = []*flatten.Node{doc}
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		switch item.Kind {
		case flatten.KindScalar:
			marker, err := newMarker(item.Value)
			if err != nil {
				return nil, err
			}
			markers.AppendKey(marker)
		case flatten.KindMapping:
			for _, e := range item.Entries {
				marker, err := newMarker(e.Key)
				if err != nil {
					return nil, err
				}
				if opt, ok := e.Node.Get(kdb.MetaRecursive); ok && opt.Bool() {
					marker.SetMeta(kdb.MetaRecursive, "true")
				}
				markers.AppendKey(marker)
			}
		default:
			return nil, fmt.Errorf("invalid removal specification entry of kind %v", item.Kind)
		}
	}
	return NewKeyRemover(markers), nil
}

func newMarker(name string) (*kdb.Key, error) {
	if _, err := kdb.ParseNamespace(name); err != nil {
		return nil, fmt.Errorf("invalid removal key: %w", err)
	}
	return kdb.NewKey(name), nil
}

// Markers returns the marker keyset.
func (r *KeyRemover) Markers() *kdb.KeySet {
	return r.toRemove
}

// RemoveKeys detaches all matching keys from live and returns the
// aggregate of everything removed. Recursive markers cut the whole
// subtree, plain markers remove the exact name only. Absence of a marked
// key is silently ignored.
func (r *KeyRemover) RemoveKeys(live *kdb.KeySet) *kdb.KeySet {
	removed := kdb.NewKeySet()
	for _, marker := range r.toRemove.Keys() {
		if v, ok := marker.Meta(kdb.MetaRecursive); ok && truthy(v) {
			removed.Append(live.Cut(marker.Name()))
			continue
		}
		if k, ok := live.Pop(marker.Name()); ok {
			removed.AppendKey(k)
		}
	}
	return removed
}
