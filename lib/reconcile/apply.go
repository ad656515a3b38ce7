package reconcile

import (
	"strconv"
	"strings"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
)

// --------------------------------------------------------------------------
// Order Reconciler
// --------------------------------------------------------------------------

// ApplyNewKeyset merges incoming into existing in place, in the stored
// order of incoming.
//
// Keys carrying a truthy deletion marker remove their existing
// counterpart by exact name; absence is not an error. With keepOrder set,
// keys that already exist keep their existing "order" metadata while
// genuinely new keys have their order shifted past the maximum existing
// order, preserving their relative order to each other.
func ApplyNewKeyset(existing, incoming *kdb.KeySet, keepOrder bool) {
	orderOffset := 0
	if keepOrder {
		orderOffset = 1
		for _, k := range existing.Keys() {
			if order, ok := k.Order(); ok && order+1 > orderOffset {
				orderOffset = order + 1
			}
		}
	}

	for _, k := range incoming.Keys() {
		if v, ok := k.Meta(kdb.MetaRemoved); ok && truthy(v) {
			existing.Pop(k.Name())
			continue
		}

		if keepOrder {
			ex, exists := existing.Lookup(k.Name())
			if exOrder, ok := orderOf(ex, exists); ok {
				// existing keys never change position
				k.SetOrder(exOrder)
			} else if order, ok := k.Order(); ok {
				k.SetOrder(order + orderOffset)
			}
		}

		existing.AppendKey(k)
	}
}

func orderOf(k *kdb.Key, exists bool) (int, bool) {
	if !exists {
		return 0, false
	}
	return k.Order()
}

// truthy interprets a metadata value as a boolean flag.
func truthy(v string) bool {
	b, err := strconv.ParseBool(strings.ToLower(v))
	return err == nil && b
}
