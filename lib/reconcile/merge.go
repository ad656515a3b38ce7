package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ElektraInitiative/kdbtask/lib/kdb"
)

// --------------------------------------------------------------------------
// Merge Strategies
// --------------------------------------------------------------------------

// Strategy selects how conflicting three-way changes are resolved.
type Strategy int

const (
	// StrategyAbort fails the merge on any conflict.
	StrategyAbort Strategy = iota
	// StrategyOurs resolves every conflict in favor of the desired state.
	StrategyOurs
	// StrategyTheirs resolves every conflict in favor of the live state.
	StrategyTheirs
)

func (s Strategy) String() string {
	switch s {
	case StrategyAbort:
		return "abort"
	case StrategyOurs:
		return "ours"
	case StrategyTheirs:
		return "theirs"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "abort", "":
		return StrategyAbort, nil
	case "ours":
		return StrategyOurs, nil
	case "theirs":
		return StrategyTheirs, nil
	default:
		return StrategyAbort, fmt.Errorf("invalid merge strategy %q (expected one of: abort, ours, theirs)", s)
	}
}

// --------------------------------------------------------------------------
// Merge Result
// --------------------------------------------------------------------------

// MergeResult holds the merged keyset and the names of keys both sides
// changed differently.
type MergeResult struct {
	Merged    *kdb.KeySet
	Conflicts []string
}

// HasConflicts reports whether the merge encountered conflicting changes.
func (r MergeResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// ConflictError is returned by Merge under StrategyAbort when both sides
// changed the same key differently. It carries the conflicting names.
type ConflictError struct {
	Keys []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict on %d key(s): %s", len(e.Keys), strings.Join(e.Keys, ", "))
}

// --------------------------------------------------------------------------
// Three-Way Merge
// --------------------------------------------------------------------------

// Merge reconciles ours (the desired state) and theirs (the live state)
// against base (their common ancestor), scoped to root.
//
// A key changed on only one side takes that side's state; a key changed
// identically on both sides passes through; a key changed differently on
// both sides is a conflict, resolved per strategy. Under StrategyAbort a
// conflict fails the merge with a ConflictError and no merged keyset is
// produced.
func Merge(base, ours, theirs *kdb.KeySet, root string, strategy Strategy) (MergeResult, error) {
	merged := kdb.NewKeySet()
	var conflicts []string

	// iterate theirs first so live ordering wins, then genuinely new keys
	names := make([]string, 0, theirs.Len()+ours.Len())
	seen := make(map[string]bool, theirs.Len()+ours.Len())
	for _, ks := range []*kdb.KeySet{theirs, ours, base} {
		for _, name := range ks.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	for _, name := range names {
		if !kdb.IsBelowOrSame(root, name) {
			continue
		}
		b, _ := base.Lookup(name)
		o, oursHas := ours.Lookup(name)
		th, theirsHas := theirs.Lookup(name)

		oursChanged := !keysEqual(b, o)
		theirsChanged := !keysEqual(b, th)

		var pick *kdb.Key
		var has bool
		switch {
		case !oursChanged && !theirsChanged:
			pick, has = th, theirsHas
		case oursChanged && !theirsChanged:
			pick, has = o, oursHas
		case !oursChanged && theirsChanged:
			pick, has = th, theirsHas
		case keysEqual(o, th):
			// both sides made the identical change
			pick, has = o, oursHas
		default:
			conflicts = append(conflicts, name)
			switch strategy {
			case StrategyOurs:
				pick, has = o, oursHas
			case StrategyTheirs:
				pick, has = th, theirsHas
			default:
				continue
			}
		}
		if has {
			merged.AppendKey(pick.Dup())
		}
	}

	sort.Strings(conflicts)
	if strategy == StrategyAbort && len(conflicts) > 0 {
		return MergeResult{Conflicts: conflicts}, &ConflictError{Keys: conflicts}
	}
	return MergeResult{Merged: merged, Conflicts: conflicts}, nil
}

// keysEqual compares two possibly absent keys.
func keysEqual(a, b *kdb.Key) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
