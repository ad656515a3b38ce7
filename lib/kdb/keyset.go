package kdb

// --------------------------------------------------------------------------
// KeySet
// --------------------------------------------------------------------------

// KeySet is an ordered collection of keys, unique by name. Appending a key
// whose name already exists replaces the stored key in place, keeping its
// position. Each KeySet owns its keys exclusively; Dup produces fully
// independent copies.
type KeySet struct {
	keys  []*Key
	index map[string]int
}

// NewKeySet creates a keyset holding the given keys (appended in order).
func NewKeySet(keys ...*Key) *KeySet {
	ks := &KeySet{index: make(map[string]int)}
	for _, k := range keys {
		ks.AppendKey(k)
	}
	return ks
}

// Len returns the number of keys.
func (ks *KeySet) Len() int {
	return len(ks.keys)
}

// AppendKey adds a key to the set. If a key with the same name exists it
// is replaced in place.
func (ks *KeySet) AppendKey(k *Key) {
	if pos, ok := ks.index[k.name]; ok {
		ks.keys[pos] = k
		return
	}
	ks.index[k.name] = len(ks.keys)
	ks.keys = append(ks.keys, k)
}

// Append adds all keys of other to the set (replacing by name).
func (ks *KeySet) Append(other *KeySet) {
	for _, k := range other.keys {
		ks.AppendKey(k)
	}
}

// Lookup returns the key with the exact given name.
func (ks *KeySet) Lookup(name string) (*Key, bool) {
	pos, ok := ks.index[name]
	if !ok {
		return nil, false
	}
	return ks.keys[pos], true
}

// Pop removes and returns the key with the exact given name.
// The boolean is false if no such key exists.
func (ks *KeySet) Pop(name string) (*Key, bool) {
	pos, ok := ks.index[name]
	if !ok {
		return nil, false
	}
	k := ks.keys[pos]
	ks.keys = append(ks.keys[:pos], ks.keys[pos+1:]...)
	delete(ks.index, name)
	for i := pos; i < len(ks.keys); i++ {
		ks.index[ks.keys[i].name] = i
	}
	return k, true
}

// Cut atomically removes and returns all keys at or below root.
// The keys removed from the set are exactly those returned.
func (ks *KeySet) Cut(root string) *KeySet {
	cut := NewKeySet()
	remaining := ks.keys[:0:0]
	for _, k := range ks.keys {
		if k.IsBelowOrSame(root) {
			cut.AppendKey(k)
		} else {
			remaining = append(remaining, k)
		}
	}
	ks.keys = remaining
	ks.index = make(map[string]int, len(remaining))
	for i, k := range remaining {
		ks.index[k.name] = i
	}
	return cut
}

// Dup returns a deep copy: every key is duplicated, so mutation of the
// copy never aliases the original.
func (ks *KeySet) Dup() *KeySet {
	dup := NewKeySet()
	for _, k := range ks.keys {
		dup.AppendKey(k.Dup())
	}
	return dup
}

// Keys returns the keys in stored order. The slice is a copy, the keys
// are not.
func (ks *KeySet) Keys() []*Key {
	out := make([]*Key, len(ks.keys))
	copy(out, ks.keys)
	return out
}

// Names returns all key names in stored order.
func (ks *KeySet) Names() []string {
	names := make([]string, len(ks.keys))
	for i, k := range ks.keys {
		names[i] = k.name
	}
	return names
}

// Equal reports whether both sets hold equal keys under the same names,
// regardless of stored order.
func (ks *KeySet) Equal(other *KeySet) bool {
	if other == nil || ks.Len() != other.Len() {
		return false
	}
	for _, k := range ks.keys {
		ok2, found := other.Lookup(k.name)
		if !found || !k.Equal(ok2) {
			return false
		}
	}
	return true
}
