package kdb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Reserved Metadata Names
// --------------------------------------------------------------------------

const (
	// MetaPrefix is the reserved prefix under which all metadata is stored.
	// Lookups and writes canonicalize plain names (e.g. "order") to their
	// prefixed form ("meta:/order") so both spellings address the same
	// metadatum.
	MetaPrefix = "meta:/"

	// MetaOrder holds the integer position of a key within a
	// user-significant sequence.
	MetaOrder = "order"

	// MetaRemoved marks a key for deletion during reconciliation.
	// The canonical spelling is "meta:/elektra/removed".
	MetaRemoved = "elektra/removed"

	// MetaArray records the highest index of an array key ("#<n>").
	MetaArray = "array"

	// MetaRecursive flags a removal marker as recursive.
	MetaRecursive = "recursive"
)

// MountpointsRoot is the key below which the database stores its mount
// topology. Transaction rollback restores this partition separately from
// ordinary configuration.
const MountpointsRoot = "system:/elektra/mountpoints"

// MetaName canonicalizes a metadata name by prepending MetaPrefix
// if it is not already present.
func MetaName(name string) string {
	if strings.HasPrefix(name, MetaPrefix) {
		return name
	}
	return MetaPrefix + name
}

// --------------------------------------------------------------------------
// Namespaces
// --------------------------------------------------------------------------

// Namespace is the fixed category prefix of a key name. It scopes the
// visibility and precedence of a key within the database.
type Namespace string

const (
	NamespaceCascading Namespace = "cascading"
	NamespaceMeta      Namespace = "meta"
	NamespaceSpec      Namespace = "spec"
	NamespaceProc      Namespace = "proc"
	NamespaceDir       Namespace = "dir"
	NamespaceUser      Namespace = "user"
	NamespaceSystem    Namespace = "system"
	NamespaceDefault   Namespace = "default"
)

// ParseNamespace extracts the namespace from a key name. Names starting
// with "/" belong to the cascading namespace.
func ParseNamespace(name string) (Namespace, error) {
	if strings.HasPrefix(name, "/") {
		return NamespaceCascading, nil
	}
	idx := strings.Index(name, ":/")
	if idx < 0 {
		return "", fmt.Errorf("key name %q has no namespace", name)
	}
	ns := Namespace(name[:idx])
	switch ns {
	case NamespaceMeta, NamespaceSpec, NamespaceProc, NamespaceDir,
		NamespaceUser, NamespaceSystem, NamespaceDefault:
		return ns, nil
	}
	return "", fmt.Errorf("unknown namespace %q in key name %q", name[:idx], name)
}

// IsBelowOrSame reports whether name equals root or lies in the
// subtree below it. The cascading root "/" spans the whole database.
func IsBelowOrSame(root, name string) bool {
	if root == "/" {
		return true
	}
	if name == root {
		return true
	}
	r := root
	if !strings.HasSuffix(r, "/") {
		r += "/"
	}
	return strings.HasPrefix(name, r)
}

// --------------------------------------------------------------------------
// Key
// --------------------------------------------------------------------------

// Key is a single configuration entry: a hierarchical, namespace-qualified
// name, an optional string value and a set of name-unique metadata.
type Key struct {
	name  string
	value string
	meta  map[string]string
}

// NewKey creates a key with an empty value.
func NewKey(name string) *Key {
	return &Key{name: name}
}

// NewKeyValue creates a key with the given value.
func NewKeyValue(name, value string) *Key {
	return &Key{name: name, value: value}
}

// Name returns the fully qualified key name.
func (k *Key) Name() string {
	return k.name
}

// Value returns the key value ("" if unset).
func (k *Key) Value() string {
	return k.value
}

// SetValue replaces the key value.
func (k *Key) SetValue(value string) {
	k.value = value
}

// Namespace returns the namespace of the key name.
func (k *Key) Namespace() Namespace {
	ns, err := ParseNamespace(k.name)
	if err != nil {
		return NamespaceCascading
	}
	return ns
}

// Meta returns the value of the named metadatum. The name may be given
// with or without the reserved prefix.
func (k *Key) Meta(name string) (string, bool) {
	if k.meta == nil {
		return "", false
	}
	v, ok := k.meta[MetaName(name)]
	return v, ok
}

// HasMeta reports whether the named metadatum exists.
func (k *Key) HasMeta(name string) bool {
	_, ok := k.Meta(name)
	return ok
}

// SetMeta sets the named metadatum, replacing any previous value.
func (k *Key) SetMeta(name, value string) {
	if k.meta == nil {
		k.meta = make(map[string]string)
	}
	k.meta[MetaName(name)] = value
}

// DelMeta removes the named metadatum. Removing a nonexistent
// metadatum is a no-op.
func (k *Key) DelMeta(name string) {
	delete(k.meta, MetaName(name))
}

// MetaNames returns the canonical names of all metadata, sorted.
func (k *Key) MetaNames() []string {
	names := make([]string, 0, len(k.meta))
	for name := range k.meta {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Order returns the integer "order" metadatum. The boolean is false if
// the metadatum is missing or not an integer.
func (k *Key) Order() (int, bool) {
	v, ok := k.Meta(MetaOrder)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetOrder sets the integer "order" metadatum.
func (k *Key) SetOrder(order int) {
	k.SetMeta(MetaOrder, strconv.Itoa(order))
}

// IsBelowOrSame reports whether the key equals root or lies below it.
func (k *Key) IsBelowOrSame(root string) bool {
	return IsBelowOrSame(root, k.name)
}

// Dup returns a deep, independently owned copy of the key.
// Mutating the copy never affects the original.
func (k *Key) Dup() *Key {
	dup := &Key{name: k.name, value: k.value}
	if k.meta != nil {
		dup.meta = make(map[string]string, len(k.meta))
		for name, value := range k.meta {
			dup.meta[name] = value
		}
	}
	return dup
}

// Equal reports whether two keys have the same name, value and metadata.
func (k *Key) Equal(other *Key) bool {
	if other == nil {
		return false
	}
	if k.name != other.name || k.value != other.value {
		return false
	}
	if len(k.meta) != len(other.meta) {
		return false
	}
	for name, value := range k.meta {
		if ov, ok := other.meta[name]; !ok || ov != value {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer for diagnostics.
func (k *Key) String() string {
	return fmt.Sprintf("%s = %q", k.name, k.value)
}
