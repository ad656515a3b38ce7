package flatten

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// --------------------------------------------------------------------------
// Flattened Key Descriptors
// --------------------------------------------------------------------------

// Descriptor is the flat representation of one key path: its value, its
// path-qualified metadata and its removal flag. Metadata values are
// themselves descriptors, because a metadatum may carry a value and
// descendant metadata at the same time.
type Descriptor struct {
	Value    string
	HasValue bool
	Remove   bool
	Meta     *orderedmap.OrderedMap[string, *Descriptor]
}

// MetaValue returns the value of the named metadata entry.
func (d *Descriptor) MetaValue(name string) (string, bool) {
	if d.Meta == nil {
		return "", false
	}
	md, ok := d.Meta.Get(name)
	if !ok {
		return "", false
	}
	return md.Value, true
}

// MetaLen returns the number of metadata entries.
func (d *Descriptor) MetaLen() int {
	if d.Meta == nil {
		return 0
	}
	return d.Meta.Len()
}

func (d *Descriptor) setMeta(name string, md *Descriptor) {
	if d.Meta == nil {
		d.Meta = orderedmap.New[string, *Descriptor]()
	}
	d.Meta.Set(name, md)
}

// Flattened maps fully qualified key names to their descriptors,
// preserving first-seen traversal order.
type Flattened = orderedmap.OrderedMap[string, *Descriptor]

// --------------------------------------------------------------------------
// Flatten
// --------------------------------------------------------------------------

// Flatten converts a nested declarative document into an ordered mapping
// from fully qualified key name to descriptor.
//
// When firstLevelIsNamespace is set, a first-level path segment without a
// ":" gets one appended, so "system" becomes the namespace root
// "system:" and its children "system:/...". Metadata subtrees are
// flattened with the flag unset.
//
// A sequence below a path is a list of directive objects (value, remove,
// meta, keys, array) evaluated in order; a sequence at the document root
// is a list of document fragments that are merged.
func Flatten(doc *Node, firstLevelIsNamespace bool) (*Flattened, error) {
	f := &flattener{
		out:            orderedmap.New[string, *Descriptor](),
		namespaceFirst: firstLevelIsNamespace,
	}
	if err := f.node(doc, ""); err != nil {
		return nil, err
	}
	return f.out, nil
}

type flattener struct {
	out            *Flattened
	namespaceFirst bool
}

func (f *flattener) node(n *Node, path string) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindScalar:
		if path == "" {
			return fmt.Errorf("scalar value at document root")
		}
		d := f.desc(path)
		d.Value = n.Value
		d.HasValue = true
		return nil
	case KindMapping:
		for _, e := range n.Entries {
			if err := f.node(e.Node, f.join(path, e.Key)); err != nil {
				return err
			}
		}
		return nil
	case KindSequence:
		if path == "" {
			// top level: a list of document fragments
			for _, item := range n.Items {
				if err := f.node(item, ""); err != nil {
					return err
				}
			}
			return nil
		}
		return f.directives(n, path)
	default:
		return fmt.Errorf("unsupported node kind %v at %q", n.Kind, path)
	}
}

// directives evaluates a list of directive objects for path, in order.
func (f *flattener) directives(n *Node, path string) error {
	for _, item := range n.Items {
		if item == nil {
			continue
		}
		if item.Kind != KindMapping {
			return fmt.Errorf("directive for %q must be a mapping, got %v", path, item.Kind)
		}
		for _, e := range item.Entries {
			switch e.Key {
			case "value":
				if e.Node == nil || e.Node.Kind != KindScalar {
					return fmt.Errorf("value directive for %q must be a scalar", path)
				}
				d := f.desc(path)
				d.Value = e.Node.Value
				d.HasValue = true
			case "remove":
				if e.Node.Bool() {
					f.desc(path).Remove = true
				}
			case "meta":
				sub, err := Flatten(e.Node, false)
				if err != nil {
					return fmt.Errorf("meta directive for %q: %w", path, err)
				}
				d := f.desc(path)
				for pair := sub.Oldest(); pair != nil; pair = pair.Next() {
					d.setMeta(pair.Key, pair.Value)
				}
			case "keys":
				if err := f.node(e.Node, path); err != nil {
					return err
				}
			case "array":
				if err := f.array(e.Node, path); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown directive %q for %q", e.Key, path)
			}
		}
	}
	return nil
}

// array flattens the elements of an array directive under synthetic
// index names #0, #1, ... and records the highest index in the parent's
// "array" metadata.
func (f *flattener) array(n *Node, path string) error {
	if n == nil || n.Kind != KindSequence {
		return fmt.Errorf("array directive for %q must be a sequence", path)
	}
	last := -1
	for i, elem := range n.Items {
		idxPath := path + "/#" + strconv.Itoa(i)
		target := elem
		// an element of the form {"#": X} flattens X at the index
		// instead of wrapping further
		if elem != nil && elem.Kind == KindMapping && len(elem.Entries) == 1 && elem.Entries[0].Key == "#" {
			target = elem.Entries[0].Node
		}
		if err := f.node(target, idxPath); err != nil {
			return err
		}
		last = i
	}
	if last >= 0 {
		f.desc(path).setMeta("array", &Descriptor{Value: "#" + strconv.Itoa(last), HasValue: true})
	}
	return nil
}

// desc returns the descriptor for path, creating it in first-touch order.
func (f *flattener) desc(path string) *Descriptor {
	if d, ok := f.out.Get(path); ok {
		return d
	}
	d := &Descriptor{}
	f.out.Set(path, d)
	return d
}

// join concatenates path segments with "/". At the first level the
// namespace separator ":" is appended to bare segments when requested.
func (f *flattener) join(parent, seg string) string {
	if parent == "" {
		if f.namespaceFirst && !strings.Contains(seg, ":") {
			return seg + ":"
		}
		return seg
	}
	if strings.HasSuffix(parent, "/") || strings.HasSuffix(parent, ":") {
		return strings.TrimSuffix(parent, "/") + "/" + seg
	}
	return parent + "/" + seg
}
