package flatten

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// Document Nodes
// --------------------------------------------------------------------------

// Kind tags the variant of a document node.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Node is one node of a declarative configuration document: a scalar, an
// order-preserving mapping or a sequence. Documents are decoded from YAML
// (or JSON, which YAML subsumes) without losing the author's key order.
type Node struct {
	Kind    Kind
	Value   string  // scalar literal
	Entries []Entry // mapping entries, in document order
	Items   []*Node // sequence items, in document order
}

// Entry is one mapping entry.
type Entry struct {
	Key  string
	Node *Node
}

// Scalar creates a scalar node.
func Scalar(value string) *Node {
	return &Node{Kind: KindScalar, Value: value}
}

// Bool interprets a scalar node as a boolean. Non-scalar nodes and
// unparsable literals report false.
func (n *Node) Bool() bool {
	if n == nil || n.Kind != KindScalar {
		return false
	}
	b, err := strconv.ParseBool(strings.ToLower(n.Value))
	return err == nil && b
}

// Get returns the node stored under key in a mapping node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindMapping {
		return nil, false
	}
	for _, e := range n.Entries {
		if e.Key == key {
			return e.Node, true
		}
	}
	return nil, false
}

// --------------------------------------------------------------------------
// YAML Decoding
// --------------------------------------------------------------------------

// ParseYAML decodes a YAML document into a Node tree. An empty document
// yields a nil node.
func ParseYAML(data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return FromYAML(&root)
}

// FromYAML converts a decoded yaml.Node into a Node tree, preserving
// mapping key order.
func FromYAML(n *yaml.Node) (*Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case 0:
		// zero node, produced by unmarshalling an empty document
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromYAML(n.Content[0])
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	case yaml.ScalarNode:
		return Scalar(n.Value), nil
	case yaml.MappingNode:
		node := &Node{Kind: KindMapping}
		for i := 0; i+1 < len(n.Content); i += 2 {
			child, err := FromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			node.Entries = append(node.Entries, Entry{Key: n.Content[i].Value, Node: child})
		}
		return node, nil
	case yaml.SequenceNode:
		node := &Node{Kind: KindSequence}
		for _, item := range n.Content {
			child, err := FromYAML(item)
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, child)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}
