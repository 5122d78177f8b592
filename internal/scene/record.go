package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeType is the type tag of node records
const NodeType = "cc.Node"

// Serialized field names
const (
	fieldType       = "__type__"
	fieldName       = "_name"
	fieldParent     = "_parent"
	fieldChildren   = "_children"
	fieldComponents = "_components"
	fieldOwner      = "node"
	fieldEnabled    = "_enabled"
)

// Kind is the variant of a record
type Kind int

const (
	// KindOpaque is any record this package does not interpret
	KindOpaque Kind = iota
	// KindNode is a scene node
	KindNode
	// KindComponent is a component attached to a node
	KindComponent
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindComponent:
		return "component"
	default:
		return "opaque"
	}
}

// Ref is a reference to another record by its index in the graph
type Ref struct {
	ID int `json:"__id__"`
}

// Record is one element of a scene graph. The concrete type is one of
// *Node, *Component or *Opaque.
type Record interface {
	Kind() Kind
	TypeName() string
	json.Marshaler
}

// Node is a scene node record
type Node struct {
	Name       string
	Parent     *Ref
	Children   []Ref
	Components []Ref

	fields object
	// lists loaded as null, written back as null while they stay nil
	nullLists map[string]bool
}

func (n *Node) Kind() Kind       { return KindNode }
func (n *Node) TypeName() string { return NodeType }

// AppendChild adds a child reference, creating the child list when the
// record was loaded without one.
func (n *Node) AppendChild(index int) {
	if !n.fields.has(fieldChildren) {
		n.fields.slot(fieldChildren)
	}
	n.Children = append(n.Children, Ref{ID: index})
}

func (n *Node) MarshalJSON() ([]byte, error) {
	typed := map[string]any{
		fieldType: NodeType,
		fieldName: n.Name,
	}
	typed[fieldParent] = n.Parent
	typed[fieldChildren] = n.refList(fieldChildren, n.Children)
	typed[fieldComponents] = n.refList(fieldComponents, n.Components)
	return n.fields.marshal(typed)
}

// Component is a record attached to a node through its "node" reference
type Component struct {
	Type    string
	Owner   Ref
	Enabled bool

	fields object
}

func (c *Component) Kind() Kind       { return KindComponent }
func (c *Component) TypeName() string { return c.Type }

func (c *Component) MarshalJSON() ([]byte, error) {
	return c.fields.marshal(map[string]any{
		fieldType:    c.Type,
		fieldOwner:   c.Owner,
		fieldEnabled: c.Enabled,
	})
}

// Opaque is a record kept verbatim (scene assets, prefab info, value types...)
type Opaque struct {
	Type string

	fields object
}

func (o *Opaque) Kind() Kind       { return KindOpaque }
func (o *Opaque) TypeName() string { return o.Type }

func (o *Opaque) MarshalJSON() ([]byte, error) {
	return o.fields.marshal(map[string]any{fieldType: o.Type})
}

// decodeRecord picks the variant for a raw record by its type tag: node
// records are tagged NodeType, components are recognised by their owner
// reference, everything else is opaque. A "node" field that is not a
// reference belongs to some other data class and leaves the record opaque.
func decodeRecord(data []byte) (Record, error) {
	var fields object
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	raw, ok := fields.get(fieldType)
	if !ok {
		return nil, fmt.Errorf("missing %s", fieldType)
	}
	var typeName string
	if err := json.Unmarshal(raw, &typeName); err != nil {
		return nil, fmt.Errorf("%s: %w", fieldType, err)
	}
	fields.slot(fieldType)

	if typeName == NodeType {
		return decodeNode(fields)
	}
	if raw, ok := fields.get(fieldOwner); ok {
		if owner, err := decodeRef(raw); err == nil && owner != nil {
			return decodeComponent(typeName, *owner, fields)
		}
	}
	return &Opaque{Type: typeName, fields: fields}, nil
}

func decodeNode(fields object) (*Node, error) {
	n := &Node{fields: fields}

	if raw, ok := fields.get(fieldName); ok {
		if err := json.Unmarshal(raw, &n.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", fieldName, err)
		}
		n.fields.slot(fieldName)
	}
	if raw, ok := fields.get(fieldParent); ok {
		parent, err := decodeRef(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldParent, err)
		}
		n.Parent = parent
		n.fields.slot(fieldParent)
	}
	for _, list := range []struct {
		key string
		dst *[]Ref
	}{
		{fieldChildren, &n.Children},
		{fieldComponents, &n.Components},
	} {
		raw, ok := fields.get(list.key)
		if !ok {
			continue
		}
		refs, err := decodeRefList(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", list.key, err)
		}
		if refs == nil {
			if n.nullLists == nil {
				n.nullLists = make(map[string]bool)
			}
			n.nullLists[list.key] = true
		}
		*list.dst = refs
		n.fields.slot(list.key)
	}
	return n, nil
}

func decodeComponent(typeName string, owner Ref, fields object) (*Component, error) {
	c := &Component{Type: typeName, Owner: owner, fields: fields}
	c.fields.slot(fieldOwner)

	if raw, ok := fields.get(fieldEnabled); ok {
		if err := json.Unmarshal(raw, &c.Enabled); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typeName, fieldEnabled, err)
		}
		c.fields.slot(fieldEnabled)
	}
	return c, nil
}

// decodeRef decodes {"__id__": n}; null decodes to nil
func decodeRef(raw json.RawMessage) (*Ref, error) {
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var ref struct {
		ID *int `json:"__id__"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, err
	}
	if ref.ID == nil {
		return nil, fmt.Errorf("reference without %q", "__id__")
	}
	return &Ref{ID: *ref.ID}, nil
}

// decodeRefList decodes a list of references; null decodes to nil
func decodeRefList(raw json.RawMessage) ([]Ref, error) {
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	refs := make([]Ref, 0, len(items))
	for i, item := range items {
		ref, err := decodeRef(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		if ref == nil {
			return nil, fmt.Errorf("[%d]: null reference", i)
		}
		refs = append(refs, *ref)
	}
	return refs, nil
}

// refList returns the value written for a reference list. A list loaded as
// null stays null until something is appended; any other nil list is [].
func (n *Node) refList(key string, refs []Ref) []Ref {
	if refs == nil && !n.nullLists[key] {
		return []Ref{}
	}
	return refs
}
