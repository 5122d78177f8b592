package scene

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/scenepatch/scenepatch/internal/errors"
)

// DefaultInjectedName is the name given to injected nodes
const DefaultInjectedName = "InjectedNode"

type injectConfig struct {
	name  string
	newID func() string
}

// InjectOption configures InjectComponentNode
type InjectOption func(*injectConfig)

// WithNodeName sets the name of the injected node
func WithNodeName(name string) InjectOption {
	return func(c *injectConfig) {
		c.name = name
	}
}

// WithIDGenerator overrides how the injected node's _id is produced
func WithIDGenerator(fn func() string) InjectOption {
	return func(c *injectConfig) {
		c.newID = fn
	}
}

// AutoGenID returns an editor-style node id: "auto-gen-" followed by nine
// random characters.
func AutoGenID() string {
	return "auto-gen-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// InjectComponentNode appends a new node under the node at anchor, followed
// by a component of type componentType attached to it. The new records take
// the next two indices; no existing record moves. The anchor's child list
// gains a reference to the new node.
func (g *Graph) InjectComponentNode(anchor int, componentType string, opts ...InjectOption) (nodeIndex, componentIndex int, err error) {
	cfg := injectConfig{
		name:  DefaultInjectedName,
		newID: AutoGenID,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	parent, ok := g.Node(anchor)
	if !ok {
		return -1, -1, errors.New(errors.AnchorNotFound, strconv.Itoa(anchor), "record %d is not a node in a graph of %d records", anchor, g.Len())
	}

	nodeIndex = g.Len()
	componentIndex = nodeIndex + 1

	g.push(NewNode(cfg.name, anchor, componentIndex, cfg.newID()))
	g.push(NewComponent(componentType, nodeIndex))
	parent.AppendChild(nodeIndex)

	return nodeIndex, componentIndex, nil
}

type color struct {
	Type string `json:"__type__"`
	R    int    `json:"r"`
	G    int    `json:"g"`
	B    int    `json:"b"`
	A    int    `json:"a"`
}

type size struct {
	Type   string  `json:"__type__"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type vec2 struct {
	Type string  `json:"__type__"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type vec3 struct {
	Type string  `json:"__type__"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// NewNode builds a node record with the editor's default presentation
// attributes, parented to parent and owning a single component.
func NewNode(name string, parent, component int, id string) *Node {
	f := newObject()
	f.slot(fieldType)
	f.slot(fieldName)
	f.set("_objFlags", 0)
	f.slot(fieldParent)
	f.slot(fieldChildren)
	f.set("_active", true)
	f.set("_level", 1)
	f.slot(fieldComponents)
	f.set("_prefab", nil)
	f.set("_opacity", 255)
	f.set("_color", color{Type: "cc.Color", R: 255, G: 255, B: 255, A: 255})
	f.set("_contentSize", size{Type: "cc.Size"})
	f.set("_anchorPoint", vec2{Type: "cc.Vec2", X: 0.5, Y: 0.5})
	f.set("_position", vec3{Type: "cc.Vec3", Z: 379.31913})
	f.set("_scale", vec3{Type: "cc.Vec3", X: 1, Y: 1, Z: 1})
	f.set("_eulerAngles", vec3{Type: "cc.Vec3"})
	f.set("_skewX", 0)
	f.set("_skewY", 0)
	f.set("_is3DNode", false)
	f.set("groupIndex", 0)
	f.set("_id", id)

	return &Node{
		Name:       name,
		Parent:     &Ref{ID: parent},
		Children:   []Ref{},
		Components: []Ref{{ID: component}},
		fields:     f,
	}
}

// NewComponent builds an enabled component record of the given type
// attached to the node at owner.
func NewComponent(componentType string, owner int) *Component {
	f := newObject()
	f.slot(fieldType)
	f.set("_name", "")
	f.set("_objFlags", 0)
	f.slot(fieldOwner)
	f.slot(fieldEnabled)

	return &Component{
		Type:    componentType,
		Owner:   Ref{ID: owner},
		Enabled: true,
		fields:  f,
	}
}
