package scene

import "fmt"

// Violation describes a single broken reference in a graph
type Violation struct {
	Index   int    // record holding the reference
	Message string // human-readable description
}

func (v Violation) Error() string {
	return fmt.Sprintf("record %d: %s", v.Index, v.Message)
}

// Validate checks every modelled reference in g: parent, child and component
// lists of nodes and the owner of components must point inside the graph,
// children must name their parent back, and a component's owner must list
// the component. An empty result means the graph is consistent. Validate
// never mutates the graph.
func (g *Graph) Validate() []Violation {
	var out []Violation
	for i, r := range g.records {
		switch rec := r.(type) {
		case *Node:
			out = append(out, g.validateNode(i, rec)...)
		case *Component:
			out = append(out, g.validateComponent(i, rec)...)
		}
	}
	return out
}

func (g *Graph) validateNode(i int, n *Node) []Violation {
	var out []Violation
	if n.Parent != nil {
		if _, ok := g.At(n.Parent.ID); !ok {
			out = append(out, Violation{i, fmt.Sprintf("parent %d out of range", n.Parent.ID)})
		}
	}
	for _, ref := range n.Children {
		r, ok := g.At(ref.ID)
		if !ok {
			out = append(out, Violation{i, fmt.Sprintf("child %d out of range", ref.ID)})
			continue
		}
		child, ok := r.(*Node)
		if !ok {
			continue
		}
		if child.Parent == nil || child.Parent.ID != i {
			out = append(out, Violation{i, fmt.Sprintf("child %d does not name %d as parent", ref.ID, i)})
		}
	}
	for _, ref := range n.Components {
		r, ok := g.At(ref.ID)
		if !ok {
			out = append(out, Violation{i, fmt.Sprintf("component %d out of range", ref.ID)})
			continue
		}
		comp, ok := r.(*Component)
		if !ok {
			out = append(out, Violation{i, fmt.Sprintf("component %d is a %s record", ref.ID, r.Kind())})
			continue
		}
		if comp.Owner.ID != i {
			out = append(out, Violation{i, fmt.Sprintf("component %d is owned by %d", ref.ID, comp.Owner.ID)})
		}
	}
	return out
}

func (g *Graph) validateComponent(i int, c *Component) []Violation {
	owner, ok := g.Node(c.Owner.ID)
	if !ok {
		return []Violation{{i, fmt.Sprintf("owner %d is not a node", c.Owner.ID)}}
	}
	for _, ref := range owner.Components {
		if ref.ID == i {
			return nil
		}
	}
	return []Violation{{i, fmt.Sprintf("owner %d does not list this component", c.Owner.ID)}}
}
