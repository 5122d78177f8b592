package scene

import (
	"strconv"

	"github.com/scenepatch/scenepatch/internal/errors"
)

// FindNodeByName returns the index of the first node record named name,
// scanning in ascending index order. Matching is exact.
func (g *Graph) FindNodeByName(name string) (int, error) {
	for i, r := range g.records {
		if n, ok := r.(*Node); ok && n.Name == name {
			return i, nil
		}
	}
	return -1, errors.New(errors.ResolutionFailure, name, "no node named %q among %d records", name, len(g.records))
}

// FirstComponentType returns the type name of the first component attached
// to the node at index.
func (g *Graph) FirstComponentType(index int) (string, error) {
	n, ok := g.Node(index)
	if !ok {
		return "", errors.New(errors.AnchorNotFound, strconv.Itoa(index), "record %d is not a node", index)
	}
	if len(n.Components) == 0 {
		return "", errors.New(errors.ResolutionFailure, n.Name, "node %q has no components", n.Name)
	}
	ref := n.Components[0]
	r, ok := g.At(ref.ID)
	if !ok {
		return "", errors.New(errors.ParseError, n.Name, "component reference %d is out of range", ref.ID)
	}
	return r.TypeName(), nil
}

// FindChild returns the index of the first child of the node at parent whose
// name is name.
func (g *Graph) FindChild(parent int, name string) (int, bool) {
	n, ok := g.Node(parent)
	if !ok {
		return -1, false
	}
	for _, ref := range n.Children {
		if child, ok := g.Node(ref.ID); ok && child.Name == name {
			return ref.ID, true
		}
	}
	return -1, false
}
