// Package scene models a serialized scene as an arena of records addressed
// by position. A record's index is its identity: references between records
// are stored as {"__id__": index}, so records are only ever appended and
// never removed or reordered.
package scene

import (
	"encoding/json"
	"fmt"
)

// Graph is an ordered sequence of records. Index 0 is the scene asset root.
type Graph struct {
	records []Record
}

// New creates a graph holding the given records in order
func New(records ...Record) *Graph {
	g := &Graph{records: make([]Record, 0, len(records))}
	g.records = append(g.records, records...)
	return g
}

// Len returns the number of records
func (g *Graph) Len() int {
	return len(g.records)
}

// At returns the record at index
func (g *Graph) At(index int) (Record, bool) {
	if index < 0 || index >= len(g.records) {
		return nil, false
	}
	return g.records[index], true
}

// Node returns the node record at index, or false when the index is out of
// range or holds another kind of record.
func (g *Graph) Node(index int) (*Node, bool) {
	r, ok := g.At(index)
	if !ok {
		return nil, false
	}
	n, ok := r.(*Node)
	return n, ok
}

// Records returns the records in index order. The slice is a copy; the
// records are shared.
func (g *Graph) Records() []Record {
	out := make([]Record, len(g.records))
	copy(out, g.records)
	return out
}

// Names returns the names of all node records in index order
func (g *Graph) Names() []string {
	var names []string
	for _, r := range g.records {
		if n, ok := r.(*Node); ok {
			names = append(names, n.Name)
		}
	}
	return names
}

// push appends r and returns its index
func (g *Graph) push(r Record) int {
	g.records = append(g.records, r)
	return len(g.records) - 1
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	return encodeJSON(g.records)
}

func (g *Graph) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("scene is not an array of records: %w", err)
	}
	if items == nil {
		return fmt.Errorf("scene is not an array of records: null")
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		r, err := decodeRecord(item)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}
	g.records = records
	return nil
}
