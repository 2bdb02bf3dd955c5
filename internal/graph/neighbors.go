package graph

import (
	"sort"

	"semgraph/internal/domain"
)

// Neighbor is a node linked to another one, with the link weight.
type Neighbor struct {
	ID      string
	Value   float64
	RelType string
}

// Neighbors lists the nodes linked to id in either direction, strongest link
// first. Equal weights are ordered by id.
func Neighbors(g domain.Graph, id string) []Neighbor {
	var out []Neighbor
	for _, l := range g.Links {
		switch id {
		case l.Source:
			out = append(out, Neighbor{ID: l.Target, Value: l.Value, RelType: l.RelType})
		case l.Target:
			out = append(out, Neighbor{ID: l.Source, Value: l.Value, RelType: l.RelType})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].ID < out[j].ID
	})
	return out
}
