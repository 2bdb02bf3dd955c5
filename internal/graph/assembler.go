// Package graph merges the per-document analysis results into the node/link
// graph and writes it out as JSON.
package graph

import (
	"fmt"
	"math"

	"semgraph/internal/domain"
)

// Assembler builds the output graph. Apart from the node radius it computes
// nothing: every other value is copied from its producing stage.
type Assembler struct {
	radiusBase    float64
	radiusDivisor float64
}

// NewAssembler creates an assembler. Node radius is
// radiusBase + wordCount/radiusDivisor, rounded to two decimals.
func NewAssembler(radiusBase, radiusDivisor float64) *Assembler {
	return &Assembler{radiusBase: radiusBase, radiusDivisor: radiusDivisor}
}

// Assemble joins documents with their cluster labels, keywords and the links.
// Nodes keep document order; links keep the order they were given in.
func (a *Assembler) Assemble(docs []domain.Document, labels []int, keywords [][]string, links []domain.Link) (domain.Graph, error) {
	if len(labels) != len(docs) {
		return domain.Graph{}, fmt.Errorf("have %d cluster labels for %d documents", len(labels), len(docs))
	}
	if len(keywords) != len(docs) {
		return domain.Graph{}, fmt.Errorf("have %d keyword sets for %d documents", len(keywords), len(docs))
	}
	if a.radiusDivisor <= 0 {
		return domain.Graph{}, fmt.Errorf("radius divisor must be positive, got %v", a.radiusDivisor)
	}
	nodes := make([]domain.Node, len(docs))
	for i, d := range docs {
		nodes[i] = domain.Node{
			ID:          d.ID,
			Group:       labels[i],
			TopKeywords: append(make([]string, 0, len(keywords[i])), keywords[i]...),
			Metrics: domain.Metrics{
				Size:      d.WordCount,
				DateScore: d.FreshnessScore,
				Radius:    a.Radius(d.WordCount),
			},
		}
	}
	return domain.Graph{
		Nodes: nodes,
		Links: append(make([]domain.Link, 0, len(links)), links...),
	}, nil
}

// Radius is the visual weight of a node with wordCount words.
func (a *Assembler) Radius(wordCount int) float64 {
	r := a.radiusBase + float64(wordCount)/a.radiusDivisor
	return math.Round(r*100) / 100
}
