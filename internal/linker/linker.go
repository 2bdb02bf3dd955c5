// Package linker connects documents whose embeddings are close in cosine
// similarity.
package linker

import (
	"fmt"
	"math"

	"semgraph/internal/domain"
)

// Options configures a Linker.
type Options struct {
	// Threshold is the strict lower bound on cosine similarity for a link.
	Threshold float64
	// Scale multiplies the similarity before rounding to three decimals.
	Scale   float64
	RelType string
}

// Linker emits one link per unordered document pair above the threshold.
type Linker struct {
	opts Options
}

// New creates a linker. A zero Scale means raw similarity.
func New(opts Options) *Linker {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	return &Linker{opts: opts}
}

// Link compares every pair (i, j) with i < j and emits a link from ids[i] to
// ids[j] when sim(i, j) > Threshold. Links come out ordered by i, then j.
// Value is round(sim * Scale, 3). With Scale 1 a pair whose value rounds
// down to the threshold is dropped, so every emitted value is above it.
func (l *Linker) Link(ids []string, embeddings []domain.Embedding) ([]domain.Link, error) {
	if len(ids) != len(embeddings) {
		return nil, fmt.Errorf("ids and embeddings length mismatch: %d != %d", len(ids), len(embeddings))
	}
	sim, err := Similarity(embeddings)
	if err != nil {
		return nil, err
	}
	links := make([]domain.Link, 0)
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if sim[i][j] <= l.opts.Threshold {
				continue
			}
			value := round3(sim[i][j] * l.opts.Scale)
			if l.opts.Scale == 1 && value <= l.opts.Threshold {
				continue
			}
			links = append(links, domain.Link{
				Source:  ids[i],
				Target:  ids[j],
				Value:   value,
				RelType: l.opts.RelType,
			})
		}
	}
	return links, nil
}

// Similarity returns the full cosine similarity matrix. The matrix is exactly
// symmetric and its diagonal is 1. A zero vector has similarity 0 to
// every other vector.
func Similarity(embeddings []domain.Embedding) ([][]float64, error) {
	n := len(embeddings)
	if n == 0 {
		return nil, nil
	}
	dim := len(embeddings[0])
	norms := make([]float64, n)
	for i, e := range embeddings {
		if len(e) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(e), dim)
		}
		norms[i] = math.Sqrt(dot(e, e))
	}
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
		sim[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := 0.0
			if norms[i] > 0 && norms[j] > 0 {
				s = dot(embeddings[i], embeddings[j]) / (norms[i] * norms[j])
			}
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
