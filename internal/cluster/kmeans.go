// Package cluster groups document embeddings into themes with k-means.
package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"semgraph/internal/domain"
)

// KMeans is a seeded k-means++ / Lloyd clusterer. The same seed and input
// always produce the same labels.
type KMeans struct {
	k       int
	seed    int64
	maxIter int
}

// New creates a clusterer for up to k clusters.
func New(k int, seed int64, maxIter int) *KMeans {
	if maxIter <= 0 {
		maxIter = 300
	}
	return &KMeans{k: k, seed: seed, maxIter: maxIter}
}

// Cluster assigns every embedding a label in [0, K) with K = min(k, n) and
// returns the labels and K. Every cluster receives at least one embedding.
// Labels are numbered in order of first appearance, so the first document is
// always in cluster 0.
func (c *KMeans) Cluster(embeddings []domain.Embedding) ([]int, int, error) {
	n := len(embeddings)
	if n == 0 {
		return nil, 0, nil
	}
	if c.k < 1 {
		return nil, 0, fmt.Errorf("cluster count must be at least 1, got %d", c.k)
	}
	dim := len(embeddings[0])
	for i, e := range embeddings {
		if len(e) != dim {
			return nil, 0, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(e), dim)
		}
	}
	k := min(c.k, n)
	rng := rand.New(rand.NewSource(c.seed))
	centroids := initPlusPlus(embeddings, k, rng)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for iter := 0; iter < c.maxIter; iter++ {
		changed := false
		for i, x := range embeddings {
			best := nearest(x, centroids)
			// Stay put on ties so coincident points do not oscillate.
			if cur := labels[i]; cur >= 0 && sqDist(x, centroids[cur]) <= sqDist(x, centroids[best]) {
				best = cur
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if fillEmpty(embeddings, centroids, labels) {
			changed = true
		}
		if !changed {
			break
		}
		centroids = means(embeddings, labels, k, dim)
	}
	return relabel(labels, k), k, nil
}

// initPlusPlus picks k starting centroids: the first uniformly, the rest with
// probability proportional to their squared distance from the chosen ones.
func initPlusPlus(points []domain.Embedding, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	chosen := make([]bool, n)
	first := rng.Intn(n)
	chosen[first] = true
	centroids := [][]float64{clone(points[first])}

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = sqDist(p, centroids[0])
	}
	for len(centroids) < k {
		total := 0.0
		for _, d := range d2 {
			total += d
		}
		next := -1
		if total > 0 {
			r := rng.Float64() * total
			for i, d := range d2 {
				if d == 0 {
					continue
				}
				next = i
				if r -= d; r < 0 {
					break
				}
			}
		} else {
			// All remaining points coincide with a centroid.
			for i := range points {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		chosen[next] = true
		centroids = append(centroids, clone(points[next]))
		for i, p := range points {
			d2[i] = math.Min(d2[i], sqDist(p, points[next]))
		}
	}
	return centroids
}

// fillEmpty moves, for every empty cluster, the point farthest from its own
// centroid (taken from a cluster with more than one member) into it.
func fillEmpty(points []domain.Embedding, centroids [][]float64, labels []int) bool {
	sizes := make([]int, len(centroids))
	for _, l := range labels {
		sizes[l]++
	}
	moved := false
	for j, size := range sizes {
		if size > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, p := range points {
			if sizes[labels[i]] < 2 {
				continue
			}
			if d := sqDist(p, centroids[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			continue
		}
		sizes[labels[far]]--
		labels[far] = j
		sizes[j]++
		centroids[j] = clone(points[far])
		moved = true
	}
	return moved
}

func means(points []domain.Embedding, labels []int, k, dim int) [][]float64 {
	sums := make([][]float64, k)
	for j := range sums {
		sums[j] = make([]float64, dim)
	}
	counts := make([]int, k)
	for i, p := range points {
		l := labels[i]
		for d, x := range p {
			sums[l][d] += x
		}
		counts[l]++
	}
	for j := range sums {
		if counts[j] == 0 {
			continue
		}
		scale := 1.0 / float64(counts[j])
		for d := range sums[j] {
			sums[j][d] *= scale
		}
	}
	return sums
}

// nearest returns the index of the closest centroid; ties go to the lower index.
func nearest(x []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for j, c := range centroids {
		if d := sqDist(x, c); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func relabel(labels []int, k int) []int {
	mapping := make([]int, k)
	for j := range mapping {
		mapping[j] = -1
	}
	next := 0
	out := make([]int, len(labels))
	for i, l := range labels {
		if mapping[l] < 0 {
			mapping[l] = next
			next++
		}
		out[i] = mapping[l]
	}
	return out
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
