package linker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgraph/internal/domain"
)

func TestSimilarity_SymmetricWithUnitDiagonal(t *testing.T) {
	embs := []domain.Embedding{{1, 2, 3}, {3, 2, 1}, {-1, 0, 4}, {0, 0, 0}}

	sim, err := Similarity(embs)
	require.NoError(t, err)

	for i := range embs {
		assert.Equal(t, 1.0, sim[i][i])
		for j := range embs {
			assert.Equal(t, sim[i][j], sim[j][i])
		}
	}
	assert.InDelta(t, 10.0/14.0, sim[0][1], 1e-12)
	assert.Zero(t, sim[0][3])
}

func TestLink_StrictThresholdAndOrdering(t *testing.T) {
	embs := []domain.Embedding{
		{1, 0},
		{1, 0},                     // sim(0,1) = 1
		{math.Cos(1), math.Sin(1)}, // sim(0,2) = cos(1) ~ 0.5403
		{0, 1},                     // orthogonal to 0 and 1
	}
	ids := []string{"a", "b", "c", "d"}
	l := New(Options{Threshold: 0.5, RelType: "semantic"})

	links, err := l.Link(ids, embs)
	require.NoError(t, err)

	assert.Equal(t, []domain.Link{
		{Source: "a", Target: "b", Value: 1, RelType: "semantic"},
		{Source: "a", Target: "c", Value: 0.54, RelType: "semantic"},
		{Source: "b", Target: "c", Value: 0.54, RelType: "semantic"},
		{Source: "c", Target: "d", Value: 0.841, RelType: "semantic"},
	}, links)
}

func TestLink_ExactlyAtThresholdIsNotLinked(t *testing.T) {
	links, err := New(Options{Threshold: 1}).Link([]string{"a", "b"}, []domain.Embedding{{1, 0}, {2, 0}})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestLink_ValueRoundingToThresholdIsNotLinked(t *testing.T) {
	at := func(cos float64) domain.Embedding { return domain.Embedding{cos, math.Sqrt(1 - cos*cos)} }
	ids := []string{"a", "b", "c"}
	embs := []domain.Embedding{{1, 0}, at(0.4503), at(0.4506)}

	links, err := New(Options{Threshold: 0.45}).Link(ids, embs)
	require.NoError(t, err)

	require.Len(t, links, 2)
	assert.Equal(t, "c", links[0].Target)
	assert.Equal(t, 0.451, links[0].Value)
	for _, l := range links {
		assert.Greater(t, l.Value, 0.45)
	}
}

func TestLink_Scale(t *testing.T) {
	links, err := New(Options{Threshold: 0.3, Scale: 10}).Link([]string{"a", "b"}, []domain.Embedding{{1, 0}, {1, 1}})
	require.NoError(t, err)

	require.Len(t, links, 1)
	assert.Equal(t, 7.071, links[0].Value)
}

func TestLink_NoSelfOrDuplicatePairs(t *testing.T) {
	embs := []domain.Embedding{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	ids := []string{"a", "b", "c", "d"}

	links, err := New(Options{Threshold: -1}).Link(ids, embs)
	require.NoError(t, err)

	assert.Len(t, links, 6)
	seen := make(map[[2]string]bool)
	for _, lk := range links {
		assert.NotEqual(t, lk.Source, lk.Target)
		key := [2]string{min(lk.Source, lk.Target), max(lk.Source, lk.Target)}
		assert.False(t, seen[key], "duplicate pair %v", key)
		seen[key] = true
	}
}

func TestLink_SingleAndEmpty(t *testing.T) {
	links, err := New(Options{Threshold: 0}).Link([]string{"a"}, []domain.Embedding{{1}})
	require.NoError(t, err)
	assert.NotNil(t, links)
	assert.Empty(t, links)

	links, err = New(Options{Threshold: 0}).Link(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestLink_Errors(t *testing.T) {
	_, err := New(Options{}).Link([]string{"a"}, nil)
	assert.Error(t, err)

	_, err = New(Options{}).Link([]string{"a", "b"}, []domain.Embedding{{1}, {1, 2}})
	assert.Error(t, err)
}
