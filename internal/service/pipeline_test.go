package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgraph/internal/config"
	"semgraph/internal/domain"
	"semgraph/internal/embedding"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	dir    string
	output string
	cfg    *config.AppConfig
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	posts := filepath.Join(dir, "posts")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(posts, name), []byte(content), 0o644))
	}
	cfg := config.Default()
	cfg.Input = filepath.Join(posts, "*.md")
	cfg.Output = filepath.Join(dir, "public", "graph.json")
	return &testEnv{dir: dir, output: cfg.Output, cfg: cfg, logs: &bytes.Buffer{}}
}

func (e *testEnv) pipeline(opts ...Option) *Pipeline {
	base := []Option{
		WithLogger(log.New(e.logs)),
		WithClock(func() time.Time { return fixedNow }),
	}
	return NewPipeline(e.cfg, append(base, opts...)...)
}

func (e *testEnv) readGraph(t *testing.T) domain.Graph {
	t.Helper()
	data, err := os.ReadFile(e.output)
	require.NoError(t, err)
	var g domain.Graph
	require.NoError(t, json.Unmarshal(data, &g))
	return g
}

// fakeModel embeds text as (length, 1) and records its lifecycle.
type fakeModel struct {
	prepared bool
	closed   bool
	embedErr error
}

func (m *fakeModel) Name() string { return "fake" }

func (m *fakeModel) Prepare([]string) error {
	m.prepared = true
	return nil
}

func (m *fakeModel) Dimension() int { return 2 }

func (m *fakeModel) Embed(_ context.Context, text string) ([]float64, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float64{float64(len(text)), 1}, nil
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}

func openerFor(m *fakeModel) ModelOpener {
	return func(config.VectorizerConfig) (domain.Embedder, error) { return m, nil }
}

type failingKeywords struct{}

func (failingKeywords) Extract([]string) ([][]string, error) { return nil, errors.New("keywords broke") }

type failingClusterer struct{}

func (failingClusterer) Cluster([]domain.Embedding) ([]int, int, error) {
	return nil, 0, errors.New("clustering broke")
}

type failingLinker struct{}

func (failingLinker) Link([]string, []domain.Embedding) ([]domain.Link, error) {
	return nil, errors.New("linking broke")
}

var similarPair = map[string]string{
	"a.md": "---\ntitle: Graph Databases\ndate: 2025-05-01\n---\nGraph databases store nodes and edges. Graph queries traverse edges quickly.\n",
	"b.md": "Graph databases store nodes and edges. Graph queries traverse nodes quickly.\n",
}

func TestRun_TwoSimilarDocumentsAreLinked(t *testing.T) {
	env := newTestEnv(t, similarPair)
	env.cfg.Analysis.SimilarityThreshold = 0.3

	res, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Empty)
	assert.Equal(t, env.output, res.Output)
	assert.Equal(t, 2, res.Clusters)

	g := env.readGraph(t)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "a", g.Nodes[0].ID)
	assert.Equal(t, "b", g.Nodes[1].ID)
	assert.InDelta(t, 1-31.0/365, g.Nodes[0].Metrics.DateScore, 1e-12)
	assert.Equal(t, 1.0, g.Nodes[1].Metrics.DateScore)
	assert.Equal(t, 11, g.Nodes[0].Metrics.Size)
	assert.Equal(t, 5.11, g.Nodes[0].Metrics.Radius)
	assert.NotEmpty(t, g.Nodes[0].TopKeywords)
	assert.LessOrEqual(t, len(g.Nodes[0].TopKeywords), 3)

	require.Len(t, g.Links, 1)
	assert.Equal(t, "a", g.Links[0].Source)
	assert.Equal(t, "b", g.Links[0].Target)
	assert.Greater(t, g.Links[0].Value, 0.3)
	assert.Equal(t, "semantic", g.Links[0].RelType)
}

func TestRun_SingleDocument(t *testing.T) {
	env := newTestEnv(t, map[string]string{"solo.md": "A lonely post about gardening."})

	res, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Clusters)
	g := env.readGraph(t)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "solo", g.Nodes[0].ID)
	assert.Equal(t, 0, g.Nodes[0].Group)
	assert.Empty(t, g.Links)
}

func TestRun_EmptyCorpusWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)

	res, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Empty)
	assert.Empty(t, res.Graph.Nodes)
	_, statErr := os.Stat(env.output)
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, env.logs.String(), "no documents found")
}

func TestRun_EmptyCorpusKeepsPreviousOutput(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.output), 0o755))
	require.NoError(t, os.WriteFile(env.output, []byte("previous"), 0o644))

	_, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(env.output)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestRun_MalformedFrontmatterStillBecomesNode(t *testing.T) {
	raw := "---\ntitle: [unterminated\n---\nbroken metadata yet valuable words\n"
	env := newTestEnv(t, map[string]string{"broken.md": raw, "fine.md": "fine words here"})

	res, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Documents, 2)
	broken := res.Documents[0]
	assert.Equal(t, "broken", broken.ID)
	assert.Equal(t, "broken", broken.Title)
	assert.Equal(t, raw, broken.Body)

	g := env.readGraph(t)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "broken", g.Nodes[0].ID)
	assert.Equal(t, 9, g.Nodes[0].Metrics.Size)
	assert.Contains(t, env.logs.String(), "malformed frontmatter")
}

func corpus() map[string]string {
	return map[string]string{
		"go-channels.md":     "Go channels and goroutines make concurrent programs simple. Channels pass values between goroutines.",
		"go-generics.md":     "Go generics add type parameters. Generic functions and type constraints in Go programs.",
		"sourdough.md":       "Sourdough bread needs a starter, flour and water. Bake the bread in a hot oven.",
		"baguette.md":        "A baguette is French bread. Flour, water, salt and yeast, baked in a hot oven.",
		"marathon.md":        "Marathon training builds endurance. Long runs and tempo runs every week.",
		"trail-running.md":   "Trail running on mountain paths builds endurance. Long runs on trails.",
		"kubernetes.md":      "Kubernetes schedules containers. Pods, deployments and services run programs.",
		"container-intro.md": "Containers package programs. Docker images run as containers on Kubernetes.",
	}
}

func TestRun_GraphInvariants(t *testing.T) {
	files := corpus()
	env := newTestEnv(t, files)
	env.cfg.Analysis.SimilarityThreshold = 0.1
	env.cfg.Analysis.Clusters = 4

	res, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)

	g := env.readGraph(t)
	require.Len(t, g.Nodes, len(files))
	ids := make(map[string]bool)
	for _, n := range g.Nodes {
		_, ok := files[n.ID+".md"]
		assert.True(t, ok, "unexpected node %s", n.ID)
		assert.False(t, ids[n.ID], "duplicate node %s", n.ID)
		ids[n.ID] = true
		assert.GreaterOrEqual(t, n.Group, 0)
		assert.Less(t, n.Group, res.Clusters)
		assert.LessOrEqual(t, len(n.TopKeywords), 3)
	}
	assert.Equal(t, 4, res.Clusters)

	pairs := make(map[[2]string]bool)
	for _, l := range g.Links {
		assert.NotEqual(t, l.Source, l.Target)
		key := [2]string{min(l.Source, l.Target), max(l.Source, l.Target)}
		assert.False(t, pairs[key], "duplicate link %v", key)
		pairs[key] = true
		assert.Greater(t, l.Value, 0.1)
	}
}

func TestRun_Reproducible(t *testing.T) {
	env := newTestEnv(t, corpus())
	env.cfg.Analysis.SimilarityThreshold = 0.1
	env.cfg.Analysis.Clusters = 3

	_, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(env.output)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := env.pipeline().Run(context.Background())
		require.NoError(t, err)
		again, err := os.ReadFile(env.output)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestRun_ChunkedVectorization(t *testing.T) {
	env := newTestEnv(t, similarPair)
	env.cfg.Analysis.SimilarityThreshold = 0.3
	env.cfg.Vectorizer.SentencesPerChunk = 1

	_, err := env.pipeline().Run(context.Background())
	require.NoError(t, err)

	g := env.readGraph(t)
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Links, 1)
}

func TestRun_ModelLoadFailureIsFatal(t *testing.T) {
	env := newTestEnv(t, similarPair)
	opener := func(config.VectorizerConfig) (domain.Embedder, error) {
		return nil, domain.ErrModelLoad
	}

	res, err := env.pipeline(WithModelOpener(opener)).Run(context.Background())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrModelLoad)
	assert.Equal(t, domain.StageVectorize, domain.FailedStage(err))
	_, statErr := os.Stat(env.output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ModelClosedWhenLaterStageFails(t *testing.T) {
	env := newTestEnv(t, similarPair)
	m := &fakeModel{}

	_, err := env.pipeline(WithModelOpener(openerFor(m)), WithClusterer(failingClusterer{})).Run(context.Background())

	assert.ErrorContains(t, err, "clustering broke")
	assert.Equal(t, domain.StageCluster, domain.FailedStage(err))
	assert.True(t, m.prepared)
	assert.True(t, m.closed)
	_, statErr := os.Stat(env.output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ModelClosedWhenEmbeddingFails(t *testing.T) {
	env := newTestEnv(t, similarPair)
	m := &fakeModel{embedErr: errors.New("gpu on fire")}

	_, err := env.pipeline(WithModelOpener(openerFor(m))).Run(context.Background())

	assert.ErrorContains(t, err, "gpu on fire")
	assert.Equal(t, domain.StageVectorize, domain.FailedStage(err))
	assert.True(t, m.closed)
}

func TestRun_KeywordFailureIsSurfacedAsKeywordStage(t *testing.T) {
	env := newTestEnv(t, similarPair)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.output), 0o755))
	require.NoError(t, os.WriteFile(env.output, []byte("previous"), 0o644))

	_, err := env.pipeline(WithKeywordExtractor(failingKeywords{})).Run(context.Background())

	assert.ErrorContains(t, err, "keywords broke")
	assert.Equal(t, domain.StageKeywords, domain.FailedStage(err))
	data, readErr := os.ReadFile(env.output)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))
}

func TestRun_BothParallelStagesFailing(t *testing.T) {
	env := newTestEnv(t, similarPair)
	m := &fakeModel{embedErr: errors.New("embed broke")}

	_, err := env.pipeline(WithModelOpener(openerFor(m)), WithKeywordExtractor(failingKeywords{})).Run(context.Background())

	assert.ErrorContains(t, err, "embed broke")
	assert.ErrorContains(t, err, "keywords broke")
}

func TestRun_LinkFailure(t *testing.T) {
	env := newTestEnv(t, similarPair)

	_, err := env.pipeline(WithLinker(failingLinker{})).Run(context.Background())

	assert.Equal(t, domain.StageLink, domain.FailedStage(err))
}

func TestRun_WriteFailure(t *testing.T) {
	env := newTestEnv(t, similarPair)
	require.NoError(t, os.MkdirAll(env.output, 0o755))

	_, err := env.pipeline().Run(context.Background())

	assert.Equal(t, domain.StageWrite, domain.FailedStage(err))
}

func TestRun_BadPattern(t *testing.T) {
	env := newTestEnv(t, nil)
	env.cfg.Input = "["

	_, err := env.pipeline().Run(context.Background())

	assert.Equal(t, domain.StageLoad, domain.FailedStage(err))
}

func TestBuild_DoesNotWrite(t *testing.T) {
	env := newTestEnv(t, similarPair)

	res, err := env.pipeline().Build(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Graph.Nodes, 2)
	assert.Empty(t, res.Output)
	_, statErr := os.Stat(env.output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAnalyze_UsesRealTFIDFModelByDefault(t *testing.T) {
	env := newTestEnv(t, nil)
	var opened string
	opener := func(cfg config.VectorizerConfig) (domain.Embedder, error) {
		m, err := embedding.Open(cfg)
		if err == nil {
			opened = m.Name()
		}
		return m, err
	}
	docs := []domain.Document{{ID: "x", Body: "graphs"}, {ID: "y", Body: "graphs"}}

	res, err := env.pipeline(WithModelOpener(opener)).Analyze(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, "tfidf", opened)
	require.Len(t, res.Graph.Links, 1)
	assert.Equal(t, 1.0, res.Graph.Links[0].Value)
}
