package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"semgraph/internal/chunker"
	"semgraph/internal/cluster"
	"semgraph/internal/config"
	"semgraph/internal/domain"
	"semgraph/internal/embedding"
	"semgraph/internal/graph"
	"semgraph/internal/keywords"
	"semgraph/internal/linker"
	"semgraph/internal/loader"
)

// ModelOpener opens the embedding model for one run.
type ModelOpener func(cfg config.VectorizerConfig) (domain.Embedder, error)

// Pipeline turns a document corpus into a relationship graph. Every run
// recomputes everything from the input files.
type Pipeline struct {
	cfg       config.AppConfig
	loader    *loader.Loader
	openModel ModelOpener
	chunker   domain.Chunker
	keywords  domain.KeywordExtractor
	clusterer domain.Clusterer
	linker    domain.Linker
	assembler *graph.Assembler
	writer    domain.GraphWriter
	log       *log.Logger
	now       func() time.Time
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to the charmbracelet default logger.
func WithLogger(l *log.Logger) Option { return func(p *Pipeline) { p.log = l } }

// WithClock sets the reference time used for freshness and missing dates.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// WithModelOpener replaces embedding.Open.
func WithModelOpener(open ModelOpener) Option { return func(p *Pipeline) { p.openModel = open } }

// WithWriter replaces the file writer for cfg.Output.
func WithWriter(w domain.GraphWriter) Option { return func(p *Pipeline) { p.writer = w } }

// WithKeywordExtractor replaces the TF-IDF keyword extractor.
func WithKeywordExtractor(k domain.KeywordExtractor) Option {
	return func(p *Pipeline) { p.keywords = k }
}

// WithClusterer replaces the k-means clusterer.
func WithClusterer(c domain.Clusterer) Option { return func(p *Pipeline) { p.clusterer = c } }

// WithLinker replaces the cosine linker.
func WithLinker(l domain.Linker) Option { return func(p *Pipeline) { p.linker = l } }

// NewPipeline wires the stages configured by cfg. cfg is copied.
func NewPipeline(cfg *config.AppConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       *cfg,
		openModel: embedding.Open,
		log:       log.Default(),
		now:       time.Now,
	}
	a := cfg.Analysis
	p.keywords = keywords.New(a.KeywordsPerNode, a.VocabularySize)
	p.clusterer = cluster.New(a.Clusters, a.Seed, a.MaxIterations)
	p.linker = linker.New(linker.Options{
		Threshold: a.SimilarityThreshold,
		Scale:     a.LinkWeightScale,
		RelType:   cfg.Graph.RelType,
	})
	p.writer = graph.NewFileWriter(cfg.Output)
	for _, opt := range opts {
		opt(p)
	}
	p.loader = loader.New(loader.Options{
		StripMarkdown: cfg.Loader.StripMarkdown,
		Now:           p.now,
		Logger:        p.log,
	})
	if cfg.Vectorizer.SentencesPerChunk > 0 {
		p.chunker = chunker.NewSentenceChunker(cfg.Vectorizer.SentencesPerChunk, cfg.Vectorizer.OverlapSentences)
	}
	p.assembler = graph.NewAssembler(cfg.Graph.RadiusBase, cfg.Graph.RadiusDivisor)
	return p
}

// Run loads the corpus, analyses it and writes the graph to the configured
// output. An empty corpus is not an error: a warning is logged, nothing is
// written and the result is marked Empty. On any stage failure nothing is
// written either.
func (p *Pipeline) Run(ctx context.Context) (*domain.Result, error) {
	res, err := p.Build(ctx)
	if err != nil || res.Empty {
		return res, err
	}
	if err := p.writer.Write(res.Graph); err != nil {
		return nil, domain.NewStageError(domain.StageWrite, err)
	}
	res.Output = p.cfg.Output
	p.log.Info("wrote graph", "path", p.cfg.Output, "nodes", len(res.Graph.Nodes), "links", len(res.Graph.Links))
	return res, nil
}

// Build loads the corpus and analyses it in memory without writing anything.
func (p *Pipeline) Build(ctx context.Context) (*domain.Result, error) {
	start := time.Now()
	p.log.Info("starting semantic analysis")
	docs, err := p.loader.LoadGlob(p.cfg.Input)
	if err != nil {
		return nil, domain.NewStageError(domain.StageLoad, err)
	}
	p.log.Info("found documents", "documents", len(docs), "pattern", p.cfg.Input)
	res, err := p.Analyze(ctx, docs)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Analyze runs every analysis stage on already loaded documents.
func (p *Pipeline) Analyze(ctx context.Context, docs []domain.Document) (*domain.Result, error) {
	start := time.Now()
	if len(docs) == 0 {
		p.log.Warn("no documents found, nothing to do", "pattern", p.cfg.Input)
		return &domain.Result{Empty: true, Graph: domain.Graph{Nodes: []domain.Node{}, Links: []domain.Link{}}}, nil
	}

	ids := make([]string, len(docs))
	bodies := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		bodies[i] = d.Body
	}

	// Vectorizing and keyword extraction only read the documents.
	var (
		embeddings     []domain.Embedding
		kws            [][]string
		vecErr, kwdErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		embeddings, vecErr = p.vectorize(ctx, docs)
		vecErr = domain.NewStageError(domain.StageVectorize, vecErr)
		return vecErr
	})
	g.Go(func() error {
		kws, kwdErr = p.keywords.Extract(bodies)
		kwdErr = domain.NewStageError(domain.StageKeywords, kwdErr)
		return kwdErr
	})
	_ = g.Wait()
	if err := errors.Join(vecErr, kwdErr); err != nil {
		return nil, err
	}
	if len(embeddings) != len(docs) || len(kws) != len(docs) {
		return nil, fmt.Errorf("stage output size mismatch: %d embeddings, %d keyword sets, %d documents",
			len(embeddings), len(kws), len(docs))
	}

	labels, k, err := p.clusterer.Cluster(embeddings)
	if err != nil {
		return nil, domain.NewStageError(domain.StageCluster, err)
	}
	p.log.Info("grouped documents into thematic clusters", "clusters", k)

	p.log.Info("calculating cosine similarity", "threshold", p.cfg.Analysis.SimilarityThreshold)
	links, err := p.linker.Link(ids, embeddings)
	if err != nil {
		return nil, domain.NewStageError(domain.StageLink, err)
	}
	p.log.Info("found semantic connections", "links", len(links))

	assembled, err := p.assembler.Assemble(docs, labels, kws, links)
	if err != nil {
		return nil, domain.NewStageError(domain.StageAssemble, err)
	}
	return &domain.Result{
		Graph:     assembled,
		Documents: docs,
		Clusters:  k,
		Elapsed:   time.Since(start),
	}, nil
}

// vectorize owns the model handle for the duration of the embedding stage.
func (p *Pipeline) vectorize(ctx context.Context, docs []domain.Document) ([]domain.Embedding, error) {
	model, err := p.openModel(p.cfg.Vectorizer)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := model.Close(); cerr != nil {
			p.log.Warn("closing embedding model failed", "model", model.Name(), "err", cerr)
		}
	}()
	p.log.Info("loaded embedding model", "model", model.Name())

	embs, err := embedding.Vectorize(ctx, model, p.chunker, docs)
	if err != nil {
		return nil, err
	}
	p.log.Info("generated embeddings", "vectors", len(embs), "dimensions", model.Dimension())
	return embs, nil
}
