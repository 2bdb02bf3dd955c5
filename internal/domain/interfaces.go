package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// An Embedder is a model handle: it is opened once per run, may require a
// preparation phase over the corpus, and must be closed when the run no
// longer needs it.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	Close() error
}

// Chunker splits documents into chunks suitable for pooled embedding.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// KeywordExtractor selects the most distinctive terms of every document body.
// The result is aligned with the input order.
type KeywordExtractor interface {
	Extract(bodies []string) ([][]string, error)
}

// Clusterer partitions embeddings into thematic groups. It returns one label
// per embedding and the effective number of clusters.
type Clusterer interface {
	Cluster(embeddings []Embedding) ([]int, int, error)
}

// Linker turns embeddings into weighted edges between documents.
type Linker interface {
	Link(ids []string, embeddings []Embedding) ([]Link, error)
}

// GraphWriter persists a finished graph.
type GraphWriter interface {
	Write(g Graph) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
