// Package embedding opens the configured embedding model and turns document
// bodies into one vector each.
package embedding

import (
	"context"
	"fmt"
	"math"
	"time"

	"semgraph/internal/config"
	"semgraph/internal/domain"
	"semgraph/internal/embedding/openai"
	"semgraph/internal/embedding/tfidf"
)

// Open returns the model selected by cfg. The caller owns the handle and
// must Close it. Failures wrap domain.ErrModelLoad.
func Open(cfg config.VectorizerConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("%w: openai vectorizer config missing", domain.ErrModelLoad)
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrModelLoad, err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown vectorizer %q", domain.ErrModelLoad, cfg.Type)
	}
}

// Vectorize prepares model on the corpus and embeds every document body, in
// document order. With a chunker each body is split, the chunks are embedded
// and their vectors mean-pooled into one document vector.
func Vectorize(ctx context.Context, model domain.Embedder, chunker domain.Chunker, docs []domain.Document) ([]domain.Embedding, error) {
	texts := make([][]string, len(docs))
	var corpus []string
	for i, d := range docs {
		if chunker == nil {
			texts[i] = []string{d.Body}
		} else {
			chunks, err := chunker.Chunk(d)
			if err != nil {
				return nil, fmt.Errorf("chunk %s: %w", d.ID, err)
			}
			for _, ch := range chunks {
				texts[i] = append(texts[i], ch.Text)
			}
			if len(texts[i]) == 0 {
				texts[i] = []string{d.Body}
			}
		}
		corpus = append(corpus, texts[i]...)
	}
	if err := model.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("prepare %s model: %w", model.Name(), err)
	}

	out := make([]domain.Embedding, len(docs))
	for i, parts := range texts {
		vecs := make([][]float64, 0, len(parts))
		for _, p := range parts {
			v, err := model.Embed(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("embed %s: %w", docs[i].ID, err)
			}
			vecs = append(vecs, v)
		}
		if len(vecs) == 1 {
			out[i] = vecs[0]
			continue
		}
		pooled, err := MeanPool(vecs)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", docs[i].ID, err)
		}
		out[i] = pooled
	}
	return out, nil
}

// MeanPool averages vectors of equal length and L2-normalizes the result.
func MeanPool(vecs [][]float64) (domain.Embedding, error) {
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no vectors to pool")
	}
	dim := len(vecs[0])
	sum := make([]float64, dim)
	for _, v := range vecs {
		if len(v) != dim {
			return nil, fmt.Errorf("vector dimension mismatch: got %d want %d", len(v), dim)
		}
		for j, x := range v {
			sum[j] += x
		}
	}
	norm := 0.0
	for j := range sum {
		sum[j] /= float64(len(vecs))
		norm += sum[j] * sum[j]
	}
	if norm = math.Sqrt(norm); norm > 0 {
		for j := range sum {
			sum[j] /= norm
		}
	}
	return sum, nil
}
