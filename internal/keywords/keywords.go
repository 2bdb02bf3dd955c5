// Package keywords picks the most distinctive terms of each document using
// TF-IDF salience computed over the whole corpus.
package keywords

import (
	"errors"
	"math"
	"sort"

	"semgraph/internal/tokenize"
)

// Extractor selects up to TopN keywords per document from a vocabulary
// capped at the VocabularySize most frequent corpus terms.
type Extractor struct {
	topN           int
	vocabularySize int
}

// New creates an extractor.
func New(topN, vocabularySize int) *Extractor {
	return &Extractor{topN: topN, vocabularySize: vocabularySize}
}

// Vocabulary returns the capped vocabulary for bodies in vocabulary order
// (alphabetical). Terms are admitted by descending corpus frequency, ties
// broken alphabetically.
func (e *Extractor) Vocabulary(bodies []string) []string {
	_, vocab := e.vocabulary(tokenizeAll(bodies))
	return vocab
}

// Extract returns, for every body in order, its keywords ranked by descending
// TF-IDF score with ties broken by vocabulary order. A document with fewer
// scoring terms than TopN gets fewer keywords. The result never holds nil
// slices.
func (e *Extractor) Extract(bodies []string) ([][]string, error) {
	if e.topN < 0 {
		return nil, errors.New("keywords per document must not be negative")
	}
	if e.vocabularySize < 1 {
		return nil, errors.New("vocabulary size must be positive")
	}
	docs := tokenizeAll(bodies)
	index, vocab := e.vocabulary(docs)

	df := make([]int, len(vocab))
	counts := make([]map[int]int, len(docs))
	for i, terms := range docs {
		counts[i] = make(map[int]int)
		for _, t := range terms {
			if idx, ok := index[t]; ok {
				counts[i][idx]++
			}
		}
		for idx := range counts[i] {
			df[idx]++
		}
	}
	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for j := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(df[j]))) + 1
	}

	out := make([][]string, len(docs))
	for i := range docs {
		type scored struct {
			idx   int
			score float64
		}
		ranked := make([]scored, 0, len(counts[i]))
		for idx, c := range counts[i] {
			if s := float64(c) * idf[idx]; s > 0 {
				ranked = append(ranked, scored{idx, s})
			}
		}
		sort.Slice(ranked, func(a, b int) bool {
			if ranked[a].score != ranked[b].score {
				return ranked[a].score > ranked[b].score
			}
			return ranked[a].idx < ranked[b].idx
		})
		k := min(e.topN, len(ranked))
		out[i] = make([]string, k)
		for j := 0; j < k; j++ {
			out[i][j] = vocab[ranked[j].idx]
		}
	}
	return out, nil
}

func tokenizeAll(bodies []string) [][]string {
	docs := make([][]string, len(bodies))
	for i, b := range bodies {
		docs[i] = tokenize.Terms(b)
	}
	return docs
}

func (e *Extractor) vocabulary(docs [][]string) (map[string]int, []string) {
	freq := make(map[string]int)
	for _, terms := range docs {
		for _, t := range terms {
			freq[t]++
		}
	}
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(a, b int) bool {
		if freq[terms[a]] != freq[terms[b]] {
			return freq[terms[a]] > freq[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if len(terms) > e.vocabularySize {
		terms = terms[:e.vocabularySize]
	}
	sort.Strings(terms)
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return index, terms
}
