package domain

import "time"

// Document represents a single input file after frontmatter handling.
// Documents are built once by the loader and never mutated afterwards.
type Document struct {
	ID             string
	Path           string
	Title          string
	Body           string
	PublishedAt    time.Time
	WordCount      int
	FreshnessScore float64
}

// Chunk is a contiguous part of a document body.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// Embedding is the semantic vector of the document at the same position.
type Embedding []float64

// Link is an undirected, weighted edge between two documents.
type Link struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Value   float64 `json:"value"`
	RelType string  `json:"rel_type"`
}

// Metrics holds the size and recency signals of a node.
type Metrics struct {
	Size      int     `json:"size"`
	DateScore float64 `json:"date_score"`
	Radius    float64 `json:"radius"`
}

// Node is one document in the output graph.
type Node struct {
	ID          string   `json:"id"`
	Group       int      `json:"group"`
	TopKeywords []string `json:"top_keywords"`
	Metrics     Metrics  `json:"metrics"`
}

// Graph is the terminal artifact of a run.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Result is everything a run produced. Documents are kept alongside the
// graph so that callers can present titles and bodies.
type Result struct {
	Graph     Graph
	Documents []Document
	Clusters  int
	Empty     bool
	Output    string
	Elapsed   time.Duration
}
