package cli

import (
	"github.com/spf13/cobra"

	"semgraph/internal/config"
)

// analysisFlags override config file values for a single run. Only flags the
// user actually set are applied.
type analysisFlags struct {
	input     string
	output    string
	threshold float64
	scale     float64
	clusters  int
	keywords  int
	vocab     int
	seed      int64
	strip     bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", config.DefaultInput, "glob pattern selecting the input files")
	fs.StringVarP(&f.output, "output", "o", config.DefaultOutput, "path of the graph JSON file")
	fs.Float64Var(&f.threshold, "threshold", config.DefaultSimilarityThreshold, "minimum cosine similarity for a link (exclusive)")
	fs.Float64Var(&f.scale, "scale", config.DefaultLinkWeightScale, "multiplier applied to similarity for link values")
	fs.IntVarP(&f.clusters, "clusters", "k", config.DefaultClusters, "number of thematic clusters")
	fs.IntVar(&f.keywords, "keywords", config.DefaultKeywordsPerNode, "keywords kept per document")
	fs.IntVar(&f.vocab, "vocab", config.DefaultVocabularySize, "keyword vocabulary size")
	fs.Int64Var(&f.seed, "seed", config.DefaultSeed, "clustering seed")
	fs.BoolVar(&f.strip, "strip-markdown", false, "render markdown to plain text before analysis")
}

func (f *analysisFlags) apply(cmd *cobra.Command, cfg *config.AppConfig) {
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.Input = f.input
	}
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("threshold") {
		cfg.Analysis.SimilarityThreshold = f.threshold
	}
	if fs.Changed("scale") {
		cfg.Analysis.LinkWeightScale = f.scale
	}
	if fs.Changed("clusters") {
		cfg.Analysis.Clusters = f.clusters
	}
	if fs.Changed("keywords") {
		cfg.Analysis.KeywordsPerNode = f.keywords
	}
	if fs.Changed("vocab") {
		cfg.Analysis.VocabularySize = f.vocab
	}
	if fs.Changed("seed") {
		cfg.Analysis.Seed = f.seed
	}
	if fs.Changed("strip-markdown") {
		cfg.Loader.StripMarkdown = f.strip
	}
}

// runConfig loads the config, applies flag overrides and validates the result.
func (f *analysisFlags) runConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
