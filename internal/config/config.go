package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"semgraph/internal/domain"
)

// OpenAIVectorizerConfig holds configuration for the OpenAI-compatible embedding model.
type OpenAIVectorizerConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorizerConfig selects and configures the embedding model.
type VectorizerConfig struct {
	Type              string                  `yaml:"type"`
	SentencesPerChunk int                     `yaml:"sentences_per_chunk"`
	OverlapSentences  int                     `yaml:"overlap_sentences"`
	OpenAI            *OpenAIVectorizerConfig `yaml:"openai,omitempty"`
}

// AnalysisConfig tunes clustering, keyword extraction and linking.
type AnalysisConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	LinkWeightScale     float64 `yaml:"link_weight_scale"`
	Clusters            int     `yaml:"clusters"`
	KeywordsPerNode     int     `yaml:"keywords_per_node"`
	VocabularySize      int     `yaml:"vocabulary_size"`
	Seed                int64   `yaml:"seed"`
	MaxIterations       int     `yaml:"max_iterations"`
}

// LoaderConfig configures document loading.
type LoaderConfig struct {
	StripMarkdown bool `yaml:"strip_markdown"`
}

// GraphConfig configures node sizing and link labelling.
type GraphConfig struct {
	RadiusBase    float64 `yaml:"radius_base"`
	RadiusDivisor float64 `yaml:"radius_divisor"`
	RelType       string  `yaml:"rel_type"`
}

// LogConfig configures console logging.
type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Input      string           `yaml:"input"`
	Output     string           `yaml:"output"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Loader     LoaderConfig     `yaml:"loader"`
	Graph      GraphConfig      `yaml:"graph"`
	Log        LogConfig        `yaml:"log"`
}

// Default values.
const (
	DefaultInput               = "src/data/blog/*.mdx"
	DefaultOutput              = "public/graph.json"
	DefaultSimilarityThreshold = 0.45
	DefaultLinkWeightScale     = 1.0
	DefaultClusters            = 5
	DefaultKeywordsPerNode     = 3
	DefaultVocabularySize      = 200
	DefaultSeed                = 42
	DefaultMaxIterations       = 300
	DefaultRadiusBase          = 5.0
	DefaultRadiusDivisor       = 100.0
	DefaultRelType             = "semantic"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./semgraph.yaml first, then ~/.config/semgraph/config.yaml.
// If neither exists, built-in defaults are returned and nothing is written.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "semgraph.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	return Default(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath returns ~/.config/semgraph/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "semgraph", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Input:  DefaultInput,
		Output: DefaultOutput,
		Analysis: AnalysisConfig{
			SimilarityThreshold: DefaultSimilarityThreshold,
			LinkWeightScale:     DefaultLinkWeightScale,
			Clusters:            DefaultClusters,
			KeywordsPerNode:     DefaultKeywordsPerNode,
			VocabularySize:      DefaultVocabularySize,
			Seed:                DefaultSeed,
			MaxIterations:       DefaultMaxIterations,
		},
		Vectorizer: VectorizerConfig{Type: "tfidf"},
		Graph: GraphConfig{
			RadiusBase:    DefaultRadiusBase,
			RadiusDivisor: DefaultRadiusDivisor,
			RelType:       DefaultRelType,
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Vectorizer.Type == "" {
		cfg.Vectorizer.Type = "tfidf"
	}
	if cfg.Analysis.MaxIterations == 0 {
		cfg.Analysis.MaxIterations = DefaultMaxIterations
	}
	if cfg.Graph.RelType == "" {
		cfg.Graph.RelType = DefaultRelType
	}
	if cfg.Vectorizer.Type == "openai" {
		if cfg.Vectorizer.OpenAI == nil {
			cfg.Vectorizer.OpenAI = &OpenAIVectorizerConfig{}
		}
		if cfg.Vectorizer.OpenAI.BaseURL == "" {
			cfg.Vectorizer.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Vectorizer.OpenAI.APIKeyEnv == "" {
			cfg.Vectorizer.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Vectorizer.OpenAI.Model == "" {
			cfg.Vectorizer.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Vectorizer.OpenAI.TimeoutSecs == 0 {
			cfg.Vectorizer.OpenAI.TimeoutSecs = 30
		}
	}
}

// Validate checks that cfg can drive a pipeline run.
func (c *AppConfig) Validate() error {
	switch {
	case c.Input == "":
		return fmt.Errorf("%w: input pattern is empty", domain.ErrInvalidConfig)
	case c.Output == "":
		return fmt.Errorf("%w: output path is empty", domain.ErrInvalidConfig)
	case c.Analysis.SimilarityThreshold < -1 || c.Analysis.SimilarityThreshold > 1:
		return fmt.Errorf("%w: similarity_threshold %v outside [-1, 1]", domain.ErrInvalidConfig, c.Analysis.SimilarityThreshold)
	case c.Analysis.LinkWeightScale <= 0:
		return fmt.Errorf("%w: link_weight_scale must be positive", domain.ErrInvalidConfig)
	case c.Analysis.Clusters < 1:
		return fmt.Errorf("%w: clusters must be at least 1", domain.ErrInvalidConfig)
	case c.Analysis.KeywordsPerNode < 0:
		return fmt.Errorf("%w: keywords_per_node must not be negative", domain.ErrInvalidConfig)
	case c.Analysis.VocabularySize < 1:
		return fmt.Errorf("%w: vocabulary_size must be at least 1", domain.ErrInvalidConfig)
	case c.Analysis.MaxIterations < 1:
		return fmt.Errorf("%w: max_iterations must be at least 1", domain.ErrInvalidConfig)
	case c.Graph.RadiusDivisor <= 0:
		return fmt.Errorf("%w: radius_divisor must be positive", domain.ErrInvalidConfig)
	case c.Vectorizer.SentencesPerChunk < 0 || c.Vectorizer.OverlapSentences < 0:
		return fmt.Errorf("%w: chunk sizes must not be negative", domain.ErrInvalidConfig)
	}
	switch c.Vectorizer.Type {
	case "tfidf", "openai":
	default:
		return fmt.Errorf("%w: unknown vectorizer %q", domain.ErrInvalidConfig, c.Vectorizer.Type)
	}
	return nil
}
