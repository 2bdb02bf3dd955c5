// Package cli wires the semgraph commands: build, browse, config and version.
package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"semgraph/internal/config"
	"semgraph/internal/domain"
	"semgraph/internal/logger"
)

var (
	version = "dev"

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "semgraph",
	Short: "Build a semantic relationship graph from a folder of posts",
	Long: `semgraph reads a folder of markdown posts, embeds every post, groups
the posts into thematic clusters, extracts keywords and links posts whose
embeddings are similar. The result is written as a node/link JSON graph
ready for a force-directed visualisation.

Every run recomputes the graph from the input files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// A missing .env file is fine; keys may come from the environment.
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"path to YAML config (default ./semgraph.yaml, then ~/.config/semgraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command. A failure is logged once, with the stage
// that failed when there is one.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		l := logger.New(logger.Options{Writer: os.Stderr})
		if stage := domain.FailedStage(err); stage != "" {
			l.Error("semgraph failed", "stage", stage, "err", err)
		} else {
			l.Error("semgraph failed", "err", err)
		}
	}
	return err
}

// loadConfig reads --config when given, otherwise the default locations.
func loadConfig() (*config.AppConfig, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func newLogger(cmd *cobra.Command, cfg *config.AppConfig) *log.Logger {
	return logger.New(logger.Options{
		Debug:  verbose || cfg.Log.Debug,
		Writer: cmd.ErrOrStderr(),
	})
}
