package cli

import (
	"github.com/spf13/cobra"

	"semgraph/internal/service"
)

var buildFlags analysisFlags

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Analyse the posts and write the graph JSON",
	Long: `Loads every file matching the input pattern, embeds and clusters the
posts, extracts keywords, links similar posts and writes the graph to the
output path. The output file is replaced atomically; on failure or when no
posts are found the previous file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildFlags.register(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := buildFlags.runConfig(cmd)
	if err != nil {
		return err
	}
	p := service.NewPipeline(cfg, service.WithLogger(newLogger(cmd, cfg)))
	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	if res.Empty {
		cmd.Printf("No documents match %s, nothing written.\n", cfg.Input)
		return nil
	}
	cmd.Print(renderSummary(res))
	return nil
}
