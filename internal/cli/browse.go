package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"semgraph/internal/service"
	"semgraph/internal/tui"
)

var browseFlags analysisFlags

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Explore the graph in the terminal",
	Long: `Runs the analysis in memory and opens an interactive browser. Nothing
is written to disk.

Controls:
  type       - Filter by id, title or keyword
  ↑/↓        - Select document
  PgUp/PgDn  - Scroll details
  Esc/Ctrl+C - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

// runProgram starts the terminal program; tests replace it.
var runProgram = func(cmd *cobra.Command, m tea.Model) error {
	_, err := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	).Run()
	return err
}

func init() {
	browseFlags.register(browseCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	cfg, err := browseFlags.runConfig(cmd)
	if err != nil {
		return err
	}
	res, err := service.NewPipeline(cfg, service.WithLogger(newLogger(cmd, cfg))).Build(cmd.Context())
	if err != nil {
		return err
	}
	if res.Empty {
		cmd.Printf("No documents match %s, nothing to browse.\n", cfg.Input)
		return nil
	}
	return runProgram(cmd, tui.New(res, nil))
}
