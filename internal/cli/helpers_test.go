package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
// Flag values are reset afterwards so tests do not leak into each other.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// writePosts creates a posts directory with the given files and returns the
// glob pattern, an output path and a missing config path under dir.
func writePosts(t *testing.T, files map[string]string) (pattern, output, cfg string) {
	t.Helper()
	dir := t.TempDir()
	posts := filepath.Join(dir, "posts")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(posts, name), []byte(content), 0o644))
	}
	return filepath.Join(posts, "*.mdx"), filepath.Join(dir, "public", "graph.json"), filepath.Join(dir, "semgraph.yaml")
}
