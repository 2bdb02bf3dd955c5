package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"semgraph/internal/domain"
)

// FileWriter writes a graph as indented JSON, replacing the file atomically:
// the data goes to a temporary file in the same directory which is then
// renamed over the target. A failed write leaves any previous file intact.
type FileWriter struct {
	Path string
}

// NewFileWriter creates a writer for path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{Path: path}
}

// Encode renders g in the output format.
func Encode(g domain.Graph) ([]byte, error) {
	if g.Nodes == nil {
		g.Nodes = []domain.Node{}
	}
	if g.Links == nil {
		g.Links = []domain.Link{}
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write replaces the file at w.Path with g.
func (w *FileWriter) Write(g domain.Graph) (err error) {
	data, err := Encode(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), w.Path); err != nil {
		return fmt.Errorf("replace %s: %w", w.Path, err)
	}
	return nil
}
