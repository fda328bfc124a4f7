// Package testutil provides shared test helpers for setting up graph
// directories.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/habitdash/internal/storage"
)

// TestGraph creates a temporary graph directory holding files (relative path
// to content) and returns it with a storage.Graph over it.
func TestGraph(t *testing.T, files map[string]string) (string, *storage.Graph) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		WriteFile(t, dir, rel, content)
	}
	g, err := storage.NewGraph(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, g
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
