package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marukodo/bunsho/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Debug {
		t.Error("expected debug to be true")
	}
	if cfg.Collection != "documents" {
		t.Errorf("Collection = %q", cfg.Collection)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("chunking defaults = %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("Dimensions = %d", cfg.Embedding.Dimensions)
	}
	if len(cfg.Watch.Extensions) == 0 {
		t.Error("expected default watch extensions")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chunking.Size != 1000 {
		t.Errorf("Size = %d", cfg.Chunking.Size)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
collection: legal
chunking:
  size: 500
  overlap: 100
embedding:
  dimensions: 128
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Collection != "legal" {
		t.Errorf("Collection = %q", cfg.Collection)
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 100 {
		t.Errorf("chunking = %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Embedding.Dimensions != 128 {
		t.Errorf("Dimensions = %d", cfg.Embedding.Dimensions)
	}
}

func TestLoadRejectsBadChunking(t *testing.T) {
	_, err := Load(writeConfig(t, `
chunking:
  size: 100
  overlap: 100
`))
	if !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "chunking: [broken\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadExpandsRelativePaths(t *testing.T) {
	path := writeConfig(t, `
storage:
  files_dir: ./files
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "files")
	if cfg.Storage.FilesDir != want {
		t.Errorf("FilesDir = %q, want %q", cfg.Storage.FilesDir, want)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Collection = "archive"
	cfg.Watch.Directories = []string{filepath.Join(dir, "inbox")}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Collection != "archive" {
		t.Errorf("Collection = %q", loaded.Collection)
	}
	if len(loaded.Watch.Directories) != 1 {
		t.Errorf("Directories = %v", loaded.Watch.Directories)
	}
}

func TestRecursiveOrDefault(t *testing.T) {
	var w WatchConfig
	if !w.RecursiveOrDefault() {
		t.Error("expected recursive to default to true")
	}
	f := false
	w.Recursive = &f
	if w.RecursiveOrDefault() {
		t.Error("expected explicit false to win")
	}
}
