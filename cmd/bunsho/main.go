// Package main is the bunsho CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/marukodo/bunsho/internal/catalog"
	"github.com/marukodo/bunsho/internal/cli"
	"github.com/marukodo/bunsho/internal/config"
	"github.com/marukodo/bunsho/internal/docstore"
	"github.com/marukodo/bunsho/internal/embedding"
	"github.com/marukodo/bunsho/internal/extract"
	"github.com/marukodo/bunsho/internal/ingest"
	"github.com/marukodo/bunsho/internal/keyword"
	"github.com/marukodo/bunsho/internal/models"
	"github.com/marukodo/bunsho/internal/search"
	"github.com/marukodo/bunsho/internal/store"
	"github.com/marukodo/bunsho/internal/vector"
	"github.com/marukodo/bunsho/internal/watcher"
	"github.com/marukodo/bunsho/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/bunsho/config.yaml"

// loadConfig loads config from path. When path is the default, BUNSHO_CONFIG
// wins if set, then config.yaml in the current directory if it exists, so
// running from a project dir uses the project's config. Returns the config and
// the path that was loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if env := os.Getenv("BUNSHO_CONFIG"); env != "" {
			cfg, loadErr := config.Load(env)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, env, nil
		}
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "upload":
		runUpload()
	case "search":
		runSearch()
	case "grep":
		runGrep()
	case "lookup":
		runLookup()
	case "delete":
		runDelete()
	case "list":
		runList()
	case "stats":
		runStats()
	case "health":
		runHealth()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("bunsho version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// Components holds the initialized engine and its stores.
type Components struct {
	Config       *config.Config
	Logger       *zap.Logger
	Pipeline     *ingest.Pipeline
	VectorIndex  vector.Index
	KeywordIndex keyword.Index
	Catalog      *catalog.Catalog
	FileStore    *store.FileStore
	Manager      *docstore.Manager
	Engine       *search.Engine
}

// Close saves the vector index and releases resources.
func (c *Components) Close() {
	if c.VectorIndex != nil {
		if path := c.Config.Storage.VectorIndexPath; path != "" {
			if err := c.VectorIndex.Save(path); err != nil {
				c.Logger.Warn("vector index save failed", zap.String("path", path), zap.Error(err))
			}
		}
		_ = c.VectorIndex.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
	_ = c.Logger.Sync()
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	chunker, err := ingest.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	pipeline := ingest.NewPipeline(extract.NewExtractor(), chunker, embedder)

	vectorIndex, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if path := cfg.Storage.VectorIndexPath; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
		if err := vectorIndex.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load vector index: %w", err)
		}
	}

	fileStore, err := store.NewFileStore(cfg.Storage.FilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	var keywordIndex keyword.Index
	if cfg.Storage.KeywordIndexPath != "" {
		keywordIndex, err = keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
		}
	}

	var cat *catalog.Catalog
	if cfg.Storage.CatalogPath != "" {
		cat, err = catalog.Open(cfg.Storage.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
	}

	manager := docstore.NewManager(pipeline, vectorIndex, fileStore, keywordIndex, cat, cfg.Collection, logger)
	engine := search.NewEngine(embedder, vectorIndex, keywordIndex, logger)

	return &Components{
		Config:       cfg,
		Logger:       logger,
		Pipeline:     pipeline,
		VectorIndex:  vectorIndex,
		KeywordIndex: keywordIndex,
		Catalog:      cat,
		FileStore:    fileStore,
		Manager:      manager,
		Engine:       engine,
	}, nil
}

// setup loads config, builds the logger, and initializes components.
func setup(configPath string, debugFlag bool) *Components {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolvedPath))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return components
}

func parseFormatOrExit(s string) cli.OutputFormat {
	format, err := cli.ParseFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunsho upload [flags] <file>...")
		os.Exit(1)
	}
	format := parseFormatOrExit(*outputFormat)

	c := setup(*configPath, false)
	defer c.Close()

	ctx := context.Background()
	failed := false
	var uploaded []*models.UploadResult
	for _, path := range fs.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
			failed = true
			continue
		}
		result, err := c.Manager.Upload(ctx, content, filepath.Base(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Upload of %s failed: %v\n", path, err)
			failed = true
			continue
		}
		uploaded = append(uploaded, result)
		if format == cli.OutputText {
			fmt.Printf("Uploaded %s: %s (%d chunks)\n", result.Filename, result.DocumentID, result.TotalChunks)
		}
	}
	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(uploaded)
	}
	if failed {
		os.Exit(1)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 5, "number of results (capped at 10)")
	docs := fs.String("documents", "", "comma-separated document ids to search within")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunsho search [flags] <query>")
		os.Exit(1)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	format := parseFormatOrExit(*outputFormat)

	var documentIDs []string
	if *docs != "" {
		for _, id := range strings.Split(*docs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				documentIDs = append(documentIDs, id)
			}
		}
	}

	c := setup(*configPath, false)
	defer c.Close()

	results, err := c.Engine.Search(context.Background(), query, *limit, documentIDs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runGrep() {
	fs := flag.NewFlagSet("grep", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunsho grep [flags] <query>")
		os.Exit(1)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	format := parseFormatOrExit(*outputFormat)

	c := setup(*configPath, false)
	defer c.Close()

	results, err := c.Engine.Grep(context.Background(), query, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grep failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteKeywordResults(os.Stdout, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runLookup() {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("out", "", "write the original file to this path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunsho lookup [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	c := setup(*configPath, false)
	defer c.Close()

	ctx := context.Background()
	if *out == "" {
		info, err := c.Manager.Lookup(ctx, docID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s  %s  %s\n", info.DocumentID, info.Filename, info.Path)
		return
	}

	info, content, err := c.Manager.ReadOriginal(ctx, docID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, content, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes) to %s\n", info.Filename, len(content), *out)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunsho delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	c := setup(*configPath, false)
	defer c.Close()

	if err := c.Manager.Delete(context.Background(), docID); err != nil {
		fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormatOrExit(*outputFormat)

	c := setup(*configPath, false)
	defer c.Close()

	docs, err := c.Manager.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteDocuments(os.Stdout, docs, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormatOrExit(*outputFormat)

	c := setup(*configPath, false)
	defer c.Close()

	stats, err := c.Manager.Stats(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStats(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runHealth() {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormatOrExit(*outputFormat)

	c := setup(*configPath, false)
	defer c.Close()

	status := c.Manager.Health(context.Background())
	if err := cli.WriteHealth(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if status.Status != "healthy" {
		os.Exit(1)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	syncExisting := fs.Bool("sync", true, "ingest files already present in the watched directories")
	_ = fs.Parse(os.Args[2:])

	c := setup(*configPath, *debug)
	defer c.Close()

	roots := c.Config.Watch.Directories
	if fs.NArg() > 0 {
		roots = fs.Args()
	}
	if len(roots) == 0 {
		fmt.Println("Usage: bunsho watch [flags] <directory>...")
		fmt.Println("(or set watch.directories in the config file)")
		os.Exit(1)
	}

	ingestFile := func(path string) {
		content, err := os.ReadFile(path)
		if err != nil {
			c.Logger.Warn("failed to read dropped file", zap.String("path", path), zap.Error(err))
			return
		}
		result, err := c.Manager.Upload(context.Background(), content, filepath.Base(path))
		if err != nil {
			c.Logger.Warn("failed to ingest dropped file", zap.String("path", path), zap.Error(err))
			return
		}
		c.Logger.Info("ingested dropped file",
			zap.String("path", path),
			zap.String("document_id", result.DocumentID),
			zap.Int("chunks", result.TotalChunks))
	}

	w := watcher.New(roots, c.Config.Watch.Extensions, c.Config.Watch.RecursiveOrDefault(), ingestFile, c.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		c.Logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()
	if *syncExisting {
		w.SyncExistingFiles()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	c.Logger.Info("Shutting down...")
}

func printUsage() {
	fmt.Println(`bunsho - document indexing and retrieval engine

Usage:
  bunsho upload [flags] <file>...     Ingest and index documents
  bunsho search [flags] <query>       Similarity search over chunks
  bunsho grep [flags] <query>         Keyword search over chunks
  bunsho lookup [flags] <id>          Locate the original file for a document
  bunsho delete [flags] <id>          Delete a document from both stores
  bunsho list [flags]                 List indexed documents
  bunsho stats [flags]                Show collection statistics
  bunsho health [flags]               Check engine health
  bunsho watch [flags] [dir]...       Auto-ingest files dropped in directories
  bunsho version                      Show version
  bunsho help                         Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/bunsho/config.yaml)
  --output string    Output format: text or json (default: text)

Search Flags:
  --limit int          Number of results, capped at 10 (default: 5)
  --documents string   Comma-separated document ids to search within

Lookup Flags:
  --out string       Write the original file bytes to this path

Watch Flags:
  --debug            Enable debug logging
  --sync             Ingest files already present (default: true)

Examples:
  bunsho upload contract.pdf notes.txt
  bunsho search "termination for convenience"
  bunsho search --documents doc_ab12_cd34ef56 "liability cap"
  bunsho grep indemnification
  bunsho lookup doc_ab12_cd34ef56
  bunsho lookup --out original.pdf doc_ab12_cd34ef56
  bunsho delete doc_ab12_cd34ef56
  bunsho watch ~/Documents/inbox`)
}
