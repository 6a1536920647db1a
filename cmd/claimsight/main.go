// Package main is the claimsight CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/decision"
	"github.com/claimsight/claimsight/internal/docproc"
	"github.com/claimsight/claimsight/internal/extractor"
	"github.com/claimsight/claimsight/internal/index"
	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/models"
	"github.com/claimsight/claimsight/internal/pipeline"
	"github.com/claimsight/claimsight/internal/server"
	"github.com/claimsight/claimsight/internal/storage"
	"github.com/claimsight/claimsight/internal/watcher"
	"github.com/claimsight/claimsight/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/claimsight/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so development runs pick up the
// project's own config. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
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
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "ingest":
		runIngest()
	case "delete":
		runDelete()
	case "seed":
		runSeed()
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("claimsight version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	seedCorpus := fs.Bool("seed", false, "load the sample policy corpus when the index is empty")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if *seedCorpus && components.Index.Stats(ctx).Count == 0 {
		n, err := docproc.Seed(ctx, components.Index)
		if err != nil {
			logger.Warn("seed corpus failed", zap.Error(err))
		} else {
			logger.Info("seeded sample policy corpus", zap.Int("fragments", n))
		}
	}

	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchSvc = watcher.New(cfg.Watch.Directories, cfg.Watch.Extensions, components.Processor, logger)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		go watchSvc.SyncExisting(watchCtx)
	}

	srv := server.New(components.Pipeline, components.Processor, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// buildQueryText joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQueryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// queryArgsReorder moves flags (and their values) that appear after the query
// text to the front of the slice so flag.Parse sees them. The flag package
// stops at the first non-flag argument otherwise.
func queryArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runQuery() {
	queryArgs := queryArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = run the pipeline locally)")
	category := fs.String("category", "", "category hint: insurance, legal, hr, or general")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(queryArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: claimsight query [flags] <query text>")
		os.Exit(1)
	}
	queryText := buildQueryText(fs.Args())
	if queryText == "" {
		fmt.Println("Usage: claimsight query [flags] <query text>")
		os.Exit(1)
	}

	var result *models.PipelineResult
	if *serverURL != "" {
		res, err := processViaHTTP(*serverURL, queryText, *category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		result = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		hint := models.CategoryGeneral
		if *category != "" {
			parsed, ok := models.ParseCategory(*category)
			if !ok {
				fmt.Fprintf(os.Stderr, "Unknown category %q; use insurance, legal, hr, or general\n", *category)
				os.Exit(1)
			}
			hint = parsed
		}
		local := components.Pipeline.Process(context.Background(), queryText, hint)
		result = &local
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		printResult(result)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printResult(result *models.PipelineResult) {
	fmt.Printf("decision:      %s\n", result.Decision.Outcome)
	if result.Decision.Amount != nil {
		fmt.Printf("amount:        %.2f\n", *result.Decision.Amount)
	}
	fmt.Printf("confidence:    %.2f\n", result.Decision.Confidence)
	fmt.Printf("justification: %s\n", result.Decision.Justification)
	fmt.Println()
	fmt.Printf("category:      %s\n", result.Query.Category)
	fmt.Printf("intent:        %s\n", result.Query.Intent)
	for _, e := range result.Query.Entities {
		fmt.Printf("entity:        %s=%q (%.2f)\n", e.Type, e.Value, e.Confidence)
	}
	fmt.Println()
	for _, f := range result.Fragments {
		fmt.Printf("clause %.2f:   %s\n", f.Similarity, utils.Truncate(f.Content, 80))
	}
	fmt.Printf("elapsed_ms:    %d\n", result.ElapsedMS)
}

func processViaHTTP(serverURL, queryText, category string) (*models.PipelineResult, error) {
	payload := map[string]string{"query": queryText}
	if category != "" {
		payload["category"] = category
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/process", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.PipelineResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: claimsight ingest [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	result, err := components.Processor.IngestFile(context.Background(), path, nil)
	if err != nil {
		fmt.Printf("Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document ingested: %s (%d fragments)\n", result.DocumentID, result.FragmentsAdded)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: claimsight delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	if err := components.Processor.Remove(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	n, err := docproc.Seed(context.Background(), components.Index)
	if err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d sample policy fragments\n", n)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status pipeline.Status
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		status = components.Pipeline.StatusReport(context.Background())
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("status:     %s\n", status.Status)
		for name, health := range status.Components {
			fmt.Printf("%-11s %s\n", name+":", health)
		}
		fmt.Printf("fragments:  %d\n", status.IndexStats.Count)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*pipeline.Status, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s pipeline.Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	roots := fs.Args()
	if len(roots) == 0 {
		roots = cfg.Watch.Directories
	}
	if len(roots) == 0 {
		fmt.Println("Usage: claimsight watch [flags] <directory>...")
		fmt.Println("No directories given and none configured under watch.directories.")
		os.Exit(1)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchSvc := watcher.New(roots, cfg.Watch.Extensions, components.Processor, logger)
	if err := watchSvc.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExisting(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	watchSvc.Stop()
}

// Components holds initialized services.
type Components struct {
	Storage   storage.Store
	Client    llm.Client
	Index     *index.Index
	Pipeline  *pipeline.Pipeline
	Processor *docproc.Processor
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// buildClient assembles the provider preference list from config. A
// deterministic stand-in terminates the list so selection never fails.
func buildClient(cfg *config.Config, logger *zap.Logger) llm.Client {
	var candidates []llm.Client
	timeout := 60 * time.Second

	addOpenAI := func(baseURL, apiKey, model, embedModel string) {
		candidates = append(candidates, llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:        baseURL,
			APIKey:         apiKey,
			Model:          model,
			EmbeddingModel: embedModel,
			MaxTokens:      cfg.AI.MaxTokens,
			Temperature:    cfg.AI.Temperature,
			Timeout:        timeout,
		}))
	}
	addGemini := func() {
		if cfg.AI.GeminiAPIKey == "" {
			return
		}
		candidates = append(candidates, llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:         cfg.AI.GeminiAPIKey,
			Model:          cfg.AI.GeminiModel,
			EmbeddingModel: cfg.AI.GeminiEmbedModel,
			MaxTokens:      cfg.AI.MaxTokens,
			Temperature:    cfg.AI.Temperature,
			Timeout:        timeout,
		}))
	}

	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIAPIKey != "" {
			addOpenAI(cfg.AI.OpenAIBaseURL, cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, cfg.AI.OpenAIEmbedModel)
		}
		addGemini()
	case "ollama":
		addOpenAI(cfg.AI.OllamaBaseURL, "", cfg.AI.OllamaModel, cfg.AI.OllamaEmbedModel)
		addGemini()
	default:
		addGemini()
		if cfg.AI.OpenAIAPIKey != "" {
			addOpenAI(cfg.AI.OpenAIBaseURL, cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, cfg.AI.OpenAIEmbedModel)
		}
	}
	candidates = append(candidates, llm.NewStaticClient(cfg.AI.EmbeddingDimensions))

	selector := llm.NewSelector(logger, candidates...)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return selector.Pick(ctx)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := buildClient(cfg, logger)

	idx, err := index.New(store, client, logger, index.Options{
		Dimensions:          cfg.AI.EmbeddingDimensions,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		KeywordThreshold:    cfg.Search.KeywordThreshold,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize index: %w", err)
	}

	ex := extractor.New(client, logger)
	syn := decision.New(client, logger)
	pipe := pipeline.New(ex, idx, syn, cfg.Search.MaxResults, logger)

	chunker := docproc.NewChunker(cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)
	processor := docproc.NewProcessor(chunker, idx, logger)

	return &Components{
		Storage:   store,
		Client:    client,
		Index:     idx,
		Pipeline:  pipe,
		Processor: processor,
	}, nil
}

func printUsage() {
	fmt.Println(`claimsight - Policy document decision service

Usage:
  claimsight server [flags]           Start the HTTP server
  claimsight query [flags] <text>     Process a claim query
  claimsight ingest [flags] <file>    Ingest a policy document
  claimsight delete [flags] <id>      Delete an ingested document
  claimsight seed [flags]             Load the sample policy corpus
  claimsight status [flags]           Show component health and index stats
  claimsight watch [flags] <dir>...   Watch directories and auto-ingest
  claimsight version                  Show version
  claimsight help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/claimsight/config.yaml)
  --debug            Enable debug logging
  --seed             Load the sample policy corpus when the index is empty

Query Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to run the pipeline locally.
  --category string  Category hint: insurance, legal, hr, or general
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  claimsight server --seed
  claimsight query "46-year-old male, knee surgery in Pune, 3-month-old insurance policy"
  claimsight query --category hr "How many days of annual leave do employees get?"
  claimsight query --output json "knee surgery coverage"
  claimsight ingest policy.pdf
  claimsight delete 6f1c9e2a-29b1-4d55-9f3e-1d2c3b4a5e6f
  claimsight seed
  claimsight status
  claimsight watch ./policies`)
}
