package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"newsgraph/answer"
	"newsgraph/config"
	apperrors "newsgraph/errors"
	"newsgraph/graph"
	"newsgraph/ingest"
	"newsgraph/llmclient"
	"newsgraph/persistence"
	"newsgraph/rag"
	"newsgraph/web"
)

// app bundles the service stack shared by every command.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *graph.Store
	similarity *graph.SimilarityEngine
	index      *graph.QueryIndex
	ingest     *ingest.Service
	answer     *answer.Service
	persist    persistence.Store
}

// newApp loads configuration, opens the snapshot store, restores the saved
// graph, and wires the service stack.
func newApp(ctx context.Context) (*app, error) {
	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to re-initialize logger with configured level: %w", err)
	}

	store := graph.NewStore(logger)

	persist, err := persistence.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	snapshot, err := persist.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load saved graph, starting empty", zap.Error(err))
	} else if snapshot != nil {
		if err := store.Restore(snapshot); err != nil {
			logger.Warn("Saved graph is invalid, starting empty", zap.Error(err))
		}
	}

	similarity := graph.NewSimilarityEngine(store, graph.SimilarityConfig{
		CategoryWeight: cfg.CategoryWeight,
		TopicWeight:    cfg.TopicWeight,
		KeywordWeight:  cfg.KeywordWeight,
		EntityWeight:   cfg.EntityWeight,
	}, logger)
	index := graph.NewQueryIndex(store, logger)
	labeller := ingest.NewHeuristicLabeller(logger)
	ingestService := ingest.NewService(store, similarity, labeller, cfg.EdgeThreshold, cfg.SimilarLimit, logger)
	aggregator := rag.NewAggregator(store, index, cfg.StrategyTimeout, logger)

	var generator answer.Generator
	if cfg.LLMProvider == "" {
		logger.Info("No LLM provider configured, answers will be extractive")
		generator = llmclient.NewExtractive(logger)
	} else {
		client, err := llmclient.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		generator = client
	}
	answerService := answer.NewService(store, aggregator, generator, cfg.AnswerCacheSize, cfg.MaxSources, logger)

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		similarity: similarity,
		index:      index,
		ingest:     ingestService,
		answer:     answerService,
		persist:    persist,
	}, nil
}

func (a *app) Close() {
	if err := a.persist.Close(); err != nil {
		a.logger.Warn("Failed to close snapshot store", zap.Error(err))
	}
	config.Cleanup()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with background autosave",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	saver := persistence.NewSaver(app.persist, app.store, app.cfg.AutosaveInterval, app.logger)
	saver.Start()
	defer saver.Stop()

	server := web.NewServer(web.Services{
		Store:      app.store,
		Similarity: app.similarity,
		Index:      app.index,
		Ingest:     app.ingest,
		Answer:     app.answer,
		Persist:    app.persist,
		Saver:      saver,
	}, app.logger, app.cfg)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := fmt.Sprintf(":%d", app.cfg.WebPort)
	return server.Start(ctx, addr)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Batch-ingest articles from a YAML or JSON file",
	Long: `Ingest reads an article list from a YAML or JSON file, stores each
article in the graph with derived labels where none are provided, links
similar articles, and saves a snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	inputs, err := readSeedFile(args[0])
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no articles found in %s", args[0])
	}

	results := app.ingest.IngestBatch(ctx, inputs)
	for _, result := range results {
		fmt.Printf("%-40s  %d relationships\n", result.Node.Title, result.RelationshipsWritten)
	}
	if skipped := len(inputs) - len(results); skipped > 0 {
		fmt.Printf("\nIngested %d articles, skipped %d invalid.\n", len(results), skipped)
	} else {
		fmt.Printf("\nIngested %d articles.\n", len(results))
	}

	if err := app.persist.Save(ctx, app.store.Snapshot()); err != nil {
		return err
	}
	return nil
}

// readSeedFile decodes an article list. YAML documents pass through JSON so
// the json field names apply to both formats.
func readSeedFile(path string) ([]ingest.ArticleInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var inputs []ingest.ArticleInput
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrParseFailure, "parse %s: %v", path, err)
		}
		return inputs, nil
	}

	var raw []map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrParseFailure, "parse %s: %v", path, err)
	}
	bridged, err := json.Marshal(raw)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrParseFailure, "parse %s: %v", path, err)
	}
	if err := json.Unmarshal(bridged, &inputs); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrParseFailure, "parse %s: %v", path, err)
	}
	return inputs, nil
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Ask one question against the saved graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	maxSources, _ := cmd.Flags().GetInt("max-sources")

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.answer.Ask(ctx, strings.Join(args, " "), maxSources)
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range resp.Sources {
			if src.URL != "" {
				fmt.Printf("  [%d] %s (%s)\n", i+1, src.Title, src.URL)
			} else {
				fmt.Printf("  [%d] %s\n", i+1, src.Title)
			}
		}
	}
	return nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print graph statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(app.store.Stats())
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the graph snapshot as JSON to stdout or a file",
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	snapshot := app.store.Snapshot()
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Exported %d articles and %d relationships to %s\n",
		snapshot.Stats.NodeCount, snapshot.Stats.EdgeCount, out)
	return nil
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the persisted graph",
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("clear wipes the persisted graph; re-run with --yes to confirm")
	}

	ctx := context.Background()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	app.store.Clear()
	if err := app.persist.Save(ctx, app.store.Snapshot()); err != nil {
		return err
	}
	fmt.Println("Cleared persisted graph.")
	return nil
}

func init() {
	queryCmd.Flags().Int("max-sources", 0, "maximum source articles per answer (0 = use config)")
	exportCmd.Flags().String("out", "", "output file (default: stdout)")
	clearCmd.Flags().Bool("yes", false, "confirm wiping the persisted graph")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearCmd)
}
