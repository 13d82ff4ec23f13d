// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/chatvault"
	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/ai/openai"
	"github.com/poiesic/chatvault/ingest"
	"github.com/poiesic/chatvault/query"
	"github.com/poiesic/chatvault/reembed"
	"github.com/poiesic/chatvault/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "chatvault",
		Usage: "Searchable archive for chat exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML config file (default ~/.config/chatvault/config.toml)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to archive database directory (overrides config file)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a chat export directory into the archive",
				ArgsUsage: "<export-dir>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "gap",
						Usage: "Inactivity gap that ends a session",
						Value: 6 * time.Hour,
					},
					&cli.IntFlag{
						Name:  "chunk-tokens",
						Usage: "Approximate token threshold above which sessions are chunked",
						Value: 10000,
					},
					&cli.Float64Flag{
						Name:  "overlap",
						Usage: "Fraction of each chunk shared with its predecessor (0 to 0.5)",
						Value: 0.10,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of conversations ingested concurrently (0 = auto)",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "chat-host",
						Usage: "Chat service host URL for entity extraction (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "chat-model",
						Usage: "Chat model name for entity extraction (overrides config file)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the archive",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum retrieved conversations to ground the answer on",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "sources",
						Usage: "Print the conversations the answer was grounded on",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "chat-host",
						Usage: "Chat service host URL for answer generation (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "chat-model",
						Usage: "Chat model name for answer generation (overrides config file)",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Rewrite all document vectors with a new embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config file)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to embed per call",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Retrieve matching conversations without generating an answer",
				ArgsUsage: "<question>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum results to print",
						Value: 10,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config file)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config file)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openArchive resolves the database path and AI configuration from the
// config file and flags, then opens the archive.
func openArchive(c *cli.Context) (*chatvault.Archive, error) {
	fileCfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = fileCfg.DBPath
	}
	if dbPath == "" {
		return nil, fmt.Errorf("no database path: pass --db or set db_path in the config file")
	}

	var opts []ai.ConfigOption
	if host := firstNonEmpty(c.String("embedding-host"), fileCfg.EmbeddingHost); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if host := firstNonEmpty(c.String("chat-host"), fileCfg.ChatHost); host != "" {
		opts = append(opts, ai.WithChatHost(host))
	}
	if model := firstNonEmpty(c.String("embedding-model"), fileCfg.EmbeddingModel); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := firstNonEmpty(c.String("chat-model"), fileCfg.ChatModel); model != "" {
		opts = append(opts, ai.WithChatModel(model))
	}

	return chatvault.OpenArchive(dbPath, chatvault.WithAIConfig(ai.NewConfig(opts...)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func ingestCommand(c *cli.Context) error {
	exportDir := c.Args().First()
	if exportDir == "" {
		return fmt.Errorf("export directory is required")
	}

	export, err := ingest.OpenExport(exportDir)
	if err != nil {
		return err
	}

	archive, err := openArchive(c)
	if err != nil {
		return err
	}
	defer archive.Close()

	config := ingest.DefaultConfig()
	config.InactivityGap = c.Duration("gap")
	config.ChunkTokenThreshold = c.Int("chunk-tokens")
	config.ChunkOverlapFraction = c.Float64("overlap")
	if c.Int("pool-size") > 0 {
		config.PoolSize = c.Int("pool-size")
	}

	pipeline, err := archive.NewIngestPipeline(ingest.WithConfig(config))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	report, err := pipeline.Run(context.Background(), export)
	if err != nil {
		return err
	}

	printReport(report)
	if report.Failed() > 0 {
		return fmt.Errorf("%d conversation(s) failed; rerun to retry", report.Failed())
	}
	return nil
}

func printReport(report *ingest.Report) {
	fmt.Fprintf(os.Stderr, "Run %s: %d completed, %d failed, %d skipped (%s)\n",
		report.RunID,
		report.Completed(),
		report.Failed(),
		report.SkippedCount(),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	for _, conv := range report.Conversations {
		switch {
		case conv.Skipped:
			fmt.Fprintf(os.Stderr, "  %-24s skipped\n", conv.Conversation)
		case conv.Error != "":
			fmt.Fprintf(os.Stderr, "  %-24s FAILED: %s\n", conv.Conversation, conv.Error)
		default:
			fmt.Fprintf(os.Stderr, "  %-24s %d sessions, %d documents",
				conv.Conversation, conv.Sessions, conv.Documents)
			if len(conv.Failures) > 0 {
				fmt.Fprintf(os.Stderr, " (%d unreadable files)", len(conv.Failures))
			}
			fmt.Fprintln(os.Stderr)
		}
	}
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	archive, err := openArchive(c)
	if err != nil {
		return err
	}
	defer archive.Close()

	retrieverCfg := query.DefaultRetrieverConfig()
	retrieverCfg.MaxHits = c.Int("max-hits")

	answerer, err := archive.NewAnswerer(
		[]query.RetrieverOption{query.WithRetrieverConfig(retrieverCfg)})
	if err != nil {
		return err
	}

	answer, err := answerer.Answer(context.Background(), question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)

	if c.Bool("sources") && len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, source := range answer.Sources {
			printResult(source)
		}
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	fileCfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = fileCfg.DBPath
	}
	if dbPath == "" {
		return fmt.Errorf("no database path: pass --db or set db_path in the config file")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	var opts []ai.ConfigOption
	if host := firstNonEmpty(c.String("embedding-host"), fileCfg.EmbeddingHost); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if model := firstNonEmpty(c.String("embedding-model"), fileCfg.EmbeddingModel); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	aiConfig := ai.NewConfig(opts...)

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Archive: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", aiConfig.EmbeddingHost)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", aiConfig.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	archive, err := openArchive(c)
	if err != nil {
		return err
	}
	defer archive.Close()

	retrieverCfg := query.DefaultRetrieverConfig()
	retrieverCfg.MaxHits = c.Int("max-hits")

	retriever, err := archive.NewRetriever(query.WithRetrieverConfig(retrieverCfg))
	if err != nil {
		return err
	}

	results, classification, err := retriever.Retrieve(context.Background(), question)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Category: %s\n", classification.Category)
	if len(results) == 0 {
		fmt.Println("No matching conversations.")
		return nil
	}
	for _, result := range results {
		printResult(result)
	}
	return nil
}

func printResult(result query.Result) {
	doc := result.Document
	fmt.Printf("  #%s (%s) %s to %s  score=%.4f\n",
		doc.Channel,
		doc.Kind,
		doc.StartTime.Format("2006-01-02 15:04"),
		doc.EndTime.Format("2006-01-02 15:04"),
		result.FusedScore)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
