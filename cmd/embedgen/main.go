// Command embedgen precomputes the product embedding cache the search server
// loads at startup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/config"
	"github.com/kailas-cloud/prodsearch/internal/domain"
	logpkg "github.com/kailas-cloud/prodsearch/internal/logger"
	catalogrepo "github.com/kailas-cloud/prodsearch/internal/repository/catalog"
	localEmb "github.com/kailas-cloud/prodsearch/internal/transport/local"
	openaiEmb "github.com/kailas-cloud/prodsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/prodsearch/internal/usecase/embedding"
	"github.com/kailas-cloud/prodsearch/internal/usecase/embedgen"
	"github.com/kailas-cloud/prodsearch/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "embedgen",
		Usage:   "Generate the product embedding cache",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Embed every catalog row and write the Parquet embedding cache",
				Action: generateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a config file (default: config/<ENV>.yaml)",
					},
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Catalog CSV path (overrides catalog.path)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output Parquet path (overrides catalog.embeddings_path)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of rows embedded per provider call",
						Value: embedgen.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches embedded concurrently",
						Value: embedgen.DefaultWorkers,
					},
					&cli.BoolFlag{
						Name:  "normalize",
						Usage: "Scale every vector to unit length before writing",
					},
				},
			},
		},
	}
}

func generateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if p := c.String("catalog"); p != "" {
		cfg.Catalog.Path = p
	}
	if p := c.String("out"); p != "" {
		cfg.Catalog.EmbeddingsPath = p
	}

	logger, err := logpkg.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	embedder := buildDocumentEmbedder(&cfg.Embedding, logger)
	gen := embedgen.New(embedder, embedgen.Config{
		BatchSize: c.Int("batch-size"),
		Workers:   c.Int("workers"),
		Normalize: c.Bool("normalize"),
	}, logger)

	stats, err := gen.Run(c.Context, cfg.Catalog.Path, catalogrepo.CSVConfig{
		IDColumn:         cfg.Catalog.IDColumn,
		AttributeColumns: cfg.Catalog.AttributeColumns,
	}, cfg.Catalog.EmbeddingsPath)
	if err != nil {
		return fmt.Errorf("generate embeddings: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Wrote %d embeddings (%d dimensions, %d tokens) to %s in %s\n",
		stats.Rows, stats.Dimensions, stats.TotalTokens, cfg.Catalog.EmbeddingsPath, stats.Duration.Round(time.Millisecond))
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(config.GetEnv())
}

// buildDocumentEmbedder assembles provider -> Instrumented -> Instruction.
// The cache is skipped: every catalog row is embedded exactly once.
func buildDocumentEmbedder(cfg *config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	var (
		base  domain.Embedder
		model = cfg.Model
	)
	switch cfg.Provider {
	case localEmb.Provider:
		base = localEmb.NewEmbedder(cfg.Dimensions)
		model = "hashing"
	default:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			Provider:          cfg.Provider,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Logger:            logger,
		})
	}

	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		base, cfg.Provider, model, cfg.MaxBatchSize, logger,
	)
	if cfg.DocumentInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.DocumentInstruction)
	}
	return embedder
}
