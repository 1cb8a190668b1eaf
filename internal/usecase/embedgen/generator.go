// Package embedgen precomputes the catalog embedding cache.
package embedgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/vector"
	"github.com/kailas-cloud/prodsearch/internal/repository/catalog"
)

// Defaults for the generator.
const (
	DefaultBatchSize = 64
	DefaultWorkers   = 4
)

// Config tunes batching and concurrency.
type Config struct {
	BatchSize int
	Workers   int
	Normalize bool // scale every vector to unit length before writing
}

// Stats summarizes one generation run.
type Stats struct {
	Rows        int
	Batches     int
	Dimensions  int
	TotalTokens int
	Duration    time.Duration
}

// Generator embeds catalog rows on a bounded worker pool.
type Generator struct {
	embed  domain.Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a generator. Zero config values fall back to defaults.
func New(embed domain.Embedder, cfg Config, logger *zap.Logger) *Generator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Generator{embed: embed, cfg: cfg, logger: logger}
}

// Run reads the catalog CSV, embeds every row, and writes the Parquet cache.
func (g *Generator) Run(
	ctx context.Context, catalogPath string, csvCfg catalog.CSVConfig, outPath string,
) (Stats, error) {
	start := time.Now()

	rows, err := catalog.ReadCSVFile(catalogPath, csvCfg)
	if err != nil {
		return Stats{}, err
	}

	out, stats, err := g.Generate(ctx, rows)
	if err != nil {
		return Stats{}, err
	}
	if err := catalog.WriteEmbeddingsFile(outPath, out); err != nil {
		return Stats{}, err
	}

	stats.Duration = time.Since(start)
	g.logger.Info("Embedding cache written",
		zap.String("catalog", catalogPath),
		zap.String("out", outPath),
		zap.Int("rows", stats.Rows),
		zap.Int("batches", stats.Batches),
		zap.Int("dimensions", stats.Dimensions),
		zap.Int("total_tokens", stats.TotalTokens),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// Generate embeds rows and returns one cache row per catalog row, in input
// order regardless of which batch finishes first. The first failing batch
// cancels the rest.
func (g *Generator) Generate(ctx context.Context, rows []catalog.Row) ([]catalog.EmbeddingRow, Stats, error) {
	if len(rows) == 0 {
		return nil, Stats{}, fmt.Errorf("%w: no rows to embed", domain.ErrInvalidCatalog)
	}

	pool, err := ants.NewPool(g.cfg.Workers)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]catalog.EmbeddingRow, len(rows))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		tokens   int
		batches  int
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for offset := 0; offset < len(rows); offset += g.cfg.BatchSize {
		batch := rows[offset:min(offset+g.cfg.BatchSize, len(rows))]
		batches++

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			n, err := g.embedBatch(ctx, batch, out[offset:offset+len(batch)])
			if err != nil {
				fail(fmt.Errorf("batch at row %d: %w", offset, err))
				return
			}
			mu.Lock()
			tokens += n
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit batch at row %d: %w", offset, err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, Stats{}, firstErr
	}

	dim := len(out[0].Embedding)
	for i := range out {
		if len(out[i].Embedding) != dim {
			return nil, Stats{}, fmt.Errorf("%w: row %d has %d dimensions, row 0 has %d",
				domain.ErrVectorDimMismatch, i, len(out[i].Embedding), dim)
		}
	}

	return out, Stats{Rows: len(rows), Batches: batches, Dimensions: dim, TotalTokens: tokens}, nil
}

func (g *Generator) embedBatch(ctx context.Context, batch []catalog.Row, dst []catalog.EmbeddingRow) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err //nolint:wrapcheck // context error is self-describing
	}

	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].DocumentText()
	}

	res, err := domain.BatchEmbed(ctx, g.embed, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return 0, fmt.Errorf("got %d vectors for %d rows: %w",
			len(res.Embeddings), len(batch), domain.ErrEmbeddingProviderError)
	}

	for i, emb := range res.Embeddings {
		if len(emb) == 0 {
			return 0, errors.New("provider returned an empty vector")
		}
		if g.cfg.Normalize {
			vector.NormalizeL2(emb)
		}
		dst[i] = catalog.EmbeddingRow{
			Row:       int64(batch[i].Index),
			ID:        batch[i].ID,
			Embedding: emb,
		}
	}

	g.logger.Debug("Batch embedded",
		zap.Int("first_row", batch[0].Index),
		zap.Int("rows", len(batch)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res.TotalTokens, nil
}
