package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	domcat "github.com/kailas-cloud/prodsearch/internal/domain/catalog"
)

// Config locates the catalog files.
type Config struct {
	Path           string
	EmbeddingsPath string
	CSV            CSVConfig
}

// Load reads both files and joins them. Any misalignment is an error: result
// indices are meaningless when rows and vectors disagree.
func Load(cfg Config, logger *zap.Logger) (*domcat.Catalog, error) {
	rows, err := ReadCSVFile(cfg.Path, cfg.CSV)
	if err != nil {
		return nil, err
	}
	embs, err := ReadEmbeddingsFile(cfg.EmbeddingsPath)
	if err != nil {
		return nil, err
	}

	c, err := Build(rows, embs)
	if err != nil {
		return nil, err
	}

	logger.Info("Catalog loaded",
		zap.String("path", cfg.Path),
		zap.String("embeddings_path", cfg.EmbeddingsPath),
		zap.Int("items", c.Len()),
		zap.Int("dimensions", c.Dim()),
	)
	return c, nil
}

// Build joins catalog rows with their embeddings by position.
func Build(rows []Row, embs []EmbeddingRow) (*domcat.Catalog, error) {
	if len(rows) != len(embs) {
		return nil, domain.NewMisalignment(len(rows), len(embs))
	}

	items := make([]domcat.Item, len(rows))
	for i := range rows {
		r, e := &rows[i], &embs[i]
		if e.Row != int64(i) {
			return nil, fmt.Errorf("%w: embedding at position %d is for row %d",
				domain.ErrCatalogMisaligned, i, e.Row)
		}
		if e.ID != "" && e.ID != r.ID {
			return nil, fmt.Errorf("%w: row %d has ID %q, embedding has %q",
				domain.ErrCatalogMisaligned, i, r.ID, e.ID)
		}

		it, err := domcat.NewItem(r.ID, r.Name, r.Subtitle, r.Description, r.Attributes, e.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrInvalidCatalog, i, err)
		}
		items[i] = it
	}

	c, err := domcat.New(items)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}
