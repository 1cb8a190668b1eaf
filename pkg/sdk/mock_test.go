package prodsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/prodsearch/internal/domain/search/request"
	catalogrepo "github.com/kailas-cloud/prodsearch/internal/repository/catalog"
	localEmb "github.com/kailas-cloud/prodsearch/internal/transport/local"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (searchuc.Response, error)
	attr     string
	values   []string
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (searchuc.Response, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) FilterAttribute() string { return m.attr }

func (m *mockSearchUC) FilterValues() []string { return m.values }

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// --- fixtures ---

const fixtureCSV = `name,sub_title,description,dominant_color
Nike Air Max,Men's Shoes,red running shoe with a cushioned sole,red
Nike Blazer,Women's Shoes,white casual shoe with retro styling,white
Nike Windrunner,Men's Jacket,black running jacket for cold days,black
Nike Pegasus,Men's Shoes,black running shoe for daily miles,black
`

const fixtureDim = 256

// writeCatalog writes the fixture CSV and its hashing-embedder Parquet cache.
func writeCatalog(t *testing.T) (csvPath, embPath string) {
	t.Helper()
	dir := t.TempDir()
	csvPath = filepath.Join(dir, "products.csv")
	embPath = filepath.Join(dir, "embeddings.parquet")

	if err := os.WriteFile(csvPath, []byte(fixtureCSV), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	rows, err := catalogrepo.ReadCSVFile(csvPath, catalogrepo.CSVConfig{})
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	emb := localEmb.NewEmbedder(fixtureDim)
	out := make([]catalogrepo.EmbeddingRow, len(rows))
	for i := range rows {
		res, err := emb.Embed(context.Background(), rows[i].DocumentText())
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		out[i] = catalogrepo.EmbeddingRow{Row: int64(i), ID: rows[i].ID, Embedding: res.Embedding}
	}
	if err := catalogrepo.WriteEmbeddingsFile(embPath, out); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	return csvPath, embPath
}
