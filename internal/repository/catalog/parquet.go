package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// EmbeddingRow is one row of the embedding cache file.
// Row is the catalog CSV row index the vector belongs to.
type EmbeddingRow struct {
	Row       int64     `parquet:"row"`
	ID        string    `parquet:"id"`
	Embedding []float32 `parquet:"embedding"`
}

// ReadEmbeddings decodes an embedding cache.
func ReadEmbeddings(r io.ReaderAt, size int64) ([]EmbeddingRow, error) {
	rows, err := parquet.Read[EmbeddingRow](r, size)
	if err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}
	return rows, nil
}

// ReadEmbeddingsFile reads the embedding cache at path.
func ReadEmbeddingsFile(path string) ([]EmbeddingRow, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read embeddings %s: %w", path, err)
	}
	rows, err := ReadEmbeddings(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read embeddings %s: %w", path, err)
	}
	return rows, nil
}

// WriteEmbeddings encodes an embedding cache.
func WriteEmbeddings(w io.Writer, rows []EmbeddingRow) error {
	if err := parquet.Write(w, rows); err != nil {
		return fmt.Errorf("encode embeddings: %w", err)
	}
	return nil
}

// WriteEmbeddingsFile writes the cache to path atomically (temp file + rename).
func WriteEmbeddingsFile(path string, rows []EmbeddingRow) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".embeddings-*.parquet")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after rename

	if err := WriteEmbeddings(tmp, rows); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
