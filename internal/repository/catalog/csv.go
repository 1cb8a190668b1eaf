// Package catalog loads the product catalog CSV and its index-aligned
// embedding cache, and writes the cache for the embedding generator.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

// Catalog CSV columns every file must carry.
const (
	ColumnName        = "name"
	ColumnSubtitle    = "sub_title"
	ColumnDescription = "description"
	ColumnColor       = "dominant_color"
)

// CSVConfig selects the identifier and attribute columns.
type CSVConfig struct {
	IDColumn         string   // empty: derive a deterministic UUIDv5 per row
	AttributeColumns []string // default: dominant_color
}

// Row is one catalog CSV record before it is joined with its embedding.
type Row struct {
	Index       int
	ID          string
	Name        string
	Subtitle    string
	Description string
	Attributes  map[string]string
}

// DocumentText is the text a catalog row is embedded from.
func (r *Row) DocumentText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Name, r.Subtitle, r.Description} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ")
}

// RowID derives the identifier of a row that has no explicit ID column.
// Same row index and name always give the same ID.
func RowID(index int, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%d:%s", index, name)).String()
}

// ReadCSVFile reads the catalog CSV at path.
func ReadCSVFile(path string, cfg CSVConfig) ([]Row, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses a catalog CSV with a header row. Ragged rows and missing
// required columns are errors.
func ReadCSV(r io.Reader, cfg CSVConfig) ([]Row, error) {
	attrCols := cfg.AttributeColumns
	if len(attrCols) == 0 {
		attrCols = []string{ColumnColor}
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog file", domain.ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}

	required := []string{ColumnName, ColumnSubtitle, ColumnDescription, ColumnColor}
	required = append(required, attrCols...)
	if cfg.IDColumn != "" {
		required = append(required, cfg.IDColumn)
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrInvalidCatalog, col)
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, err)
		}

		i := len(rows)
		row := Row{
			Index:       i,
			Name:        strings.TrimSpace(rec[idx[ColumnName]]),
			Subtitle:    strings.TrimSpace(rec[idx[ColumnSubtitle]]),
			Description: strings.TrimSpace(rec[idx[ColumnDescription]]),
			Attributes:  make(map[string]string, len(attrCols)),
		}
		for _, col := range attrCols {
			row.Attributes[col] = strings.TrimSpace(rec[idx[col]])
		}
		if cfg.IDColumn != "" {
			row.ID = strings.TrimSpace(rec[idx[cfg.IDColumn]])
		} else {
			row.ID = RowID(i, row.Name)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
