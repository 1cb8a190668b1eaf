package prodsearch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	catalogPath      string
	embeddingsPath   string
	idColumn         string
	attributeColumns []string

	filterAttribute string
	catalogScope    bool
	topK            int

	synonymsPath string
	noExpansion  bool

	embedder    Embedder
	localDim    int
	openai      *OpenAIConfig
	queryPrefix string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// OpenAIConfig configures an OpenAI-compatible embedding endpoint.
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string // empty = api.openai.com
	Model             string
	Dimensions        int     // 0 = model default
	RequestsPerSecond float64 // 0 = unlimited
}

// WithCatalog sets the product CSV and its precomputed Parquet embeddings. Required.
func WithCatalog(csvPath, embeddingsPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = csvPath
		c.embeddingsPath = embeddingsPath
	})
}

// WithIDColumn reads item identifiers from a CSV column instead of deriving them.
func WithIDColumn(column string) Option {
	return optionFunc(func(c *clientConfig) {
		c.idColumn = column
	})
}

// WithAttributes sets the CSV columns loaded as item attributes.
// Defaults to dominant_color.
func WithAttributes(columns ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.attributeColumns = columns
	})
}

// WithFilterAttribute sets the attribute searches are filtered by.
// Defaults to the first attribute column.
func WithFilterAttribute(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.filterAttribute = key
	})
}

// WithCatalogScope applies filters to the whole ranked catalog instead of
// the top results only, so a filtered search still returns up to top-k items.
func WithCatalogScope() Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogScope = true
	})
}

// WithTopK sets the number of ranked results. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithSynonymsFile replaces the built-in synonym lexicon.
func WithSynonymsFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.synonymsPath = path
	})
}

// WithoutExpansion embeds raw queries without synonym expansion.
func WithoutExpansion() Option {
	return optionFunc(func(c *clientConfig) {
		c.noExpansion = true
	})
}

// WithEmbedder sets a custom query embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithLocalEmbedder uses the offline hashing embedder with dim dimensions.
// The catalog must have been generated with the local provider as well.
func WithLocalEmbedder(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.localDim = dim
		c.openai = nil
	})
}

// WithOpenAI embeds queries through an OpenAI-compatible endpoint.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &cfg
		c.localDim = 0
	})
}

// WithQueryInstruction prefixes every query before embedding
// (e.g. "query: " for E5-style models).
func WithQueryInstruction(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryPrefix = prefix
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
