package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/prodsearch/internal/domain/search/scope"
)

// Config holds the prodsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig points at the product CSV and its precomputed embeddings.
type CatalogConfig struct {
	Path             string   `yaml:"path"`
	EmbeddingsPath   string   `yaml:"embeddings_path"`
	IDColumn         string   `yaml:"id_column"` // empty = derive ids from row index and name
	AttributeColumns []string `yaml:"attribute_columns"`
}

// EmbeddingConfig holds the query/document embedding provider settings.
type EmbeddingConfig struct {
	Provider            string  `yaml:"provider"` // openai, local
	APIKey              string  `yaml:"api_key"`
	BaseURL             string  `yaml:"base_url"`
	Model               string  `yaml:"model"`
	Dimensions          int     `yaml:"dimensions"`
	QueryInstruction    string  `yaml:"query_instruction"`
	DocumentInstruction string  `yaml:"document_instruction"`
	RequestsPerSecond   float64 `yaml:"requests_per_second"` // 0 = unlimited
	MaxBatchSize        int     `yaml:"max_batch_size"`
}

// CacheConfig selects and configures the embedding cache driver.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, memory, redis, valkey, badger
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Path             string   `yaml:"path"`
	Size             int      `yaml:"size"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds ranking, filtering and presentation settings.
type SearchConfig struct {
	TopK               int      `yaml:"top_k"`
	FilterAttribute    string   `yaml:"filter_attribute"`
	FilterParam        string   `yaml:"filter_param"` // query parameter name, default "color"
	FilterScope        string   `yaml:"filter_scope"` // ranked, catalog
	GraphAttributes    []string `yaml:"graph_attributes"`
	SynonymsPath       string   `yaml:"synonyms_path"` // empty = built-in lexicon
	ExpandQuery        *bool    `yaml:"expand_query"`
	DescriptionPreview int      `yaml:"description_preview"`
	Title              string   `yaml:"title"`
}

// ExpansionEnabled reports whether queries are widened with synonyms.
// Expansion is on unless explicitly disabled.
func (s SearchConfig) ExpansionEnabled() bool {
	return s.ExpandQuery == nil || *s.ExpandQuery
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8501
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if len(c.Catalog.AttributeColumns) == 0 {
		c.Catalog.AttributeColumns = []string{"dominant_color"}
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 256
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	if c.Search.TopK <= 0 {
		c.Search.TopK = 5
	}
	if c.Search.FilterAttribute == "" {
		c.Search.FilterAttribute = "dominant_color"
	}
	if c.Search.FilterParam == "" {
		c.Search.FilterParam = "color"
	}
	if c.Search.FilterScope == "" {
		c.Search.FilterScope = string(scope.Ranked)
	}
	if len(c.Search.GraphAttributes) == 0 {
		c.Search.GraphAttributes = []string{c.Search.FilterAttribute}
	}
	if c.Search.DescriptionPreview <= 0 {
		c.Search.DescriptionPreview = 100
	}
	if c.Search.Title == "" {
		c.Search.Title = "Product Semantic Search Engine"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Catalog.EmbeddingsPath == "" {
		return fmt.Errorf("catalog.embeddings_path is required")
	}

	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider \"openai\"")
		}
	case "local":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"local\", got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("embedding.requests_per_second must not be negative, got %g", c.Embedding.RequestsPerSecond)
	}

	switch c.Cache.Driver {
	case "none", "memory":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	case "badger":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for driver \"badger\"")
		}
	default:
		return fmt.Errorf(
			"cache.driver must be one of none, memory, redis, valkey, badger, got %q", c.Cache.Driver,
		)
	}
	if c.Cache.Size < 0 || c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.size and cache.ttl_sec must not be negative")
	}

	if c.Search.FilterParam == "q" {
		return fmt.Errorf("search.filter_param must not be \"q\"")
	}
	if !scope.Scope(c.Search.FilterScope).IsValid() {
		return fmt.Errorf("search.filter_scope must be \"ranked\" or \"catalog\", got %q", c.Search.FilterScope)
	}
	if !slices.Contains(c.Catalog.AttributeColumns, c.Search.FilterAttribute) {
		return fmt.Errorf(
			"search.filter_attribute %q is not listed in catalog.attribute_columns", c.Search.FilterAttribute,
		)
	}
	for _, k := range c.Search.GraphAttributes {
		if !slices.Contains(c.Catalog.AttributeColumns, k) {
			return fmt.Errorf("search.graph_attributes: %q is not listed in catalog.attribute_columns", k)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests and `go run` from subdirectories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
