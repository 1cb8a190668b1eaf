package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/config"
	"github.com/kailas-cloud/prodsearch/internal/db"
	dbBadger "github.com/kailas-cloud/prodsearch/internal/db/badger"
	dbMemory "github.com/kailas-cloud/prodsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/prodsearch/internal/db/redis"
	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/domain/graph"
	"github.com/kailas-cloud/prodsearch/internal/domain/search/scope"
	logpkg "github.com/kailas-cloud/prodsearch/internal/logger"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/prodsearch/internal/repository/catalog"
	"github.com/kailas-cloud/prodsearch/internal/repository/embcache"
	"github.com/kailas-cloud/prodsearch/internal/repository/lexicon"
	chiTransport "github.com/kailas-cloud/prodsearch/internal/transport/chi"
	localEmb "github.com/kailas-cloud/prodsearch/internal/transport/local"
	openaiEmb "github.com/kailas-cloud/prodsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/prodsearch/internal/usecase/embedding"
	"github.com/kailas-cloud/prodsearch/internal/usecase/expansion"
	healthuc "github.com/kailas-cloud/prodsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/prodsearch/internal/usecase/search"
	"github.com/kailas-cloud/prodsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodsearch server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	ctx := context.Background()

	store, err := openCache(ctx, &cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to open embedding cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	queryEmbedder := buildEmbedder(&cfg.Embedding, cfg.Embedding.QueryInstruction, store, logger)

	// Catalog and embeddings are loaded once and immutable afterwards.
	cat, err := catalogrepo.Load(catalogrepo.Config{
		Path:           cfg.Catalog.Path,
		EmbeddingsPath: cfg.Catalog.EmbeddingsPath,
		CSV: catalogrepo.CSVConfig{
			IDColumn:         cfg.Catalog.IDColumn,
			AttributeColumns: cfg.Catalog.AttributeColumns,
		},
	}, logger)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	if d := cfg.Embedding.Dimensions; d > 0 && d != cat.Dim() {
		logger.Fatal("Catalog embeddings do not match the configured model",
			zap.Int("catalog_dimensions", cat.Dim()),
			zap.Int("embedding_dimensions", d),
		)
	}

	kg := graph.New(cat, cfg.Search.GraphAttributes, cfg.Search.FilterAttribute)
	logger.Info("Knowledge graph built", zap.Int("nodes", kg.Len()), zap.Strings("edges", cfg.Search.GraphAttributes))

	// Pass a nil interface (not a typed nil pointer) to disable expansion.
	var lex expansion.Lexicon
	if cfg.Search.ExpansionEnabled() {
		l, err := lexicon.Load(cfg.Search.SynonymsPath)
		if err != nil {
			logger.Fatal("Failed to load synonyms", zap.Error(err))
		}
		logger.Info("Synonym lexicon loaded", zap.Int("entries", l.Len()))
		lex = l
	}

	searchSvc := searchuc.New(cat, kg, expansion.New(lex), queryEmbedder, searchuc.Options{
		TopK:            cfg.Search.TopK,
		FilterAttribute: cfg.Search.FilterAttribute,
		Scope:           scope.Scope(cfg.Search.FilterScope),
	})

	var pinger healthuc.CachePinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(cat, newEmbeddingHealthChecker(queryEmbedder), pinger)

	server := chiTransport.NewServer(searchSvc, healthSvc, chiTransport.Options{
		Title:       cfg.Search.Title,
		PreviewLen:  cfg.Search.DescriptionPreview,
		FilterParam: cfg.Search.FilterParam,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openCache opens the configured embedding cache. Driver "none" returns a nil store.
func openCache(ctx context.Context, cfg *config.CacheConfig, logger *zap.Logger) (db.Store, error) {
	ttl := time.Duration(cfg.TTLSec) * time.Second

	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case db.DriverNone:
		return nil, nil
	case db.DriverMemory:
		store, err = dbMemory.NewStore(dbMemory.Config{Size: cfg.Size, TTL: ttl})
	case db.DriverBadger:
		store, err = dbBadger.NewStore(dbBadger.Config{Path: cfg.Path, TTL: ttl, Logger: logger})
	case db.DriverRedis, db.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			TTL:      ttl,
		})
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s store not ready: %w", cfg.Driver, err)
	}
	logger.Info("Embedding cache ready", zap.String("driver", cfg.Driver))
	return store, nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg *config.EmbeddingConfig,
	instruction string,
	store db.KVStore,
	logger *zap.Logger,
) domain.Embedder {
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

	embedder := base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Namespace(cfg.Provider, model, cfg.Dimensions), cfg.Dimensions,
			metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, model, cfg.MaxBatchSize, logger)

	// Instruction prefix (outermost, so the cache key includes it)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx := logpkg.With(logpkg.ContextWithLogger(r.Context(), logger), zap.String("request_id", requestID))
			reqLogger := logpkg.FromContext(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.Query().Get("q")),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
