// cmd/metasearch-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"metasearch-engine/internal/api"
	"metasearch-engine/internal/common/config"
	"metasearch-engine/internal/common/database"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/common/observability"
	"metasearch-engine/internal/engine/normalizer"
	"metasearch-engine/internal/providers"
	"metasearch-engine/internal/providers/elasticsearch"
	"metasearch-engine/internal/providers/googlecse"
	"metasearch-engine/internal/providers/postgres"
	"metasearch-engine/internal/providers/serpapi"
	"metasearch-engine/internal/search"
	"metasearch-engine/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting metasearch server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Re-init logging with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("provider registry load failed", zap.Error(err))
	}

	provs, closers, err := buildProviders(ctx, cfg, reg, zapLog, log)
	if err != nil {
		zapLog.Fatal("provider setup failed", zap.Error(err))
	}
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()
	if len(provs) == 0 {
		zapLog.Fatal("no providers enabled in registry")
	}

	norm := normalizer.New(&normalizer.Config{
		StripParams:   cfg.Normalizer.StripParams,
		StripPrefixes: cfg.Normalizer.StripParamPrefixes,
	})

	svc, err := search.NewService(provs, norm, cfg.Fusion, log, obs)
	if err != nil {
		zapLog.Fatal("search service setup failed", zap.Error(err))
	}

	mux := http.NewServeMux()
	api.NewHandler(svc, log).Register(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		zapLog.Info("API server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Metrics & pprof Server ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort)
		zapLog.Info("Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	zapLog.Info("Metasearch server stopped gracefully")
}

// buildProviders constructs one provider per enabled registry entry. The
// internal-index backends are connected lazily here, with retry, so a flaky
// database delays startup instead of killing it.
func buildProviders(
	ctx context.Context,
	cfg *config.Config,
	reg *registry.ProviderRegistry,
	zapLog *zap.Logger,
	log logger.Logger,
) ([]providers.Provider, []func() error, error) {
	var (
		provs   []providers.Provider
		closers []func() error
	)

	for _, spec := range reg.Enabled() {
		timeout := providerTimeout(cfg, spec.ID)

		switch spec.Type {
		case "serpapi":
			provs = append(provs, serpapi.New(serpapi.Config{
				BaseURL: cfg.APIs.SerpAPI.BaseURL,
				APIKey:  cfg.APIs.SerpAPI.APIKey,
				Engine:  spec.Engine,
				Timeout: timeout,
			}, log))

		case "google_cse":
			provs = append(provs, googlecse.New(googlecse.Config{
				BaseURL:  cfg.APIs.GoogleCSE.BaseURL,
				APIKey:   cfg.APIs.GoogleCSE.APIKey,
				EngineID: cfg.APIs.GoogleCSE.EngineID,
				Timeout:  timeout,
			}, log))

		case "elasticsearch":
			var esClient *database.ElasticsearchClient
			err := retryWithBackoff(func() error {
				var err error
				esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
				if err != nil {
					return err
				}
				return esClient.Ping()
			}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
			if err != nil {
				return nil, closers, err
			}
			zapLog.Info("Elasticsearch connected successfully")

			p, err := elasticsearch.New(elasticsearch.Config{
				Index:   cfg.Database.Elasticsearch.Index,
				Timeout: timeout,
			}, esClient.Client, log)
			if err != nil {
				return nil, closers, err
			}
			provs = append(provs, p)

		case "postgres":
			var pg *database.PostgresClient
			err := retryWithBackoff(func() error {
				var err error
				pg, err = database.NewPostgres(cfg.Database.Postgres)
				if err != nil {
					return err
				}
				return pg.Ping(ctx)
			}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
			if err != nil {
				return nil, closers, err
			}
			closers = append(closers, pg.Close)
			zapLog.Info("PostgreSQL connected successfully")

			p, err := postgres.New(postgres.Config{Timeout: timeout}, pg, log)
			if err != nil {
				return nil, closers, err
			}
			provs = append(provs, p)

		default:
			return nil, closers, fmt.Errorf("unknown provider type %q in registry", spec.Type)
		}

		zapLog.Info("provider registered",
			zap.String("id", spec.ID),
			zap.String("type", spec.Type),
		)
	}

	return provs, closers, nil
}

func providerTimeout(cfg *config.Config, providerID string) time.Duration {
	if pc, ok := cfg.Providers[providerID]; ok && pc.Timeout > 0 {
		return time.Duration(pc.Timeout) * time.Millisecond
	}
	return 5 * time.Second
}
