// internal/search/service.go
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"metasearch-engine/internal/common/config"
	stderrors "metasearch-engine/internal/common/errors"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/common/metrics"
	"metasearch-engine/internal/common/observability"
	"metasearch-engine/internal/engine/dedupe"
	"metasearch-engine/internal/engine/fusion"
	"metasearch-engine/internal/engine/normalizer"
	"metasearch-engine/internal/models"
	"metasearch-engine/internal/providers"
)

// Request is one metasearch run. Method and K override the configured
// defaults when set; zero values mean "use the default".
type Request struct {
	Query  string
	Method models.FusionMethod
	K      int
	Limit  int
}

// Stats summarizes what happened to the inputs of a run.
type Stats struct {
	ProvidersQueried int   `json:"providersQueried"`
	ProvidersFailed  int   `json:"providersFailed"`
	RecordsFetched   int   `json:"recordsFetched"`
	RecordsDropped   int64 `json:"recordsDropped"`
	DocumentsMerged  int   `json:"documentsMerged"`
}

type Response struct {
	QueryID string                `json:"queryId"`
	Query   string                `json:"query"`
	Method  models.FusionMethod   `json:"method"`
	Results []models.RankedResult `json:"results"`
	Stats   Stats                 `json:"stats"`
	TookMs  int64                 `json:"tookMs"`
}

// Service fans a query out to every registered provider, merges the result
// lists by canonical URL identity and ranks the merged documents.
type Service struct {
	providers []providers.Provider
	deduper   *dedupe.Deduper
	defaults  config.FusionConfig
	log       logger.Logger
	obs       *observability.Observability
}

func NewService(
	provs []providers.Provider,
	norm *normalizer.Normalizer,
	defaults config.FusionConfig,
	log logger.Logger,
	obs *observability.Observability,
) (*Service, error) {
	deduper, err := dedupe.New(norm)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		providers: provs,
		deduper:   deduper,
		defaults:  defaults,
		log:       log,
		obs:       obs,
	}, nil
}

func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	queryID := uuid.New().String()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, stderrors.NewEmptyQueryError()
	}

	params, err := s.fusionParams(req)
	if err != nil {
		return nil, err
	}
	engine, err := fusion.New(params, s.log)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(map[string]interface{}{
		"queryId": queryID,
		"method":  string(params.Method),
	})

	lists, failed := s.fetchAll(ctx, log, query)

	fetched := 0
	for _, l := range lists {
		fetched += len(l.Results)
	}

	docs, dropStats := s.deduper.Dedupe(lists)
	if dropStats.InvalidURLs > 0 {
		metrics.RecordsDropped.WithLabelValues("invalid_url").Add(float64(dropStats.InvalidURLs))
		log.Warn("Dropped records with invalid URLs", map[string]interface{}{
			"dropped": dropStats.InvalidURLs,
		})
	}

	results, err := engine.Fuse(docs)
	if err != nil {
		s.recordOutcome(ctx, start, "error")
		return nil, err
	}
	metrics.FusionRuns.WithLabelValues(string(params.Method)).Inc()
	metrics.FusionDocumentsMerged.Observe(float64(len(docs)))

	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}

	took := time.Since(start)
	s.recordOutcome(ctx, start, "success")
	log.Info("Search complete", map[string]interface{}{
		"providers": len(s.providers),
		"failed":    failed,
		"fetched":   fetched,
		"merged":    len(docs),
		"returned":  len(results),
		"tookMs":    took.Milliseconds(),
	})

	return &Response{
		QueryID: queryID,
		Query:   query,
		Method:  params.Method,
		Results: results,
		Stats: Stats{
			ProvidersQueried: len(s.providers),
			ProvidersFailed:  failed,
			RecordsFetched:   fetched,
			RecordsDropped:   int64(dropStats.InvalidURLs),
			DocumentsMerged:  len(docs),
		},
		TookMs: took.Milliseconds(),
	}, nil
}

// fetchAll queries every provider concurrently. A failing provider
// contributes an empty list and never aborts the run. The returned slice
// keeps registration order so downstream merging stays deterministic.
func (s *Service) fetchAll(ctx context.Context, log logger.Logger, query string) ([]models.SourceList, int) {
	lists := make([]models.SourceList, len(s.providers))

	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p providers.Provider) {
			defer wg.Done()

			fetchStart := time.Now()
			results, err := p.Search(ctx, query, s.defaults.MaxPerSource)
			metrics.ProviderRequestDuration.WithLabelValues(p.ID()).Observe(time.Since(fetchStart).Seconds())

			if err != nil {
				metrics.ProviderRequests.WithLabelValues(p.ID(), "error").Inc()
				log.WithError(err).Warn("Provider failed, continuing without it", map[string]interface{}{
					"provider": p.ID(),
				})
				lists[i] = models.SourceList{SourceID: p.ID()}

				mu.Lock()
				failed++
				mu.Unlock()
				return
			}

			metrics.ProviderRequests.WithLabelValues(p.ID(), "success").Inc()
			if s.defaults.MaxPerSource > 0 && len(results) > s.defaults.MaxPerSource {
				results = results[:s.defaults.MaxPerSource]
			}
			lists[i] = models.SourceList{SourceID: p.ID(), Results: results}
		}(i, p)
	}
	wg.Wait()

	return lists, failed
}

func (s *Service) fusionParams(req Request) (fusion.Params, error) {
	method := req.Method
	if method == "" {
		parsed, err := models.ParseMethod(s.defaults.Method)
		if err != nil {
			return fusion.Params{}, stderrors.NewUnknownFusionMethodError(s.defaults.Method)
		}
		method = parsed
	}

	k := req.K
	if k == 0 {
		k = s.defaults.RRFK
	}

	return fusion.Params{
		Method:     method,
		K:          k,
		MaxResults: s.defaults.MaxResults,
	}, nil
}

func (s *Service) recordOutcome(ctx context.Context, start time.Time, status string) {
	if s.obs == nil {
		return
	}
	s.obs.RecordQueryProcessed(ctx, status)
	s.obs.RecordQueryDuration(ctx, time.Since(start), status)
}
