// internal/providers/serpapi/serpapi.go
package serpapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	stderrors "metasearch-engine/internal/common/errors"
	httpclient "metasearch-engine/internal/common/http"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/models"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// Config describes one SerpApi-backed source. Engine selects the upstream
// engine SerpApi proxies ("google", "bing", "duckduckgo", ...), and a
// separate provider instance is registered per engine.
type Config struct {
	BaseURL string
	APIKey  string
	Engine  string
	Timeout time.Duration
}

type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    logger.Logger
}

// Engines differ in the container key they use for the result list, so
// all three known variants are decoded and the first non-empty one wins.
type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	Results        []organicResult `json:"results"`
	Items          []organicResult `json:"items"`
}

func (r *searchResponse) records() []organicResult {
	switch {
	case len(r.OrganicResults) > 0:
		return r.OrganicResults
	case len(r.Results) > 0:
		return r.Results
	default:
		return r.Items
	}
}

type organicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

func New(cfg Config, log logger.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Engine == "" {
		cfg.Engine = "google"
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Provider{
		cfg:    cfg,
		client: httpclient.NewClient(cfg.Timeout),
		log:    log,
	}
}

func (p *Provider) ID() string {
	return "serpapi-" + p.cfg.Engine
}

func (p *Provider) Search(ctx context.Context, query string, limit int) ([]models.SourceResult, error) {
	params := url.Values{}
	params.Set("engine", p.cfg.Engine)
	params.Set("q", query)
	params.Set("api_key", p.cfg.APIKey)
	if limit > 0 {
		params.Set("num", strconv.Itoa(limit))
	}

	var resp searchResponse
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"?"+params.Encode(), &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, stderrors.NewProviderTimeoutError(p.ID())
		}
		return nil, stderrors.NewProviderRequestFailedError(p.ID(), err)
	}

	records := resp.records()
	results := make([]models.SourceResult, 0, len(records))
	for _, item := range records {
		if item.Link == "" {
			p.log.Warn("Skipping organic result without link", map[string]interface{}{
				"provider": p.ID(),
				"position": item.Position,
			})
			continue
		}
		results = append(results, models.SourceResult{
			URL:      item.Link,
			Title:    item.Title,
			Snippet:  item.Snippet,
			SourceID: p.ID(),
			Rank:     len(results) + 1,
		})
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	p.log.Debug(fmt.Sprintf("SerpApi returned %d results", len(results)), map[string]interface{}{
		"provider": p.ID(),
		"query":    query,
	})
	return results, nil
}
