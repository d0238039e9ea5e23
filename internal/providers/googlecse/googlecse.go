// internal/providers/googlecse/googlecse.go
package googlecse

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	stderrors "metasearch-engine/internal/common/errors"
	httpclient "metasearch-engine/internal/common/http"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/models"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

	// API constraints: at most 10 items per page, start index capped at 100.
	pageSize = 10
	maxStart = 100
)

type Config struct {
	BaseURL  string
	APIKey   string
	EngineID string
	Timeout  time.Duration
}

type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    logger.Logger
}

type searchResponse struct {
	Items []item `json:"items"`
}

type item struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

func New(cfg Config, log logger.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
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
	return "google-cse"
}

// Search pages through the Custom Search API until limit results are
// collected, the API stops returning items, or the start index cap is hit.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]models.SourceResult, error) {
	if limit <= 0 {
		limit = pageSize
	}

	var results []models.SourceResult
	for start := 1; start <= maxStart && len(results) < limit; start += pageSize {
		num := limit - len(results)
		if num > pageSize {
			num = pageSize
		}

		page, err := p.fetchPage(ctx, query, start, num)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, it := range page {
			if it.Link == "" {
				continue
			}
			results = append(results, models.SourceResult{
				URL:      it.Link,
				Title:    it.Title,
				Snippet:  it.Snippet,
				SourceID: p.ID(),
				Rank:     len(results) + 1,
			})
			if len(results) >= limit {
				break
			}
		}
	}

	p.log.Debug("Custom Search fetch complete", map[string]interface{}{
		"provider": p.ID(),
		"query":    query,
		"results":  len(results),
	})
	return results, nil
}

func (p *Provider) fetchPage(ctx context.Context, query string, start, num int) ([]item, error) {
	params := url.Values{}
	params.Set("key", p.cfg.APIKey)
	params.Set("cx", p.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("start", strconv.Itoa(start))

	var resp searchResponse
	if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"?"+params.Encode(), &resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, stderrors.NewProviderTimeoutError(p.ID())
		}
		return nil, stderrors.NewProviderRequestFailedError(p.ID(), err)
	}
	return resp.Items, nil
}
