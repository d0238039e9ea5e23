// internal/providers/elasticsearch/elasticsearch.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	stderrors "metasearch-engine/internal/common/errors"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/models"
)

type Config struct {
	Index   string
	Timeout time.Duration
}

// Provider searches an internal Elasticsearch index and surfaces the raw
// _score as per-source relevance, which CombSUM normalizes per source.
type Provider struct {
	cfg    Config
	client *elasticsearch.Client
	log    logger.Logger
}

type searchResponse struct {
	Hits struct {
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

type hit struct {
	Score  *float64 `json:"_score"`
	Source struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"_source"`
}

func New(cfg Config, client *elasticsearch.Client, log logger.Logger) (*Provider, error) {
	if client == nil {
		return nil, stderrors.NewElasticsearchConnectionFailedError(nil)
	}
	if cfg.Index == "" {
		cfg.Index = "documents"
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Provider{cfg: cfg, client: client, log: log}, nil
}

func (p *Provider) ID() string {
	return "elasticsearch"
}

func (p *Provider) Search(ctx context.Context, query string, limit int) ([]models.SourceResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(buildSearchBody(query))
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError(p.ID(), err)
	}

	req := esapi.SearchRequest{
		Index: []string{p.cfg.Index},
		Body:  strings.NewReader(string(body)),
		Size:  &limit,
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewProviderTimeoutError(p.ID())
		}
		return nil, stderrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, stderrors.NewQueryExecutionFailedError(p.ID(), fmt.Errorf("search returned %s", res.Status()))
	}

	var resp searchResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, stderrors.NewProviderResponseInvalidError(p.ID(), err)
	}

	results := make([]models.SourceResult, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		if h.Source.URL == "" {
			continue
		}
		results = append(results, models.SourceResult{
			URL:      h.Source.URL,
			Title:    h.Source.Title,
			Snippet:  h.Source.Snippet,
			SourceID: p.ID(),
			Rank:     len(results) + 1,
			Score:    h.Score,
		})
	}

	p.log.Debug("Elasticsearch query complete", map[string]interface{}{
		"index":   p.cfg.Index,
		"results": len(results),
	})
	return results, nil
}

func buildSearchBody(query string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "snippet^2", "content"},
				"type":   "best_fields",
			},
		},
	}
}
