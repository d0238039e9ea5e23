// internal/providers/postgres/postgres.go
package postgres

import (
	"context"
	"time"

	"metasearch-engine/internal/common/database"
	stderrors "metasearch-engine/internal/common/errors"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/models"
)

const searchQuery = `
SELECT url, title, snippet,
       ts_rank(search_vector, plainto_tsquery('english', $1)) AS relevance
FROM documents
WHERE search_vector @@ plainto_tsquery('english', $1)
ORDER BY relevance DESC, url ASC
LIMIT $2`

type Config struct {
	Timeout time.Duration
}

// Provider runs full-text search against the internal Postgres document
// store. ts_rank relevance is carried through as the per-source score.
type Provider struct {
	cfg    Config
	client *database.PostgresClient
	log    logger.Logger
}

func New(cfg Config, client *database.PostgresClient, log logger.Logger) (*Provider, error) {
	if client == nil {
		return nil, stderrors.NewDatabaseConnectionFailedError(nil)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Provider{cfg: cfg, client: client, log: log}, nil
}

func (p *Provider) ID() string {
	return "postgres"
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

	rows, err := p.client.Query(ctx, searchQuery, query, limit)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewProviderTimeoutError(p.ID())
		}
		return nil, stderrors.NewQueryExecutionFailedError(p.ID(), err)
	}
	defer rows.Close()

	var results []models.SourceResult
	for rows.Next() {
		var (
			url, title, snippet string
			relevance           float64
		)
		if err := rows.Scan(&url, &title, &snippet, &relevance); err != nil {
			return nil, stderrors.NewProviderResponseInvalidError(p.ID(), err)
		}
		score := relevance
		results = append(results, models.SourceResult{
			URL:      url,
			Title:    title,
			Snippet:  snippet,
			SourceID: p.ID(),
			Rank:     len(results) + 1,
			Score:    &score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError(p.ID(), err)
	}

	p.log.Debug("Full-text query complete", map[string]interface{}{
		"results": len(results),
	})
	return results, nil
}
