// internal/search/service_test.go
package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasearch-engine/internal/common/config"
	stderrors "metasearch-engine/internal/common/errors"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/engine/normalizer"
	"metasearch-engine/internal/models"
	"metasearch-engine/internal/providers"
)

type stubProvider struct {
	id      string
	results []models.SourceResult
	err     error
}

func (s *stubProvider) ID() string { return s.id }

func (s *stubProvider) Search(ctx context.Context, query string, limit int) ([]models.SourceResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func result(id, url string, rank int) models.SourceResult {
	return models.SourceResult{
		URL:      url,
		Title:    "t",
		Snippet:  "s",
		SourceID: id,
		Rank:     rank,
	}
}

func defaultFusion() config.FusionConfig {
	return config.FusionConfig{
		Method:       "rrf",
		RRFK:         60,
		MaxResults:   20,
		MaxPerSource: 10,
	}
}

func newService(t *testing.T, provs ...providers.Provider) *Service {
	t.Helper()
	svc, err := NewService(provs, normalizer.New(nil), defaultFusion(), logger.NewTestLogger(t), nil)
	require.NoError(t, err)
	return svc
}

func TestSearch_MergesAcrossProviders(t *testing.T) {
	svc := newService(t,
		&stubProvider{id: "p1", results: []models.SourceResult{
			result("p1", "https://example.com/shared?utm_source=x", 1),
			result("p1", "https://example.com/only-p1", 2),
		}},
		&stubProvider{id: "p2", results: []models.SourceResult{
			result("p2", "https://EXAMPLE.com/shared/", 1),
		}},
	)

	resp, err := svc.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.QueryID)
	assert.Equal(t, models.MethodRRF, resp.Method)
	assert.Equal(t, 2, resp.Stats.ProvidersQueried)
	assert.Equal(t, 0, resp.Stats.ProvidersFailed)
	assert.Equal(t, 3, resp.Stats.RecordsFetched)
	assert.Equal(t, 2, resp.Stats.DocumentsMerged)

	// The document seen by both providers outranks the single-source one.
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://example.com/shared", resp.Results[0].Document.Key)
	assert.Len(t, resp.Results[0].Document.Evidence, 2)
	assert.Equal(t, 1, resp.Results[0].FinalRank)
}

func TestSearch_ProviderFailureDoesNotAbortRun(t *testing.T) {
	svc := newService(t,
		&stubProvider{id: "good", results: []models.SourceResult{
			result("good", "https://example.com/a", 1),
		}},
		&stubProvider{id: "bad", err: errors.New("upstream down")},
	)

	resp, err := svc.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Stats.ProvidersFailed)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://example.com/a", resp.Results[0].Document.Key)
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	svc := newService(t, &stubProvider{id: "p1"})

	_, err := svc.Search(context.Background(), Request{Query: "   "})
	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeEmptyQuery, stdErr.Code)
}

func TestSearch_InvalidRecordsDroppedAndCounted(t *testing.T) {
	svc := newService(t,
		&stubProvider{id: "p1", results: []models.SourceResult{
			result("p1", "https://example.com/ok", 1),
			result("p1", "not a url", 2),
			result("p1", "", 3),
		}},
	)

	resp, err := svc.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Stats.RecordsDropped)
	assert.Len(t, resp.Results, 1)
}

func TestSearch_MethodAndKOverrides(t *testing.T) {
	svc := newService(t,
		&stubProvider{id: "p1", results: []models.SourceResult{
			result("p1", "https://example.com/a", 1),
		}},
	)

	resp, err := svc.Search(context.Background(), Request{Query: "q", Method: models.MethodCombSUM})
	require.NoError(t, err)
	assert.Equal(t, models.MethodCombSUM, resp.Method)
	// Unscored single result at rank 1 falls back to 1/rank.
	assert.InDelta(t, 1.0, resp.Results[0].FusionScore, 1e-12)

	_, err = svc.Search(context.Background(), Request{Query: "q", Method: models.MethodRRF, K: -1})
	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeInvalidFusionParameter, stdErr.Code)
}

func TestSearch_LimitCapsResults(t *testing.T) {
	svc := newService(t,
		&stubProvider{id: "p1", results: []models.SourceResult{
			result("p1", "https://example.com/a", 1),
			result("p1", "https://example.com/b", 2),
			result("p1", "https://example.com/c", 3),
		}},
	)

	resp, err := svc.Search(context.Background(), Request{Query: "q", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestSearch_DeterministicAcrossRuns(t *testing.T) {
	provs := []providers.Provider{
		&stubProvider{id: "p1", results: []models.SourceResult{
			result("p1", "https://example.com/a", 1),
			result("p1", "https://example.com/b", 2),
		}},
		&stubProvider{id: "p2", results: []models.SourceResult{
			result("p2", "https://example.com/b", 1),
			result("p2", "https://example.com/a", 2),
		}},
	}
	svc := newService(t, provs...)

	first, err := svc.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Document.Key, second.Results[i].Document.Key)
		assert.Equal(t, first.Results[i].FusionScore, second.Results[i].FusionScore)
	}
}
