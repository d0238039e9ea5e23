// internal/providers/elasticsearch/elasticsearch_test.go
package elasticsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasearch-engine/internal/common/logger"
)

func newFakeCluster(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *es.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The v8 client rejects responses without the product header.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return srv, client
}

func TestSearch_MapsHitsWithScores(t *testing.T) {
	srv, client := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "documents")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {
				"hits": [
					{"_score": 4.2, "_source": {"url": "https://docs.example.com/a", "title": "Alpha", "snippet": "first"}},
					{"_score": 2.1, "_source": {"url": "https://docs.example.com/b", "title": "Beta", "snippet": "second"}}
				]
			}
		}`))
	})
	defer srv.Close()

	p, err := New(Config{Index: "documents", Timeout: 2 * time.Second}, client, logger.NewTestLogger(t))
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "alpha", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://docs.example.com/a", results[0].URL)
	assert.Equal(t, 1, results[0].Rank)
	require.NotNil(t, results[0].Score)
	assert.InDelta(t, 4.2, *results[0].Score, 1e-9)
	assert.Equal(t, "elasticsearch", results[0].SourceID)
	assert.Equal(t, 2, results[1].Rank)
}

func TestSearch_SkipsHitsWithoutURL(t *testing.T) {
	srv, client := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"hits": {
				"hits": [
					{"_score": 3.0, "_source": {"title": "no url"}},
					{"_score": 1.5, "_source": {"url": "https://docs.example.com/ok"}}
				]
			}
		}`))
	})
	defer srv.Close()

	p, err := New(Config{}, client, logger.NewTestLogger(t))
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "q", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://docs.example.com/ok", results[0].URL)
	assert.Equal(t, 1, results[0].Rank)
}

func TestSearch_ErrorStatus(t *testing.T) {
	srv, client := newFakeCluster(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "index_not_found_exception"}`, http.StatusNotFound)
	})
	defer srv.Close()

	p, err := New(Config{Index: "missing"}, client, logger.NewTestLogger(t))
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "q", 10)
	assert.Error(t, err)
}

func TestNew_NilClient(t *testing.T) {
	_, err := New(Config{}, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}
