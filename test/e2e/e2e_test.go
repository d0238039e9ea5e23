// test/e2e/e2e_test.go
package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasearch-engine/internal/api"
	"metasearch-engine/internal/common/config"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/engine/normalizer"
	"metasearch-engine/internal/providers"
	"metasearch-engine/internal/providers/serpapi"
	"metasearch-engine/internal/search"
)

// serpapiStub serves a fixed organic_results payload in SerpApi's shape.
func serpapiStub(t *testing.T, links ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []map[string]interface{}
		for i, link := range links {
			items = append(items, map[string]interface{}{
				"position": i + 1,
				"title":    fmt.Sprintf("Result %d", i+1),
				"link":     link,
				"snippet":  "snippet",
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"organic_results": items})
	}))
}

func newAPIServer(t *testing.T, provs ...providers.Provider) *httptest.Server {
	t.Helper()

	svc, err := search.NewService(provs, normalizer.New(nil), config.FusionConfig{
		Method:       "rrf",
		RRFK:         60,
		MaxResults:   20,
		MaxPerSource: 10,
	}, logger.NewTestLogger(t), nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	api.NewHandler(svc, logger.NewTestLogger(t)).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newSerpapiProvider(t *testing.T, engine string, upstream *httptest.Server) providers.Provider {
	t.Helper()
	return serpapi.New(serpapi.Config{
		BaseURL: upstream.URL,
		APIKey:  "test",
		Engine:  engine,
		Timeout: 2 * time.Second,
	}, logger.NewTestLogger(t))
}

func getSearch(t *testing.T, srv *httptest.Server, query string) (*http.Response, search.Response) {
	t.Helper()
	resp, err := http.Get(srv.URL + query)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var body search.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestEndToEnd_MergeAndRank(t *testing.T) {
	// Both engines agree on /shared (modulo tracking params and case), and
	// each contributes one unique document.
	google := serpapiStub(t,
		"https://example.com/shared?utm_source=newsletter",
		"https://example.com/google-only",
	)
	defer google.Close()

	bing := serpapiStub(t,
		"https://EXAMPLE.com/shared/",
		"https://example.com/bing-only",
	)
	defer bing.Close()

	srv := newAPIServer(t,
		newSerpapiProvider(t, "google", google),
		newSerpapiProvider(t, "bing", bing),
	)

	resp, body := getSearch(t, srv, "/search?q=fusion")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, body.QueryID)
	assert.Equal(t, 2, body.Stats.ProvidersQueried)
	assert.Equal(t, 4, body.Stats.RecordsFetched)
	assert.Equal(t, 3, body.Stats.DocumentsMerged)

	require.Len(t, body.Results, 3)
	top := body.Results[0]
	assert.Equal(t, "https://example.com/shared", top.Document.Key)
	assert.Len(t, top.Document.Evidence, 2)
	assert.Equal(t, 1, top.FinalRank)

	// Display fields come from the first occurrence, tracking params intact.
	assert.Equal(t, "https://example.com/shared?utm_source=newsletter", top.Document.DisplayURL)
}

func TestEndToEnd_ProviderOutageDegradesGracefully(t *testing.T) {
	healthy := serpapiStub(t, "https://example.com/a")
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	srv := newAPIServer(t,
		newSerpapiProvider(t, "google", healthy),
		newSerpapiProvider(t, "bing", broken),
	)

	resp, body := getSearch(t, srv, "/search?q=resilience")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, body.Stats.ProvidersFailed)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "https://example.com/a", body.Results[0].Document.Key)
}

func TestEndToEnd_CombSUMMethodParam(t *testing.T) {
	upstream := serpapiStub(t, "https://example.com/a", "https://example.com/b")
	defer upstream.Close()

	srv := newAPIServer(t, newSerpapiProvider(t, "google", upstream))

	resp, body := getSearch(t, srv, "/search?q=x&method=combsum")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "combsum", string(body.Method))

	// Unscored web results use the 1/rank fallback.
	require.Len(t, body.Results, 2)
	assert.InDelta(t, 1.0, body.Results[0].FusionScore, 1e-9)
	assert.InDelta(t, 0.5, body.Results[1].FusionScore, 1e-9)
}

func TestEndToEnd_BadRequests(t *testing.T) {
	upstream := serpapiStub(t, "https://example.com/a")
	defer upstream.Close()

	srv := newAPIServer(t, newSerpapiProvider(t, "google", upstream))

	for _, q := range []string{"/search?q=", "/search?q=x&method=borda", "/search?q=x&k=0"} {
		resp, err := http.Get(srv.URL + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}
