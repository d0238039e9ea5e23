// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "metasearch-engine/internal/common/errors"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/models"
	"metasearch-engine/internal/search"
)

type stubService struct {
	lastReq search.Request
	resp    *search.Response
	err     error
}

func (s *stubService) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestMux(t *testing.T, svc SearchService) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(svc, logger.NewTestLogger(t)).Register(mux)
	return mux
}

func TestHandleSearch_Success(t *testing.T) {
	svc := &stubService{resp: &search.Response{
		QueryID: "qid-1",
		Query:   "golang",
		Method:  models.MethodRRF,
		Results: []models.RankedResult{},
	}}
	mux := newTestMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=golang&method=rrf&k=60&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, "golang", svc.lastReq.Query)
	assert.Equal(t, models.MethodRRF, svc.lastReq.Method)
	assert.Equal(t, 60, svc.lastReq.K)
	assert.Equal(t, 5, svc.lastReq.Limit)

	var body search.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "qid-1", body.QueryID)
}

func TestHandleSearch_UnknownMethod(t *testing.T) {
	mux := newTestMux(t, &stubService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x&method=borda", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body stderrors.StandardError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, stderrors.ErrCodeUnknownFusionMethod, body.Code)
}

func TestHandleSearch_BadNumericParams(t *testing.T) {
	mux := newTestMux(t, &stubService{})

	for _, target := range []string{"/search?q=x&k=sixty", "/search?q=x&limit=-2"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHandleSearch_ServiceErrorsMapped(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty query", stderrors.NewEmptyQueryError(), http.StatusBadRequest},
		{"invalid k", stderrors.NewInvalidFusionParameterError("k", -1), http.StatusBadRequest},
		{"es down", stderrors.NewElasticsearchConnectionFailedError(nil), http.StatusBadGateway},
		{"query failed", stderrors.NewQueryExecutionFailedError("postgres", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t, &stubService{err: tt.err})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandleSearch_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(t, &stubService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search?q=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealthz(t *testing.T) {
	mux := newTestMux(t, &stubService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
