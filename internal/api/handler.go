// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	stderrors "metasearch-engine/internal/common/errors"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/models"
	"metasearch-engine/internal/search"
)

// SearchService is the piece of the orchestrator the API needs.
type SearchService interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

type Handler struct {
	service SearchService
	errors  *stderrors.ErrorHandler
	log     logger.Logger
}

func NewHandler(service SearchService, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{
		service: service,
		errors:  stderrors.NewErrorHandler(log),
		log:     log,
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/search", h.handleSearch)
	mux.HandleFunc("/healthz", h.handleHealthz)
}

// handleSearch serves GET /search?q=...&method=rrf|combsum&k=60&limit=20.
// Only q is required; the rest fall back to configured defaults.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseSearchRequest(r)
	if err != nil {
		h.errors.HandleRequestError(w, err)
		return
	}

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.errors.HandleRequestError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.WithError(err).Error("Failed to encode search response", map[string]interface{}{
			"queryId": resp.QueryID,
		})
	}
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func parseSearchRequest(r *http.Request) (search.Request, error) {
	q := r.URL.Query()

	req := search.Request{Query: q.Get("q")}

	if raw := q.Get("method"); raw != "" {
		method, err := models.ParseMethod(raw)
		if err != nil {
			return search.Request{}, stderrors.NewUnknownFusionMethodError(raw)
		}
		req.Method = method
	}

	if raw := q.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k <= 0 {
			return search.Request{}, stderrors.NewInvalidFusionParameterError("k", raw)
		}
		req.K = k
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return search.Request{}, stderrors.NewInvalidFusionParameterError("limit", raw)
		}
		req.Limit = limit
	}

	return req, nil
}
