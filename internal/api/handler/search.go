package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/educhat-ai/educhat/internal/api/response"
	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/service"
)

// SearchHandler exposes the web search endpoint
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Raw(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validate.Struct(req); err != nil {
		response.Raw(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	results, err := h.searchService.Search(r.Context(), req.Query)
	if err != nil {
		response.Raw(w, http.StatusInternalServerError, map[string]string{"error": "Search service unavailable"})
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	response.Raw(w, http.StatusOK, domain.SearchResponse{
		Results:   results,
		Query:     req.Query,
		Timestamp: time.Now(),
	})
}
