package domain

import "time"

// SearchResult is a single snippet returned by the search collaborator.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// SourceSystemClock marks results answered from the local clock rather
// than a web lookup.
const SourceSystemClock = "System Clock"

// SearchRequest is the body of a search call.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

// SearchResponse is the search endpoint payload.
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	Query     string         `json:"query"`
	Timestamp time.Time      `json:"timestamp"`
}
