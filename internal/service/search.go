package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/rs/zerolog/log"
)

const maxSearchResults = 5

var clockQueryPattern = regexp.MustCompile(`(?i)\b(current|today'?s?|now|what)\b.*\b(date|time|day)\b|\bwhat (day|date|time) is it\b`)

// ResultCache caches search results between identical queries.
type ResultCache interface {
	Get(ctx context.Context, query string) ([]domain.SearchResult, error)
	Set(ctx context.Context, query string, results []domain.SearchResult) error
}

// SearchService answers date/time questions from the system clock and
// everything else through the DuckDuckGo Instant Answer API.
type SearchService struct {
	client  *http.Client
	cache   ResultCache
	baseURL string
	now     func() time.Time
}

// NewSearchService creates a new search service. cache may be nil.
func NewSearchService(cache ResultCache, timeout time.Duration) *SearchService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SearchService{
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		baseURL: "https://api.duckduckgo.com",
		now:     time.Now,
	}
}

// Search returns snippets for a query.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if clockQueryPattern.MatchString(query) {
		return s.clockResult(), nil
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, query); err == nil && cached != nil {
			return cached, nil
		}
	}

	results, err := s.instantAnswer(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(results) > 0 {
		if err := s.cache.Set(ctx, query, results); err != nil {
			log.Warn().Err(err).Msg("failed to cache search results")
		}
	}

	return results, nil
}

// clockResult answers date/time questions locally.
func (s *SearchService) clockResult() []domain.SearchResult {
	now := s.now()
	return []domain.SearchResult{{
		Title:   "Current Date & Time",
		Snippet: fmt.Sprintf("Today is %s. The current time is %s.", now.Format("Monday, January 2, 2006"), now.Format("3:04 PM MST")),
		Source:  domain.SourceSystemClock,
	}}
}

type instantAnswerResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	AbstractSrc   string `json:"AbstractSource"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (s *SearchService) instantAnswer(ctx context.Context, query string) ([]domain.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var answer instantAnswerResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var results []domain.SearchResult
	if answer.AbstractText != "" {
		title := answer.Heading
		if title == "" {
			title = query
		}
		source := answer.AbstractSrc
		if source == "" {
			source = "DuckDuckGo"
		}
		results = append(results, domain.SearchResult{
			Title:   title,
			Snippet: answer.AbstractText,
			URL:     answer.AbstractURL,
			Source:  source,
		})
	}

	for _, topic := range answer.RelatedTopics {
		if len(results) >= maxSearchResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			Title:   topicTitle(topic.Text),
			Snippet: topic.Text,
			URL:     topic.FirstURL,
			Source:  "DuckDuckGo",
		})
	}

	return results, nil
}

// topicTitle trims a related-topic text down to a short title.
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	if len(text) > 60 {
		return text[:57] + "..."
	}
	return text
}
