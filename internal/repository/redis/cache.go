package redis

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/educhat-ai/educhat/internal/domain"
)

const searchCachePrefix = "search:"

// SearchCache stores web search results in Redis, keyed by a hash of the
// normalized query, so repeated questions within the TTL skip the upstream
// search call.
type SearchCache struct {
	client *Client
	ttl    time.Duration
}

// NewSearchCache creates a new search result cache
func NewSearchCache(client *Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SearchCache{client: client, ttl: ttl}
}

func cacheKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%x", searchCachePrefix, sum[:16])
}

// Get retrieves cached results for a query; a miss returns (nil, nil).
func (c *SearchCache) Get(ctx context.Context, query string) ([]domain.SearchResult, error) {
	data, err := c.client.rdb.Get(ctx, cacheKey(query)).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var results []domain.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached results: %w", err)
	}

	return results, nil
}

// Set caches results for a query
func (c *SearchCache) Set(ctx context.Context, query string, results []domain.SearchResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	return c.client.rdb.Set(ctx, cacheKey(query), data, c.ttl).Err()
}
