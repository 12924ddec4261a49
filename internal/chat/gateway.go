package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/educhat-ai/educhat/internal/domain"
)

// GatewayError is a non-success gateway reply, carrying the HTTP status
// and the server's error text for classification.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Message)
}

// Completion is the outcome of a gateway chat call. Streamed responses
// deliver their content through the chunk callback and leave Content
// empty; JSON responses carry it directly.
type Completion struct {
	Streamed bool
	Content  string
	Finished bool
}

// Gateway is the request/response boundary the orchestrator talks to.
type Gateway interface {
	Chat(ctx context.Context, req domain.ChatRequest, onChunk func(chunk []byte)) (*Completion, error)
}

// Client is the HTTP gateway client.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

// Chat posts a conversation and resolves the response shape after the
// fact: a text/plain content type means a streamed line-tagged body read
// incrementally through onChunk; anything else is decoded as a JSON
// completion. An error means no completion was produced.
func (c *Client) Chat(ctx context.Context, req domain.ChatRequest, onChunk func(chunk []byte)) (*Completion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		// A malformed error payload still classifies by status alone.
		json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, &GatewayError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/plain") {
		buf := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				onChunk(buf[:n])
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("stream read failed: %w", err)
			}
		}
		return &Completion{Streamed: true, Finished: true}, nil
	}

	var completion struct {
		Content  string `json:"content"`
		Finished bool   `json:"finished"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if completion.Error != "" {
		return nil, &GatewayError{Status: resp.StatusCode, Message: completion.Error}
	}

	return &Completion{Content: completion.Content, Finished: completion.Finished}, nil
}
