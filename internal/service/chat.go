package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/llm"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7

	// visionApology is returned as a successful completion when every
	// vision model fails, keeping the conversation usable instead of
	// surfacing a hard error.
	visionApology = "I see you've uploaded an image! Unfortunately, I don't currently have access to image analysis capabilities. However, I'd be happy to help you with any questions you have about the image. Please describe what you see in the image, and I can help explain concepts, answer questions, or provide educational insights based on your description. What would you like to know about the image?"
)

// ErrNoProvider indicates that no upstream credential is configured.
var ErrNoProvider = errors.New("no configured LLM provider")

// VisionTarget is one (provider, model) pair in the vision fallback chain.
type VisionTarget struct {
	Provider string
	Model    string
}

// Searcher is the web search collaborator consulted before text requests
// when the caller asks for it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// ChatService brokers chat requests to upstream LLM providers: web-search
// snippet injection, the vision fallback chain for image requests, and
// streamed text completions.
type ChatService struct {
	llmRouter   *llm.Router
	searcher    Searcher
	visionChain []VisionTarget
}

// NewChatService creates a new chat service. searcher may be nil when web
// search is disabled.
func NewChatService(llmRouter *llm.Router, searcher Searcher, visionChain []VisionTarget) *ChatService {
	return &ChatService{
		llmRouter:   llmRouter,
		searcher:    searcher,
		visionChain: visionChain,
	}
}

// Ready reports whether at least one provider is usable.
func (s *ChatService) Ready() bool {
	return s.llmRouter.HasConfiguredProvider()
}

// buildRequest assembles the upstream request: search snippets folded into
// the system prompt, history mapped to role/content pairs.
func (s *ChatService) buildRequest(ctx context.Context, req domain.ChatRequest, system string) llm.Request {
	var results []domain.SearchResult
	if req.UseWebSearch && s.searcher != nil {
		last := req.LastMessage()
		if last.Content != "" {
			found, err := s.searcher.Search(ctx, last.Content)
			if err != nil {
				// Search failures never block the chat itself.
				log.Warn().Err(err).Msg("web search failed, continuing without snippets")
			} else {
				results = found
			}
		}
	}

	return llm.Request{
		System:      llm.BuildSystemPrompt(system, results),
		Messages:    llm.HistoryFromMessages(req.Messages),
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
}

// CompleteVision runs the vision fallback chain for an image-bearing
// request and always produces a completion: the first model that answers
// wins, and if every model fails the apology fallback is returned.
func (s *ChatService) CompleteVision(ctx context.Context, req domain.ChatRequest) (*domain.ChatCompletion, error) {
	last := req.LastMessage()
	if !last.HasImages() {
		return nil, fmt.Errorf("vision completion requested without images")
	}

	llmReq := s.buildRequest(ctx, req, llm.VisionSystemPrompt)
	llmReq.Images = last.Images

	for _, target := range s.visionChain {
		provider, err := s.llmRouter.GetProvider(target.Provider)
		if err != nil {
			continue
		}

		log.Debug().Str("provider", target.Provider).Str("model", target.Model).Msg("attempting vision model")
		resp, err := provider.Chat(ctx, llmReq, target.Model)
		if err != nil {
			log.Warn().Err(err).Str("model", target.Model).Msg("vision model failed, trying next")
			continue
		}
		if resp.Content == "" {
			continue
		}

		log.Info().Str("model", target.Model).Int64("latency_ms", resp.LatencyMs).Msg("vision completion succeeded")
		return &domain.ChatCompletion{Content: resp.Content, Finished: true}, nil
	}

	log.Error().Int("models_tried", len(s.visionChain)).Msg("all vision models failed")
	return &domain.ChatCompletion{Content: visionApology, Finished: true}, nil
}

// StreamText streams a text completion, delivering deltas through fn.
func (s *ChatService) StreamText(ctx context.Context, req domain.ChatRequest, fn llm.StreamFunc) error {
	provider, err := s.llmRouter.GetProvider("")
	if err != nil {
		return ErrNoProvider
	}

	llmReq := s.buildRequest(ctx, req, llm.TextSystemPrompt)

	resp, err := provider.ChatStream(ctx, llmReq, "", fn)
	if err != nil {
		return err
	}

	log.Info().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("text completion finished")
	return nil
}

// ClassifyError maps an upstream failure onto the gateway's HTTP error
// contract: status code plus user-facing message.
func ClassifyError(err error) (int, string) {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized || strings.Contains(apiErr.Message, "API key"):
			return http.StatusUnauthorized, "Invalid Groq API key. Please check your configuration."
		case apiErr.Status == http.StatusTooManyRequests ||
			strings.Contains(apiErr.Message, "quota") ||
			strings.Contains(apiErr.Message, "rate limit"):
			return http.StatusTooManyRequests, "Rate limit reached. Please try again in a moment."
		case apiErr.Status == http.StatusBadRequest || strings.Contains(apiErr.Message, "model"):
			return http.StatusBadRequest, "Model not available. Please try again."
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "API key"):
		return http.StatusUnauthorized, "Invalid Groq API key. Please check your configuration."
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit"):
		return http.StatusTooManyRequests, "Rate limit reached. Please try again in a moment."
	case strings.Contains(msg, "model"):
		return http.StatusBadRequest, "Model not available. Please try again."
	}

	return http.StatusInternalServerError, "Failed to process request. Please try again."
}
