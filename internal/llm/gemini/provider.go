package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/educhat-ai/educhat/internal/config"
	"github.com/educhat-ai/educhat/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type Provider struct {
	apiKey string
	model  string
}

func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// buildParts converts the final user turn into genai parts, decoding any
// attached data-URI images into inline blobs.
func buildParts(req llm.Request) ([]genai.Part, error) {
	text := ""
	if len(req.Messages) > 0 {
		text = req.Messages[len(req.Messages)-1].Content
	}
	if text == "" && len(req.Images) > 0 {
		text = llm.DefaultImagePrompt
	}

	parts := []genai.Part{genai.Text(text)}
	for _, uri := range req.Images {
		image, err := llm.ParseDataURI(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid image attachment: %w", err)
		}
		parts = append(parts, genai.Blob{
			MIMEType: image.MIMEType,
			Data:     image.Data,
		})
	}

	return parts, nil
}

// buildHistory maps prior turns onto genai chat history. Gemini names the
// assistant role "model".
func buildHistory(req llm.Request) []*genai.Content {
	if len(req.Messages) <= 1 {
		return nil
	}

	history := make([]*genai.Content, 0, len(req.Messages)-1)
	for _, m := range req.Messages[:len(req.Messages)-1] {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		if role != "user" && role != "model" {
			continue
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history
}

func (p *Provider) newSession(ctx context.Context, req llm.Request, model string) (*genai.Client, *genai.ChatSession, []genai.Part, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	generativeModel := client.GenerativeModel(model)
	if req.Temperature > 0 {
		temperature := float32(req.Temperature)
		generativeModel.Temperature = &temperature
	}
	if req.MaxTokens > 0 {
		maxTokens := int32(req.MaxTokens)
		generativeModel.MaxOutputTokens = &maxTokens
	}
	if req.System != "" {
		generativeModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	session := generativeModel.StartChat()
	session.History = buildHistory(req)

	parts, err := buildParts(req)
	if err != nil {
		client.Close()
		return nil, nil, nil, err
	}

	return client, session, parts, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}
	return output
}

func (p *Provider) Chat(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}
	if model == "" {
		model = p.DefaultModel()
	}

	client, session, parts, err := p.newSession(ctx, req, model)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	start := time.Now()
	resp, err := session.SendMessage(ctx, parts...)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	output := extractText(resp)
	if output == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Content:    output,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}

func (p *Provider) ChatStream(ctx context.Context, req llm.Request, model string, fn llm.StreamFunc) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}
	if model == "" {
		model = p.DefaultModel()
	}

	client, session, parts, err := p.newSession(ctx, req, model)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	start := time.Now()
	iter := session.SendMessageStream(ctx, parts...)

	var content string
	tokensUsed := 0
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gemini stream error: %w", err)
		}

		if resp.UsageMetadata != nil {
			tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
		}

		delta := extractText(resp)
		if delta == "" {
			continue
		}
		content += delta
		if err := fn(delta); err != nil {
			return nil, err
		}
	}

	return &llm.Response{
		Content:    content,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
