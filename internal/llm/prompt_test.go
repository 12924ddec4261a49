package llm_test

import (
	"strings"
	"testing"

	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/llm"
)

func TestBuildSystemPrompt_NoResults(t *testing.T) {
	prompt := llm.BuildSystemPrompt(llm.TextSystemPrompt, nil)

	if prompt != llm.TextSystemPrompt {
		t.Error("prompt without results should be the base prompt unchanged")
	}
}

func TestBuildSystemPrompt_WebResults(t *testing.T) {
	results := []domain.SearchResult{
		{Title: "Photosynthesis", Snippet: "Plants convert light into energy.", URL: "https://example.com/p", Source: "Wikipedia"},
		{Title: "Chlorophyll", Snippet: "The green pigment.", URL: "https://example.com/c", Source: "DuckDuckGo"},
	}

	prompt := llm.BuildSystemPrompt(llm.TextSystemPrompt, results)

	mustContain := []string{
		"CURRENT WEB SEARCH RESULTS",
		"1. Photosynthesis",
		"Plants convert light into energy.",
		"2. Chlorophyll",
		"Source: Wikipedia",
		"https://example.com/c",
	}
	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}
	if !strings.HasPrefix(prompt, llm.TextSystemPrompt) {
		t.Error("base prompt should lead the assembled prompt")
	}
}

func TestBuildSystemPrompt_SystemClock(t *testing.T) {
	results := []domain.SearchResult{
		{Title: "Current Date & Time", Snippet: "Today is Monday, June 9, 2025. The current time is 2:30 PM UTC.", Source: domain.SourceSystemClock},
	}

	prompt := llm.BuildSystemPrompt(llm.TextSystemPrompt, results)

	if !strings.Contains(prompt, "answer directly") {
		t.Error("clock results should instruct the model to answer directly")
	}
	if !strings.Contains(prompt, "Monday, June 9, 2025") {
		t.Error("clock snippet should be included verbatim")
	}
	if strings.Contains(prompt, "CURRENT WEB SEARCH RESULTS") {
		t.Error("clock results must not render as web search results")
	}
}

func TestHistoryFromMessages(t *testing.T) {
	messages := []domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "hi", Images: []string{"data:image/png;base64,AAAA"}},
		{ID: "m2", Role: domain.RoleAssistant, Content: "hello"},
	}

	history := llm.HistoryFromMessages(messages)

	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "hi" {
		t.Errorf("unexpected first entry: %+v", history[0])
	}
	if history[1].Role != "assistant" || history[1].Content != "hello" {
		t.Errorf("unexpected second entry: %+v", history[1])
	}
}

func TestParseDataURI(t *testing.T) {
	img, err := llm.ParseDataURI("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("expected image/png, got %s", img.MIMEType)
	}
	if string(img.Data) != "hello" {
		t.Errorf("expected decoded payload 'hello', got %q", img.Data)
	}
}

func TestParseDataURI_Invalid(t *testing.T) {
	for _, uri := range []string{"", "not a data uri", "data:image/png;base64,%%%"} {
		if _, err := llm.ParseDataURI(uri); err == nil {
			t.Errorf("expected error for %q", uri)
		}
	}
}
