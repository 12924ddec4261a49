package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/llm"
)

func imageRequest() domain.ChatRequest {
	return domain.ChatRequest{
		Messages: []domain.Message{
			{ID: "m1", Role: domain.RoleUser, Content: "what is this", Images: []string{"data:image/png;base64,AAAA"}},
		},
		HasImages: true,
	}
}

func textRequest(content string) domain.ChatRequest {
	return domain.ChatRequest{
		Messages: []domain.Message{
			{ID: "m1", Role: domain.RoleUser, Content: content},
		},
	}
}

func TestChatService_Ready(t *testing.T) {
	router := llm.NewRouter("groq")
	router.RegisterProvider(NewMockProvider("groq", false))

	svc := NewChatService(router, nil, nil)
	assert.False(t, svc.Ready())

	router.RegisterProvider(NewMockProvider("openai", true))
	assert.True(t, svc.Ready())
}

func TestChatService_CompleteVision_FirstSuccessWins(t *testing.T) {
	provider := NewMockProvider("groq", true)
	provider.On("Chat", mock.Anything, mock.Anything, "vision-a").
		Return(nil, errors.New("model decommissioned"))
	provider.On("Chat", mock.Anything, mock.Anything, "vision-b").
		Return(&llm.Response{Content: "It is a cell diagram.", Model: "vision-b"}, nil)

	router := llm.NewRouter("groq")
	router.RegisterProvider(provider)

	svc := NewChatService(router, nil, []VisionTarget{
		{Provider: "groq", Model: "vision-a"},
		{Provider: "groq", Model: "vision-b"},
		{Provider: "groq", Model: "vision-c"},
	})

	completion, err := svc.CompleteVision(context.Background(), imageRequest())
	require.NoError(t, err)
	assert.Equal(t, "It is a cell diagram.", completion.Content)
	assert.True(t, completion.Finished)

	// vision-c is never attempted once vision-b answers.
	provider.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, "vision-c")
}

func TestChatService_CompleteVision_AllFailReturnsApology(t *testing.T) {
	provider := NewMockProvider("groq", true)
	provider.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("model decommissioned"))

	router := llm.NewRouter("groq")
	router.RegisterProvider(provider)

	svc := NewChatService(router, nil, []VisionTarget{
		{Provider: "groq", Model: "vision-a"},
		{Provider: "groq", Model: "vision-b"},
	})

	// Exhausting the chain is not an error; the apology is a normal
	// completion so the conversation stays usable.
	completion, err := svc.CompleteVision(context.Background(), imageRequest())
	require.NoError(t, err)
	assert.True(t, completion.Finished)
	assert.Contains(t, completion.Content, "I see you've uploaded an image!")
}

func TestChatService_CompleteVision_SkipsUnknownProviders(t *testing.T) {
	provider := NewMockProvider("groq", true)
	provider.On("Chat", mock.Anything, mock.Anything, "vision-a").
		Return(&llm.Response{Content: "answer"}, nil)

	router := llm.NewRouter("groq")
	router.RegisterProvider(provider)

	svc := NewChatService(router, nil, []VisionTarget{
		{Provider: "gemini", Model: "gemini-1.5-flash"}, // not registered
		{Provider: "groq", Model: "vision-a"},
	})

	completion, err := svc.CompleteVision(context.Background(), imageRequest())
	require.NoError(t, err)
	assert.Equal(t, "answer", completion.Content)
}

func TestChatService_CompleteVision_RequiresImages(t *testing.T) {
	router := llm.NewRouter("groq")
	svc := NewChatService(router, nil, nil)

	_, err := svc.CompleteVision(context.Background(), textRequest("no image here"))
	assert.Error(t, err)
}

func TestChatService_StreamText_InjectsSearchResults(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "What is photosynthesis").
		Return([]domain.SearchResult{
			{Title: "Photosynthesis", Snippet: "Plants convert light into energy.", Source: "DuckDuckGo"},
		}, nil)

	var captured llm.Request
	provider := NewMockProvider("groq", true)
	provider.On("ChatStream", mock.Anything, mock.Anything, "", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(llm.Request)
			fn := args.Get(3).(llm.StreamFunc)
			fn("Photosynthesis is")
		}).
		Return(&llm.Response{Content: "Photosynthesis is", Model: "mock-model"}, nil)

	router := llm.NewRouter("groq")
	router.RegisterProvider(provider)
	svc := NewChatService(router, searcher, nil)

	req := textRequest("What is photosynthesis")
	req.UseWebSearch = true

	var deltas []string
	err := svc.StreamText(context.Background(), req, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Photosynthesis is"}, deltas)
	assert.Contains(t, captured.System, "CURRENT WEB SEARCH RESULTS")
	assert.Contains(t, captured.System, "Plants convert light into energy.")
	searcher.AssertExpectations(t)
}

func TestChatService_StreamText_SearchFailureDoesNotBlock(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).
		Return(nil, errors.New("search unavailable"))

	var captured llm.Request
	provider := NewMockProvider("groq", true)
	provider.On("ChatStream", mock.Anything, mock.Anything, "", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(llm.Request)
		}).
		Return(&llm.Response{Content: "", Model: "mock-model"}, nil)

	router := llm.NewRouter("groq")
	router.RegisterProvider(provider)
	svc := NewChatService(router, searcher, nil)

	req := textRequest("anything")
	req.UseWebSearch = true

	err := svc.StreamText(context.Background(), req, func(string) error { return nil })
	require.NoError(t, err)
	assert.NotContains(t, captured.System, "CURRENT WEB SEARCH RESULTS")
}

func TestChatService_StreamText_NoProvider(t *testing.T) {
	router := llm.NewRouter("groq")
	svc := NewChatService(router, nil, nil)

	err := svc.StreamText(context.Background(), textRequest("hi"), func(string) error { return nil })
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unauthorized status",
			err:        &llm.APIError{Provider: "groq", Status: 401, Message: "invalid token"},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid Groq API key. Please check your configuration.",
		},
		{
			name:       "api key message",
			err:        errors.New("upstream rejected API key"),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid Groq API key. Please check your configuration.",
		},
		{
			name:       "rate limited status",
			err:        &llm.APIError{Provider: "groq", Status: 429, Message: "slow down"},
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Rate limit reached. Please try again in a moment.",
		},
		{
			name:       "quota message",
			err:        errors.New("monthly quota exceeded"),
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Rate limit reached. Please try again in a moment.",
		},
		{
			name:       "bad model",
			err:        &llm.APIError{Provider: "groq", Status: 400, Message: "unknown model"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Model not available. Please try again.",
		},
		{
			name:       "generic",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to process request. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := ClassifyError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
			assert.False(t, strings.Contains(msg, "error:"), "message must be user-facing")
		})
	}
}
