package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/llm"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
	name       string
	configured bool
}

func NewMockProvider(name string, configured bool) *MockProvider {
	return &MockProvider{name: name, configured: configured}
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockProvider) IsConfigured() bool {
	return m.configured
}

func (m *MockProvider) Chat(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func (m *MockProvider) ChatStream(ctx context.Context, req llm.Request, model string, fn llm.StreamFunc) (*llm.Response, error) {
	args := m.Called(ctx, req, model, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockSearcher mocks the Searcher interface
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}
