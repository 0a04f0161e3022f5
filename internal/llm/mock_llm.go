package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	args := m.Called(ctx, text, opts)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Answer(ctx context.Context, contextText, question string) (string, error) {
	args := m.Called(ctx, contextText, question)
	return args.String(0), args.Error(1)
}
