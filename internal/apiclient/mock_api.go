package apiclient

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAPI is a mock implementation of API using testify/mock.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SummarizeText(ctx context.Context, req SummaryRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) AskQuestion(ctx context.Context, req QARequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) UploadPDF(ctx context.Context, up Upload) (string, error) {
	args := m.Called(ctx, up)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) UploadDocument(ctx context.Context, up Upload) (string, error) {
	args := m.Called(ctx, up)
	return args.String(0), args.Error(1)
}
