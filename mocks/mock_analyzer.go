package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"workwise/internal/analysis"
	"workwise/internal/domain"
)

// MockAnalyzer is a mock implementation of service.DocumentAnalyzer.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, doc analysis.Document, kind domain.AnalysisKind) (*analysis.Result, error) {
	args := m.Called(ctx, doc, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Result), args.Error(1)
}

func (m *MockAnalyzer) AnalyzeWithImages(ctx context.Context, doc analysis.Document, kind domain.AnalysisKind) (*analysis.Result, error) {
	args := m.Called(ctx, doc, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Result), args.Error(1)
}
