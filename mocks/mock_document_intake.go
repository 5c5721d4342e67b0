package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDocumentIntake is a mock implementation of port.DocumentIntake.
type MockDocumentIntake struct {
	mock.Mock
}

func (m *MockDocumentIntake) ConvertToPDF(ctx context.Context, docxPath, outDir string) (string, error) {
	args := m.Called(ctx, docxPath, outDir)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentIntake) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	args := m.Called(ctx, pdfPath)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentIntake) ExtractPageImages(ctx context.Context, pdfPath string) ([]string, error) {
	args := m.Called(ctx, pdfPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
