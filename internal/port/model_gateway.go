package port

import (
	"context"
	"time"
)

// QueryOptions carries sampling parameters for a single model call.
type QueryOptions struct {
	Temperature float64
	MaxTokens   int
	System      string
}

// ModelResponse is the raw result of one model call.
type ModelResponse struct {
	Raw     string
	Model   string
	Latency time.Duration
}

// ModelGateway abstracts the LLM inference service.
//
// IsConfigured is a pure check of the gateway configuration; it performs no
// network I/O. CheckAvailability probes the endpoint and never returns an
// error. Query and QueryWithImages honor the context deadline and surface
// failures as typed errors from the analysis package.
type ModelGateway interface {
	IsConfigured() bool
	CheckAvailability(ctx context.Context) bool
	Query(ctx context.Context, prompt string, opts QueryOptions) (*ModelResponse, error)
	QueryWithImages(ctx context.Context, prompt string, images []string, opts QueryOptions) (*ModelResponse, error)
}
