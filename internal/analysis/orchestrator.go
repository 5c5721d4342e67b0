package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"workwise/internal/domain"
	"workwise/internal/port"
)

// Options tunes orchestrator behavior.
type Options struct {
	// MinTextLen is the minimum usable extracted-text length in runes;
	// below it the analysis degrades to image mode when page images exist.
	MinTextLen int
	// Temperature and MaxTokens are passed through to the model gateway.
	Temperature float64
	MaxTokens   int
}

// DefaultOptions returns the orchestrator defaults.
func DefaultOptions() Options {
	return Options{
		MinTextLen:  100,
		Temperature: 0.1,
		MaxTokens:   8000,
	}
}

// Document is the analysis input: extracted text and/or ordered page images.
// At least one of Text and Images must be present.
type Document struct {
	ID       string
	Text     string
	Images   []string // base64-encoded page images, in page order
	FileType domain.FileType
	// Scanned marks documents whose content is inherently image-based
	// (no usable text layer), tipping mode selection toward images.
	Scanned bool
}

// Result is the terminal artifact of a successful analysis. Immutable once
// constructed.
type Result struct {
	Kind            domain.AnalysisKind
	Mode            domain.AnalysisMode
	Verdict         domain.Verdict
	Findings        []domain.Finding
	Recommendations []string
	// Partial marks a degraded-but-usable result; Missing names the
	// required payload fields the model omitted.
	Partial bool
	Missing []string
	Model   string
	Latency time.Duration
}

// FailureReport is the caller-facing shape of a failed analysis: the
// taxonomy kind plus a human-readable cause, never a raw transport error.
type FailureReport struct {
	Kind  string `json:"kind"`
	Cause string `json:"cause"`
}

// NewFailureReport maps any analysis error to its report form.
func NewFailureReport(err error) FailureReport {
	return FailureReport{
		Kind:  FailureKind(err),
		Cause: err.Error(),
	}
}

// Analyzer orchestrates a single document analysis: mode selection, prompt
// construction, model invocation, response normalization, and payload
// validation. Stateless across calls; safe for concurrent use.
type Analyzer struct {
	gateway port.ModelGateway
	opts    Options
}

// NewAnalyzer creates an Analyzer over the given model gateway.
func NewAnalyzer(gateway port.ModelGateway, opts Options) *Analyzer {
	if opts.MinTextLen <= 0 {
		opts.MinTextLen = DefaultOptions().MinTextLen
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultOptions().MaxTokens
	}
	return &Analyzer{gateway: gateway, opts: opts}
}

// Analyze runs the full pipeline for one document and analysis kind,
// selecting text or image mode from the document's available content.
func (a *Analyzer) Analyze(ctx context.Context, doc Document, kind domain.AnalysisKind) (*Result, error) {
	if !a.gateway.IsConfigured() {
		return nil, &ConfigurationError{Missing: "endpoint URL or model name"}
	}
	mode, err := a.SelectMode(doc)
	if err != nil {
		return nil, err
	}
	return a.run(ctx, doc, kind, mode)
}

// AnalyzeWithImages runs the pipeline with mode forced to image, for callers
// who have already determined visual analysis is required.
func (a *Analyzer) AnalyzeWithImages(ctx context.Context, doc Document, kind domain.AnalysisKind) (*Result, error) {
	if !a.gateway.IsConfigured() {
		return nil, &ConfigurationError{Missing: "endpoint URL or model name"}
	}
	if len(doc.Images) == 0 {
		return nil, domain.ErrDocumentEmpty
	}
	return a.run(ctx, doc, kind, domain.ModeImage)
}

// SelectMode picks the analysis mode. Image mode is chosen, provided page
// images exist, when extracted text is absent or below the usable-length
// threshold or when the document is inherently image-based. Text extraction
// failures thus degrade to visual analysis instead of failing.
func (a *Analyzer) SelectMode(doc Document) (domain.AnalysisMode, error) {
	text := strings.TrimSpace(doc.Text)
	hasImages := len(doc.Images) > 0

	if text == "" && !hasImages {
		return "", domain.ErrDocumentEmpty
	}
	if !hasImages {
		return domain.ModeText, nil
	}
	if text == "" || len([]rune(text)) < a.opts.MinTextLen || doc.Scanned {
		return domain.ModeImage, nil
	}
	return domain.ModeText, nil
}

func (a *Analyzer) run(ctx context.Context, doc Document, kind domain.AnalysisKind, mode domain.AnalysisMode) (*Result, error) {
	prompt := BuildPrompt(kind, mode)
	opts := port.QueryOptions{
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
		System:      prompt.System,
	}

	resp, err := a.invoke(ctx, prompt.Render(doc.Text), doc.Images, mode, opts)
	if err != nil {
		return nil, err
	}

	payload, err := Normalize(resp.Raw)
	if err != nil {
		// Retrying an LLM call rarely repairs structural malformation;
		// surface it to the caller instead.
		return nil, err
	}
	payload.Validate()

	result := &Result{
		Kind:            kind,
		Mode:            mode,
		Verdict:         payload.Verdict,
		Findings:        payload.Findings,
		Recommendations: payload.Recommendations,
		Partial:         payload.IsPartial(),
		Missing:         payload.Missing,
		Model:           resp.Model,
		Latency:         resp.Latency,
	}
	if result.Partial && !domain.KnownVerdicts[result.Verdict] {
		result.Verdict = domain.VerdictPartiallyCompliant
	}
	return result, nil
}

// invoke calls the gateway, retrying exactly once on transient transport
// failures. Upstream rejections, oversized payloads, and malformed output
// are never retried.
func (a *Analyzer) invoke(ctx context.Context, prompt string, images []string, mode domain.AnalysisMode, opts port.QueryOptions) (*port.ModelResponse, error) {
	call := func() (*port.ModelResponse, error) {
		if mode == domain.ModeImage {
			return a.gateway.QueryWithImages(ctx, prompt, images, opts)
		}
		return a.gateway.Query(ctx, prompt, opts)
	}

	resp, err := call()
	if err == nil {
		return resp, nil
	}
	if !retryable(err) {
		return nil, err
	}

	log.Printf("analysis.Analyzer: %s-mode call failed, retrying once: %v", mode, err)
	resp, retryErr := call()
	if retryErr != nil {
		return nil, fmt.Errorf("retry after transport failure: %w", retryErr)
	}
	return resp, nil
}
