// Package ollama implements the model gateway over the Ollama HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"workwise/internal/analysis"
	"workwise/internal/config"
	"workwise/internal/domain"
	"workwise/internal/port"
)

const availabilityTimeout = 5 * time.Second

// Client talks to an Ollama inference server. Configuration is read-only
// after construction; the client is safe for concurrent use.
type Client struct {
	baseURL      string
	model        string
	maxImages    int
	payloadLimit int64
	http         *http.Client
}

// NewClient creates a gateway client from an Ollama config.
func NewClient(cfg *config.OllamaConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	maxImages := cfg.MaxImages
	if maxImages <= 0 {
		maxImages = 10
	}
	limitMB := cfg.MaxPayloadMB
	if limitMB <= 0 {
		limitMB = 50
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		model:        cfg.Model,
		maxImages:    maxImages,
		payloadLimit: limitMB * 1024 * 1024,
		http:         &http.Client{Timeout: timeout},
	}
}

// IsConfigured reports whether the required configuration is present.
// Pure check: no network call.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.model != ""
}

// CheckAvailability probes the inference endpoint. It never returns an
// error; any transport failure or non-success status reads as unavailable.
func (c *Client) CheckAvailability(ctx context.Context) bool {
	if !c.IsConfigured() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Query sends a text-only generation request.
func (c *Client) Query(ctx context.Context, prompt string, opts port.QueryOptions) (*port.ModelResponse, error) {
	return c.generate(ctx, prompt, nil, opts)
}

// QueryWithImages sends a generation request with an ordered sequence of
// base64-encoded images. Fails with PayloadTooLargeError before any network
// call when the combined payload exceeds the service's accepted size.
func (c *Client) QueryWithImages(ctx context.Context, prompt string, images []string, opts port.QueryOptions) (*port.ModelResponse, error) {
	cleaned, err := c.prepareImages(images)
	if err != nil {
		return nil, err
	}
	return c.generate(ctx, prompt, cleaned, opts)
}

// prepareImages strips data-URI prefixes, drops empties, caps the count at
// maxImages, and enforces the combined size limit.
func (c *Client) prepareImages(images []string) ([]string, error) {
	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		if i := strings.IndexByte(img, ','); i >= 0 && strings.HasPrefix(img, "data:") {
			img = img[i+1:]
		}
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		cleaned = append(cleaned, img)
	}
	if len(cleaned) == 0 {
		// Local validation failure: the service was never contacted.
		return nil, domain.ErrDocumentEmpty
	}
	if len(cleaned) > c.maxImages {
		log.Printf("ollama.Client: truncating image payload from %d to %d pages", len(cleaned), c.maxImages)
		cleaned = cleaned[:c.maxImages]
	}
	var total int64
	for _, img := range cleaned {
		total += int64(len(img))
	}
	if total > c.payloadLimit {
		return nil, &analysis.PayloadTooLargeError{SizeBytes: total, Limit: c.payloadLimit}
	}
	return cleaned, nil
}

// generateRequest is the Ollama /api/generate wire schema.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// generateResponse is the subset of the Ollama response the gateway uses.
type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *Client) generate(ctx context.Context, prompt string, images []string, opts port.QueryOptions) (*port.ModelResponse, error) {
	if !c.IsConfigured() {
		return nil, &analysis.ConfigurationError{Missing: "endpoint URL or model name"}
	}

	// The generate endpoint has no separate system slot for vision models;
	// the system instruction is prepended to the prompt.
	fullPrompt := prompt
	if opts.System != "" {
		fullPrompt = opts.System + "\n\n" + prompt
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: fullPrompt,
		Images: images,
		Stream: false,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  maxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &analysis.TimeoutError{Err: err}
		}
		return nil, &analysis.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &analysis.TimeoutError{Err: err}
		}
		return nil, &analysis.TransportError{Err: err}
	}
	latency := time.Since(start)

	// Rate limiting and pool exhaustion read as upstream failures, not a
	// distinct kind.
	if resp.StatusCode != http.StatusOK {
		return nil, &analysis.UpstreamError{
			Status: resp.StatusCode,
			Body:   upstreamErrorBody(respBody),
		}
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, &analysis.UpstreamError{Status: resp.StatusCode, Body: "invalid response envelope: " + truncate(string(respBody), 300)}
	}

	model := gen.Model
	if model == "" {
		model = c.model
	}
	return &port.ModelResponse{
		Raw:     gen.Response,
		Model:   model,
		Latency: latency,
	}, nil
}

// upstreamErrorBody extracts the "error" field from an Ollama error payload,
// falling back to a truncated raw body.
func upstreamErrorBody(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return truncate(string(body), 300)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
