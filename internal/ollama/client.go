// Package ollama is a thin HTTP client for the Ollama API, covering the
// three calls ragline makes: embeddings, one-shot generation and streamed
// generation.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ragline/ragline/internal/log"
)

// ErrGeneration indicates a model call failed. Callers at the orchestrator
// boundary treat it as "end the turn gracefully", never as fatal.
var ErrGeneration = errors.New("model generation failed")

// Client talks to a single Ollama server.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  log.Logger
}

// New creates a Client for the given base URL (e.g. "http://localhost:11434").
func New(baseURL string, logger log.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		// Streamed answers can run for minutes on slow local models.
		httpc:  &http.Client{Timeout: 5 * time.Minute},
		logger: logger,
	}
}

// Options mirrors the subset of Ollama generation options ragline uses.
type Options struct {
	NumCtx      int     `json:"num_ctx,omitempty"`
	Temperature float64 `json:"temperature"`
}

// GenerateRequest is the /api/generate request body.
type GenerateRequest struct {
	Model   string   `json:"model"`
	System  string   `json:"system,omitempty"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"` // "json" biases decoding toward valid JSON
	Options *Options `json:"options,omitempty"`
}

// GenerateResponse is one /api/generate response object. In streaming mode
// every line is one of these; the final line has Done set and carries the
// token counts and durations.
type GenerateResponse struct {
	Response           string `json:"response"`
	Done               bool   `json:"done"`
	PromptEvalCount    int    `json:"prompt_eval_count"`
	EvalCount          int    `json:"eval_count"`
	LoadDuration       int64  `json:"load_duration"`
	PromptEvalDuration int64  `json:"prompt_eval_duration"`
	TotalDuration      int64  `json:"total_duration"`
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for text under the given model.
func (c *Client) Embed(ctx context.Context, model, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	resp, err := c.post(ctx, "/api/embeddings", body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embeddings: status %d", resp.StatusCode)
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(er.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embeddings: empty vector for model %q", model)
	}
	return er.Embedding, nil
}

// Generate performs a non-streaming generation and returns the full
// completion.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	req.Stream = false

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling generate request: %w", err)
	}

	resp, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGeneration, resp.StatusCode)
	}

	var gr GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrGeneration, err)
	}
	return &gr, nil
}

// Stream performs a streaming generation, invoking fn once per received
// increment, in order, on the calling goroutine. The final increment has
// Done set. A non-nil error from fn aborts the stream and is returned.
func (c *Client) Stream(ctx context.Context, req GenerateRequest, fn func(GenerateResponse) error) error {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling generate request: %w", err)
	}

	resp, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrGeneration, resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	// Increments are small, but a model can emit long single lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var gr GenerateResponse
		if err := json.Unmarshal(line, &gr); err != nil {
			c.logger.Warn("skipping malformed stream line", "error", err)
			continue
		}
		if err := fn(gr); err != nil {
			return err
		}
		if gr.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading stream: %v", ErrGeneration, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	return resp, nil
}
