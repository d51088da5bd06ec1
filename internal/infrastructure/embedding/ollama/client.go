// Package ollama embeds user queries through an Ollama server. Index passages
// are embedded offline by the index builder; at runtime only the query side of
// the model is exercised.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/resilience"
)

type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
	guard      *resilience.Guard
}

// NewEmbedder wires the client behind a resilience guard. A nil guard means
// plain single-attempt calls, which the tests use.
func NewEmbedder(baseURL, model string, guard *resilience.Guard) *Embedder {
	return &Embedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		guard:      guard,
	}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty embed input")
	}

	var vector []float32
	call := func(ctx context.Context) error {
		request := map[string]any{
			"model": e.model,
			"input": []string{text},
		}
		var response struct {
			Embeddings [][]float32 `json:"embeddings"`
		}
		if err := e.postJSON(ctx, "/api/embed", request, &response); err != nil {
			return err
		}
		if len(response.Embeddings) == 0 || len(response.Embeddings[0]) == 0 {
			return fmt.Errorf("empty embedding result")
		}
		vector = response.Embeddings[0]
		return nil
	}

	if e.guard == nil {
		if err := call(ctx); err != nil {
			return nil, err
		}
		return vector, nil
	}
	if err := e.guard.Do(ctx, call); err != nil {
		return nil, err
	}
	return vector, nil
}

// ClassifyError treats network failures and server-side statuses as retryable;
// client-side statuses are permanent and kept away from the breaker stats.
func ClassifyError(err error) resilience.Outcome {
	var httpErr *httpStatusError
	if asHTTPStatusError(err, &httpErr) {
		if httpErr.status >= 500 {
			return resilience.Outcome{Retry: true, CountAsFailure: true}
		}
		return resilience.Outcome{Retry: false, CountAsFailure: false}
	}
	// Transport-level failure: connection refused, timeout, etc.
	return resilience.Outcome{Retry: true, CountAsFailure: true}
}
