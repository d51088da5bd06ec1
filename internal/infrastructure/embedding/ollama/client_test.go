package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedQuerySendsModelAndInput(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	vector, err := NewEmbedder(server.URL, "multilingual-e5-large", nil).
		EmbedQuery(context.Background(), "query: гарантийный срок")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("unexpected vector %v", vector)
	}
	if captured["model"] != "multilingual-e5-large" {
		t.Fatalf("model not sent: %v", captured)
	}
	inputs, ok := captured["input"].([]any)
	if !ok || len(inputs) != 1 || inputs[0] != "query: гарантийный срок" {
		t.Fatalf("input not sent verbatim: %v", captured["input"])
	}
}

func TestEmbedQueryRejectsEmptyInput(t *testing.T) {
	if _, err := NewEmbedder("http://localhost", "m", nil).EmbedQuery(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestEmbedQueryFailsOnEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}))
	defer server.Close()

	if _, err := NewEmbedder(server.URL, "m", nil).EmbedQuery(context.Background(), "q"); err == nil {
		t.Fatalf("expected error for empty embeddings")
	}
}

func TestEmbedQuerySurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewEmbedder(server.URL, "m", nil).EmbedQuery(context.Background(), "q")
	if err == nil {
		t.Fatalf("expected error")
	}
	var httpErr *httpStatusError
	if !errors.As(err, &httpErr) || httpErr.status != http.StatusInternalServerError {
		t.Fatalf("expected typed status error, got %v", err)
	}
}

func TestClassifyErrorPolicy(t *testing.T) {
	serverErr := &httpStatusError{status: 503}
	if out := ClassifyError(serverErr); !out.Retry || !out.CountAsFailure {
		t.Fatalf("5xx must be retryable and counted: %+v", out)
	}

	clientErr := &httpStatusError{status: 400}
	if out := ClassifyError(clientErr); out.Retry || out.CountAsFailure {
		t.Fatalf("4xx must not be retried or counted: %+v", out)
	}

	if out := ClassifyError(errors.New("dial tcp: connection refused")); !out.Retry {
		t.Fatalf("transport errors must be retryable: %+v", out)
	}
}
