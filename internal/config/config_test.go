package config

import (
	"testing"
	"time"
)

func TestLoadSearchDefaults(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "")
	t.Setenv("RESULT_LIMIT", "")
	t.Setenv("MAX_MESSAGE_SIZE", "")
	t.Setenv("SEARCH_INDEX_TIMEOUT", "")
	t.Setenv("INDEX_BACKEND", "")

	cfg := Load()
	if cfg.SearchTopK != 4 {
		t.Fatalf("expected default top k 4, got %d", cfg.SearchTopK)
	}
	if cfg.ResultLimit != 3 {
		t.Fatalf("expected default result limit 3, got %d", cfg.ResultLimit)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Fatalf("expected default message size 4096, got %d", cfg.MaxMessageSize)
	}
	if cfg.SearchIndexTimeout != 15*time.Second {
		t.Fatalf("expected default index timeout 15s, got %v", cfg.SearchIndexTimeout)
	}
	if cfg.IndexBackend != "flat" {
		t.Fatalf("expected default backend flat, got %q", cfg.IndexBackend)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "8")
	t.Setenv("INDEX_BACKEND", "qdrant")
	t.Setenv("SEARCH_INDEX_TIMEOUT", "30s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "60")

	cfg := Load()
	if cfg.SearchTopK != 8 {
		t.Fatalf("expected top k 8, got %d", cfg.SearchTopK)
	}
	if cfg.IndexBackend != "qdrant" {
		t.Fatalf("expected backend qdrant, got %q", cfg.IndexBackend)
	}
	if cfg.SearchIndexTimeout != 30*time.Second {
		t.Fatalf("expected index timeout 30s, got %v", cfg.SearchIndexTimeout)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected rate limit 60, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "many")
	t.Setenv("SEARCH_INDEX_TIMEOUT", "soon")

	cfg := Load()
	if cfg.SearchTopK != 4 {
		t.Fatalf("malformed int must fall back, got %d", cfg.SearchTopK)
	}
	if cfg.SearchIndexTimeout != 15*time.Second {
		t.Fatalf("malformed duration must fall back, got %v", cfg.SearchIndexTimeout)
	}
}
