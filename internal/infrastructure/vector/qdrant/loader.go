package qdrant

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/vector/indexmeta"
)

// Loader resolves an index directory to a qdrant collection named in its
// manifest. Only the manifest is read locally; vectors live server-side.
type Loader struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewLoader(baseURL string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
		logger:     logger,
	}
}

func (l *Loader) Load(ctx context.Context, path string) (domain.IndexHandle, error) {
	manifest, err := indexmeta.Load(path)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	if strings.TrimSpace(manifest.Collection) == "" {
		return nil, fmt.Errorf("index %s: manifest has no collection", manifest.Name)
	}

	if err := l.checkCollection(ctx, manifest.Collection); err != nil {
		return nil, fmt.Errorf("index %s: %w", manifest.Name, err)
	}

	l.logger.Info("index_loaded",
		"index", manifest.Name,
		"backend", "qdrant",
		"collection", manifest.Collection,
		"asymmetric", manifest.QueryPassageAsymmetric,
	)
	return &Handle{
		baseURL:    l.baseURL,
		collection: manifest.Collection,
		name:       manifest.Name,
		asymmetric: manifest.QueryPassageAsymmetric,
		httpClient: l.httpClient,
	}, nil
}

func (l *Loader) checkCollection(ctx context.Context, collection string) error {
	url := fmt.Sprintf("%s/collections/%s", l.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create collection check request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("collection check request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("collection %s check status: %s: %s", collection, resp.Status, strings.TrimSpace(string(raw)))
	}
	return nil
}
