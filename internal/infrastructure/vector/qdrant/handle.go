// Package qdrant serves pre-built indexes from a qdrant collection over its
// HTTP API. One collection per index; chunk payload carries the same fields
// chunks.json would.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

type Handle struct {
	baseURL    string
	collection string
	name       string
	asymmetric bool
	httpClient *http.Client
}

func (h *Handle) Name() string { return h.name }

func (h *Handle) QueryPassageAsymmetric() bool { return h.asymmetric }

func (h *Handle) Search(ctx context.Context, queryVector []float32, k int) ([]domain.ScoredHit, error) {
	if len(queryVector) == 0 || k <= 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"query":        queryVector,
		"limit":        k,
		"with_payload": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/query", h.baseURL, h.collection)
	points, err := h.postPoints(ctx, url, body, "query")
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoredHit, 0, len(points))
	for _, p := range points {
		out = append(out, domain.ScoredHit{
			Chunk: chunkFromPayload(p.Payload),
			Score: similarityScore(p.Score),
		})
	}
	return out, nil
}

func (h *Handle) LookupByID(ctx context.Context, chunkID string) (domain.Chunk, bool, error) {
	if strings.TrimSpace(chunkID) == "" {
		return domain.Chunk{}, false, nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"limit":        1,
		"with_payload": true,
		"filter": map[string]interface{}{
			"must": []map[string]interface{}{
				{
					"key": "chunk_id",
					"match": map[string]interface{}{
						"value": chunkID,
					},
				},
			},
		},
	})
	if err != nil {
		return domain.Chunk{}, false, fmt.Errorf("marshal scroll body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/scroll", h.baseURL, h.collection)
	points, err := h.postPoints(ctx, url, body, "scroll")
	if err != nil {
		return domain.Chunk{}, false, err
	}
	if len(points) == 0 {
		return domain.Chunk{}, false, nil
	}
	return chunkFromPayload(points[0].Payload), true, nil
}

type queryPoint struct {
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

func (h *Handle) postPoints(ctx context.Context, url string, body []byte, op string) ([]queryPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%s status: %s: %s", op, resp.Status, strings.TrimSpace(string(raw)))
	}
	return decodePoints(resp.Body)
}

// decodePoints accepts both the points/query shape (result.points) and the
// points/scroll shape (result as a bare list is not used; scroll also nests
// under result.points).
func decodePoints(r io.Reader) ([]queryPoint, error) {
	var decoded struct {
		Result struct {
			Points []queryPoint `json:"points"`
		} `json:"result"`
	}
	if err := json.NewDecoder(r).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode points response: %w", err)
	}
	return decoded.Result.Points, nil
}

func chunkFromPayload(payload map[string]interface{}) domain.Chunk {
	meta := domain.ChunkMetadata{
		Title:       getStringPayload(payload, "title"),
		ElementType: domain.ElementType(getStringPayload(payload, "element_type")),
		Linked:      getStringSlicePayload(payload, "linked"),
	}.Normalize()
	return domain.Chunk{
		ID:       getStringPayload(payload, "chunk_id"),
		Content:  getStringPayload(payload, "content"),
		Metadata: meta,
	}
}

// similarityScore maps qdrant's cosine score from [-1, 1] to [0, 1].
func similarityScore(cos float64) float64 {
	score := (1 + cos) / 2
	return math.Min(1, math.Max(0, score))
}

func getStringPayload(payload map[string]interface{}, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getStringSlicePayload(payload map[string]interface{}, key string) []string {
	v, ok := payload[key]
	if !ok {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
