package flatindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/vector/indexmeta"
)

const chunksFileName = "chunks.json"

// chunkRecord is one line-item of chunks.json as written by the index builder.
type chunkRecord struct {
	ChunkID     string    `json:"chunk_id"`
	Content     string    `json:"content"`
	Title       string    `json:"title"`
	ElementType string    `json:"element_type"`
	Linked      []string  `json:"linked"`
	Vector      []float32 `json:"vector"`
}

type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the manifest and chunks of an index directory into memory.
// Malformed records fail the whole load: a partially loaded index would
// silently return wrong answers.
func (l *Loader) Load(ctx context.Context, path string) (domain.IndexHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, err := indexmeta.Load(path)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}

	raw, err := os.ReadFile(filepath.Join(path, chunksFileName))
	if err != nil {
		return nil, fmt.Errorf("index %s: read chunks: %w", manifest.Name, err)
	}
	var records []chunkRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("index %s: parse chunks: %w", manifest.Name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("index %s: no chunks", manifest.Name)
	}

	dimension := manifest.Dimension
	if dimension == 0 {
		dimension = len(records[0].Vector)
	}

	idx := &Index{
		name:       manifest.Name,
		asymmetric: manifest.QueryPassageAsymmetric,
		dimension:  dimension,
		chunks:     make([]domain.Chunk, 0, len(records)),
		vectors:    make([][]float32, 0, len(records)),
		byID:       make(map[string]int, len(records)),
	}
	for i, rec := range records {
		if rec.ChunkID == "" {
			return nil, fmt.Errorf("index %s: record %d has empty chunk_id", manifest.Name, i)
		}
		if _, dup := idx.byID[rec.ChunkID]; dup {
			return nil, fmt.Errorf("index %s: duplicate chunk_id %q", manifest.Name, rec.ChunkID)
		}
		if len(rec.Vector) != dimension {
			return nil, fmt.Errorf("index %s: chunk %q has dimension %d, want %d",
				manifest.Name, rec.ChunkID, len(rec.Vector), dimension)
		}

		meta := domain.ChunkMetadata{
			Title:       rec.Title,
			ElementType: domain.ElementType(rec.ElementType),
			Linked:      rec.Linked,
		}.Normalize()

		idx.byID[rec.ChunkID] = len(idx.chunks)
		idx.chunks = append(idx.chunks, domain.Chunk{
			ID:       rec.ChunkID,
			Content:  rec.Content,
			Metadata: meta,
		})
		idx.vectors = append(idx.vectors, normalize(rec.Vector))
	}

	l.logger.Info("index_loaded",
		"index", manifest.Name,
		"chunks", len(idx.chunks),
		"dimension", dimension,
		"asymmetric", manifest.QueryPassageAsymmetric,
	)
	return idx, nil
}
