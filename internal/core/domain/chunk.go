package domain

import "strings"

// ElementType tells the renderer whether a chunk carries prose or a table part.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementTable ElementType = "table"
)

// retrievalPrefixes are embedding-convention tags (e5 family) prepended to
// stored passages and queries. They are stripped before text reaches a user.
var retrievalPrefixes = []string{"passage:", "query:"}

// QueryPrefix is prepended to user queries when the loaded indexes were built
// with a query/passage-asymmetric embedding model.
const QueryPrefix = "query: "

// ChunkMetadata is validated and defaulted at the index-load boundary, so
// readers can rely on ElementType holding a known value.
type ChunkMetadata struct {
	Title       string
	ElementType ElementType
	// Linked lists ids of chunks that belong to the same logical unit, e.g.
	// continuation parts of a table split across several chunks.
	Linked []string
}

// Normalize applies metadata defaults. Unknown element types degrade to text
// rather than failing a whole index load.
func (m ChunkMetadata) Normalize() ChunkMetadata {
	out := m
	switch out.ElementType {
	case ElementText, ElementTable:
	default:
		out.ElementType = ElementText
	}
	return out
}

// Chunk is one retrievable unit of document content. The core never mutates a
// chunk; ownership stays with the index that stores it.
type Chunk struct {
	ID       string
	Content  string
	Metadata ChunkMetadata
}

// DisplayContent returns the chunk text with any retrieval prefix stripped and
// surrounding whitespace trimmed.
func (c Chunk) DisplayContent() string {
	text := c.Content
	for _, prefix := range retrievalPrefixes {
		text = strings.ReplaceAll(text, prefix, "")
	}
	return strings.TrimSpace(text)
}

// ScoredHit is a single-index search result with a cosine-derived score in [0,1].
type ScoredHit struct {
	Chunk Chunk
	Score float64
}

// ReconstructedDocument is the ordered assembly of all chunks reachable from a
// seed chunk via link traversal. Discarded after rendering.
type ReconstructedDocument struct {
	Title       string
	ElementType ElementType
	Chunks      []Chunk
	// BrokenLinks counts traversed ids that no loaded index could resolve.
	BrokenLinks int
}

// Text concatenates the display content of all chunks with blank-line separators.
func (d ReconstructedDocument) Text() string {
	parts := make([]string, 0, len(d.Chunks))
	for _, chunk := range d.Chunks {
		if content := chunk.DisplayContent(); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n")
}
