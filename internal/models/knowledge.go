package models

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeEntry is the persisted unit of retrievable knowledge. Content is
// the canonical "Q: <question>\n\nA: <answer>" pair; the embedding dimension
// is fixed at store configuration time and shared by every entry.
type KnowledgeEntry struct {
	ID        uuid.UUID         `db:"id"`
	Content   string            `db:"content"`
	Embedding []float32         `db:"embedding"`
	Metadata  map[string]string `db:"metadata"`
	CreatedAt time.Time         `db:"created_at"`
}

// SearchResult pairs an entry with its cosine similarity to the query,
// reported as 1 - cosine_distance.
type SearchResult struct {
	Entry      KnowledgeEntry
	Similarity float64
}
