package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"askhub/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const knowledgeTable = "knowledge_entries"

// KnowledgeRepository owns persistence of the single knowledge collection:
// content, metadata, embedding and creation timestamp, plus the
// cosine-distance nearest-neighbor query.
type KnowledgeRepository struct {
	db         *pgxpool.Pool
	dimensions int
	logger     *zap.Logger
}

func NewKnowledgeRepository(db *pgxpool.Pool, dimensions int, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:         db,
		dimensions: dimensions,
		logger:     logger,
	}
}

// EnsureSchema bootstraps the collection table and its similarity index.
// Idempotent: re-creating an existing table or index is a no-op. The
// embedding dimension is fixed here; every entry must match it.
func (r *KnowledgeRepository) EnsureSchema(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			content TEXT NOT NULL,
			metadata JSONB,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, knowledgeTable, r.dimensions)

	if _, err := r.db.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create knowledge table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s USING hnsw (embedding vector_cosine_ops)`,
		knowledgeTable, knowledgeTable)

	if _, err := r.db.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create similarity index: %w", err)
	}

	return nil
}

// Upsert writes the full entry in one statement: either the whole row
// (content, metadata, embedding, timestamp) becomes visible or none of it.
// An existing id is fully replaced, last write wins, and created_at is reset.
func (r *KnowledgeRepository) Upsert(ctx context.Context, entry *models.KnowledgeEntry) error {
	if len(entry.Embedding) != r.dimensions {
		return fmt.Errorf("embedding has %d dimensions, collection is configured for %d",
			len(entry.Embedding), r.dimensions)
	}

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := squirrel.Insert(knowledgeTable).
		Columns("id", "content", "metadata", "embedding").
		Values(entry.ID, entry.Content, metadataJSON, pgvector.NewVector(entry.Embedding)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			created_at = now()`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Search returns entries whose cosine similarity to the query embedding is
// at least threshold (inclusive), most similar first, truncated to limit.
// Filter keys restrict results to exact metadata matches.
func (r *KnowledgeRepository) Search(
	ctx context.Context,
	embedding []float32,
	limit int,
	threshold float64,
	filter map[string]string,
) ([]models.SearchResult, error) {
	vec := pgvector.NewVector(embedding)

	query := squirrel.Select("id", "content", "metadata", "created_at").
		Column(squirrel.Expr("1 - (embedding <=> ?) AS similarity", vec)).
		From(knowledgeTable).
		Where(squirrel.Expr("1 - (embedding <=> ?) >= ?", vec, threshold)).
		OrderByClause("embedding <=> ?", vec).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	for key, value := range filter {
		query = query.Where(squirrel.Expr("metadata->>? = ?", key, value))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var res models.SearchResult
		var metadataJSON []byte
		if err := rows.Scan(&res.Entry.ID, &res.Entry.Content, &metadataJSON, &res.Entry.CreatedAt, &res.Similarity); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &res.Entry.Metadata); err != nil {
				r.logger.Warn("Failed to parse entry metadata",
					zap.String("id", res.Entry.ID.String()),
					zap.Error(err))
				res.Entry.Metadata = map[string]string{}
			}
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func (r *KnowledgeRepository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	query := squirrel.Delete(knowledgeTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return r.execDelete(ctx, query)
}

func (r *KnowledgeRepository) DeleteByMetadata(ctx context.Context, filter map[string]string) (int64, error) {
	query := squirrel.Delete(knowledgeTable).PlaceholderFormat(squirrel.Dollar)
	for key, value := range filter {
		query = query.Where(squirrel.Expr("metadata->>? = ?", key, value))
	}

	return r.execDelete(ctx, query)
}

func (r *KnowledgeRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM "+knowledgeTable)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *KnowledgeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM "+knowledgeTable).Scan(&count)
	return count, err
}

func (r *KnowledgeRepository) execDelete(ctx context.Context, query squirrel.DeleteBuilder) (int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
