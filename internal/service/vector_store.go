package service

import (
	"context"
	"fmt"

	"askhub/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// knowledgeQuerier is the persistence contract consumed by VectorStore,
// implemented by repository.KnowledgeRepository.
type knowledgeQuerier interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, entry *models.KnowledgeEntry) error
	Search(ctx context.Context, embedding []float32, limit int, threshold float64, filter map[string]string) ([]models.SearchResult, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByMetadata(ctx context.Context, filter map[string]string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// embedder turns text into the collection's fixed-dimension vector.
type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DeleteSelector picks the rows a Delete call removes. Exactly one field must
// be set.
type DeleteSelector struct {
	ID             string
	MetadataFilter map[string]string
	All            bool
}

// VectorStore manages the single logical collection of knowledge entries:
// it embeds content on write, runs similarity queries on read, and surfaces
// backend failures as ErrStoreUnavailable without retrying.
type VectorStore struct {
	repo     knowledgeQuerier
	embedder embedder
	logger   *zap.Logger
}

func NewVectorStore(repo knowledgeQuerier, embedder embedder, logger *zap.Logger) *VectorStore {
	return &VectorStore{
		repo:     repo,
		embedder: embedder,
		logger:   logger,
	}
}

// EnsureCollection bootstraps the collection schema. Idempotent.
func (s *VectorStore) EnsureCollection(ctx context.Context) error {
	if err := s.repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Upsert embeds content and writes the entry, replacing any existing entry
// with the same id (content, metadata, embedding and timestamp all
// overwritten, no merge). A supplied id must parse as a UUID; an empty id is
// generated. Returns the entry id.
func (s *VectorStore) Upsert(ctx context.Context, content string, metadata map[string]string, id string) (uuid.UUID, error) {
	entryID := uuid.New()
	if id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %q is not a valid UUID", ErrInvalidIdentifier, id)
		}
		entryID = parsed
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return uuid.Nil, err
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	entry := &models.KnowledgeEntry{
		ID:        entryID,
		Content:   content,
		Embedding: embedding,
		Metadata:  metadata,
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.logger.Debug("Knowledge entry upserted",
		zap.String("id", entryID.String()),
		zap.Int("content_length", len(content)),
	)

	return entryID, nil
}

// Search embeds the query text and returns entries whose similarity clears
// threshold, best first. An empty result set is a normal outcome, not an
// error.
func (s *VectorStore) Search(
	ctx context.Context,
	queryText string,
	limit int,
	threshold float64,
	filter map[string]string,
) ([]models.SearchResult, error) {
	embedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	results, err := s.repo.Search(ctx, embedding, limit, threshold, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return results, nil
}

// Delete removes entries picked by exactly one selector and returns the
// number of rows removed. Zero or multiple selectors violate the contract.
func (s *VectorStore) Delete(ctx context.Context, sel DeleteSelector) (int64, error) {
	selectors := 0
	if sel.ID != "" {
		selectors++
	}
	if len(sel.MetadataFilter) > 0 {
		selectors++
	}
	if sel.All {
		selectors++
	}
	if selectors != 1 {
		return 0, fmt.Errorf("%w: provide exactly one of id, metadata filter, or delete-all", ErrInvalidArgument)
	}

	var (
		count int64
		err   error
	)
	switch {
	case sel.All:
		count, err = s.repo.DeleteAll(ctx)
	case sel.ID != "":
		var id uuid.UUID
		id, err = uuid.Parse(sel.ID)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a valid UUID", ErrInvalidIdentifier, sel.ID)
		}
		count, err = s.repo.DeleteByID(ctx, id)
	default:
		count, err = s.repo.DeleteByMetadata(ctx, sel.MetadataFilter)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return count, nil
}

// Count returns the number of entries in the collection.
func (s *VectorStore) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}
