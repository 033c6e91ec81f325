package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditready/auditready-backend/internal/domain/errors"
)

// KnowledgeRepository resolves references into the knowledge corpus. The
// corpus itself (document ingestion, chunking, embeddings) is owned by the
// AI subsystem; this side only verifies that cited chunks exist.
type KnowledgeRepository struct {
	db *pgxpool.Pool
}

// NewKnowledgeRepository creates a PostgreSQL knowledge chunk resolver
func NewKnowledgeRepository(pool *Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool.DB()}
}

// MissingChunks returns the subset of ids with no corresponding chunk row
func (r *KnowledgeRepository) MissingChunks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id FROM knowledge_chunks WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve knowledge chunks").WithCause(err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternalError("failed to scan chunk id").WithCause(err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to read chunk ids").WithCause(err)
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
