package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/guidance"
)

// SuggestionRepository is the PostgreSQL store for AI suggestions and their
// citations. A suggestion and its citations commit together or not at all; a
// suggestion row without citations would violate the grounding invariant.
type SuggestionRepository struct {
	db *pgxpool.Pool
}

// NewSuggestionRepository creates a PostgreSQL suggestion repository
func NewSuggestionRepository(pool *Pool) *SuggestionRepository {
	return &SuggestionRepository{db: pool.DB()}
}

// CreateSuggestion writes the suggestion and all its citations in one
// transaction
func (r *SuggestionRepository) CreateSuggestion(ctx context.Context, s *guidance.Suggestion) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO guidance_suggestions (
				id, version_id, target_block_id, suggestion_type, original_content,
				suggested_content, rationale, confidence, impact, source_chunks,
				review_status, reviewed_by, reviewed_at, review_notes, model_id, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`, s.ID, s.VersionID, s.TargetBlockID, string(s.Type), s.OriginalContent,
			s.SuggestedContent, s.Rationale, s.Confidence, string(s.Impact), s.SourceChunks,
			string(s.ReviewStatus), s.ReviewedBy, s.ReviewedAt, s.ReviewNotes, s.ModelID, s.CreatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return errors.NewNotFoundError("guidance version")
			}
			return errors.NewInternalError("failed to insert suggestion").WithCause(err)
		}

		for i := range s.Citations {
			c := &s.Citations[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO guidance_citations (id, block_id, suggestion_id, source_chunk_id, relevance_score, context_text)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, c.ID, c.BlockID, c.SuggestionID, c.SourceChunkID, c.RelevanceScore, c.ContextText)
			if err != nil {
				if isForeignKeyViolation(err) {
					return errors.NewNotFoundError("knowledge chunk")
				}
				return errors.NewInternalError("failed to insert citation").WithCause(err)
			}
		}
		return nil
	})
}

// GetSuggestion retrieves a suggestion with its citations
func (r *SuggestionRepository) GetSuggestion(ctx context.Context, id uuid.UUID) (*guidance.Suggestion, error) {
	var s guidance.Suggestion
	var suggestionType, impact, reviewStatus string
	err := r.db.QueryRow(ctx, `
		SELECT id, version_id, target_block_id, suggestion_type, original_content,
		       suggested_content, rationale, confidence, impact, source_chunks,
		       review_status, reviewed_by, reviewed_at, review_notes, model_id, created_at
		FROM guidance_suggestions
		WHERE id = $1
	`, id).Scan(&s.ID, &s.VersionID, &s.TargetBlockID, &suggestionType, &s.OriginalContent,
		&s.SuggestedContent, &s.Rationale, &s.Confidence, &impact, &s.SourceChunks,
		&reviewStatus, &s.ReviewedBy, &s.ReviewedAt, &s.ReviewNotes, &s.ModelID, &s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("suggestion")
		}
		return nil, errors.NewInternalError("failed to get suggestion").WithCause(err)
	}
	s.Type = guidance.SuggestionType(suggestionType)
	s.Impact = guidance.ImpactLabel(impact)
	s.ReviewStatus = guidance.ReviewStatus(reviewStatus)

	rows, err := r.db.Query(ctx, `
		SELECT id, block_id, suggestion_id, source_chunk_id, relevance_score, context_text
		FROM guidance_citations
		WHERE suggestion_id = $1
	`, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to list citations").WithCause(err)
	}
	defer rows.Close()

	for rows.Next() {
		var c guidance.Citation
		if err := rows.Scan(&c.ID, &c.BlockID, &c.SuggestionID, &c.SourceChunkID, &c.RelevanceScore, &c.ContextText); err != nil {
			return nil, errors.NewInternalError("failed to scan citation").WithCause(err)
		}
		s.Citations = append(s.Citations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternalError("failed to read citations").WithCause(err)
	}
	return &s, nil
}

// UpdateSuggestion persists review decisions
func (r *SuggestionRepository) UpdateSuggestion(ctx context.Context, s *guidance.Suggestion) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE guidance_suggestions
		SET review_status = $2, reviewed_by = $3, reviewed_at = $4, review_notes = $5
		WHERE id = $1
	`, s.ID, string(s.ReviewStatus), s.ReviewedBy, s.ReviewedAt, s.ReviewNotes)
	if err != nil {
		return errors.NewInternalError("failed to update suggestion").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("suggestion")
	}
	return nil
}
