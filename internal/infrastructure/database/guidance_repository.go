package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/guidance"
)

// GuidanceRepository is the PostgreSQL store for guidance versions and their
// audit transitions. Status changes and transition rows commit in the same
// transaction; there is no code path that writes one without the other.
type GuidanceRepository struct {
	db *pgxpool.Pool
}

// NewGuidanceRepository creates a PostgreSQL guidance version repository
func NewGuidanceRepository(pool *Pool) *GuidanceRepository {
	return &GuidanceRepository{db: pool.DB()}
}

const versionColumns = `id, unified_requirement_id, version_number, content_blocks, status, stage,
	content_hash, word_count, row_count, lint_score, readability_score,
	created_by, created_at, reviewed_by, reviewed_at, approved_by, approved_at,
	published_by, published_at, scheduled_publish_at, archived_at`

// GetVersion retrieves a guidance version by ID
func (r *GuidanceRepository) GetVersion(ctx context.Context, id uuid.UUID) (*guidance.Version, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+versionColumns+`
		FROM guidance_versions
		WHERE id = $1
	`, id)
	return scanVersion(row)
}

// NextVersionNumber allocates max(existing)+1 for the requirement under an
// advisory lock. The unique (unified_requirement_id, version_number)
// constraint is the backstop should two allocations still race.
func (r *GuidanceRepository) NextVersionNumber(ctx context.Context, unifiedRequirementID uuid.UUID) (int, error) {
	var next int
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, unifiedRequirementID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(version_number), 0) + 1
			FROM guidance_versions
			WHERE unified_requirement_id = $1
		`, unifiedRequirementID).Scan(&next)
	})
	if err != nil {
		return 0, errors.NewInternalError("failed to allocate version number").WithCause(err)
	}
	return next, nil
}

// CreateVersion inserts a version row
func (r *GuidanceRepository) CreateVersion(ctx context.Context, v *guidance.Version) error {
	blocks, err := json.Marshal(v.Blocks)
	if err != nil {
		return errors.NewInternalError("failed to marshal content blocks").WithCause(err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO guidance_versions (`+versionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, v.ID, v.UnifiedRequirementID, v.VersionNumber, blocks, string(v.Status), string(v.Stage),
		v.ContentHash, v.WordCount, v.RowCount, v.LintScore, v.ReadabilityScore,
		v.CreatedBy, v.CreatedAt, v.ReviewedBy, v.ReviewedAt, v.ApprovedBy, v.ApprovedAt,
		v.PublishedBy, v.PublishedAt, v.ScheduledPublishAt, v.ArchivedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewConflictError("version number already allocated for this requirement")
		}
		if isForeignKeyViolation(err) {
			return errors.NewNotFoundError("unified requirement")
		}
		return errors.NewInternalError("failed to insert guidance version").WithCause(err)
	}
	return nil
}

// UpdateDraftContent persists content edits and scheduling changes that do
// not move the version's status
func (r *GuidanceRepository) UpdateDraftContent(ctx context.Context, v *guidance.Version) error {
	blocks, err := json.Marshal(v.Blocks)
	if err != nil {
		return errors.NewInternalError("failed to marshal content blocks").WithCause(err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE guidance_versions
		SET content_blocks = $2, content_hash = $3, word_count = $4, row_count = $5,
		    scheduled_publish_at = $6
		WHERE id = $1
	`, v.ID, blocks, v.ContentHash, v.WordCount, v.RowCount, v.ScheduledPublishAt)
	if err != nil {
		return errors.NewInternalError("failed to update guidance content").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("guidance version")
	}
	return nil
}

// SaveWithTransition updates the version row and appends the audit
// transition in one transaction
func (r *GuidanceRepository) SaveWithTransition(ctx context.Context, v *guidance.Version, tr *guidance.Transition) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := updateVersionState(ctx, tx, v); err != nil {
			return err
		}
		return insertTransition(ctx, tx, tr)
	})
}

// PublishWithTransition publishes v, archiving any prior published version of
// the same requirement. The advisory lock serializes concurrent publishes per
// requirement so the at-most-one-published invariant holds even under races;
// the partial unique index on published status is the backstop.
func (r *GuidanceRepository) PublishWithTransition(ctx context.Context, v *guidance.Version, tr *guidance.Transition) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, v.UnifiedRequirementID); err != nil {
			return errors.NewInternalError("failed to serialize publish").WithCause(err)
		}

		_, err := tx.Exec(ctx, `
			UPDATE guidance_versions
			SET status = 'archived', archived_at = NOW(), scheduled_publish_at = NULL
			WHERE unified_requirement_id = $1 AND status = 'published' AND id <> $2
		`, v.UnifiedRequirementID, v.ID)
		if err != nil {
			return errors.NewInternalError("failed to archive prior published version").WithCause(err)
		}

		if err := updateVersionState(ctx, tx, v); err != nil {
			return err
		}
		return insertTransition(ctx, tx, tr)
	})
}

// GetLatestPublished returns the requirement's single published version
func (r *GuidanceRepository) GetLatestPublished(ctx context.Context, unifiedRequirementID uuid.UUID) (*guidance.Version, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+versionColumns+`
		FROM guidance_versions
		WHERE unified_requirement_id = $1 AND status = 'published'
	`, unifiedRequirementID)
	return scanVersion(row)
}

// ListScheduledBefore returns approved versions whose scheduled publish time
// has passed
func (r *GuidanceRepository) ListScheduledBefore(ctx context.Context, cutoff time.Time) ([]*guidance.Version, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+versionColumns+`
		FROM guidance_versions
		WHERE status = 'approved' AND scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= $1
		ORDER BY scheduled_publish_at
	`, cutoff)
	if err != nil {
		return nil, errors.NewInternalError("failed to list scheduled versions").WithCause(err)
	}
	defer rows.Close()

	var result []*guidance.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// ListTransitions returns a version's audit trail in order of occurrence
func (r *GuidanceRepository) ListTransitions(ctx context.Context, versionID uuid.UUID) ([]*guidance.Transition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, version_id, actor_id, actor_role, from_status, to_status,
		       from_stage, to_stage, rationale, blocks_affected, suggestions_affected, occurred_at
		FROM guidance_transitions
		WHERE version_id = $1
		ORDER BY occurred_at
	`, versionID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list transitions").WithCause(err)
	}
	defer rows.Close()

	var result []*guidance.Transition
	for rows.Next() {
		var tr guidance.Transition
		var fromStatus, toStatus, fromStage, toStage string
		err := rows.Scan(&tr.ID, &tr.VersionID, &tr.ActorID, &tr.ActorRole,
			&fromStatus, &toStatus, &fromStage, &toStage,
			&tr.Rationale, &tr.BlocksAffected, &tr.SuggestionsAffected, &tr.OccurredAt)
		if err != nil {
			return nil, errors.NewInternalError("failed to scan transition").WithCause(err)
		}
		tr.FromStatus = guidance.Status(fromStatus)
		tr.ToStatus = guidance.Status(toStatus)
		tr.FromStage = guidance.Stage(fromStage)
		tr.ToStage = guidance.Stage(toStage)
		result = append(result, &tr)
	}
	return result, rows.Err()
}

func updateVersionState(ctx context.Context, tx pgx.Tx, v *guidance.Version) error {
	blocks, err := json.Marshal(v.Blocks)
	if err != nil {
		return errors.NewInternalError("failed to marshal content blocks").WithCause(err)
	}
	tag, err := tx.Exec(ctx, `
		UPDATE guidance_versions
		SET content_blocks = $2, status = $3, stage = $4, content_hash = $5,
		    word_count = $6, row_count = $7, lint_score = $8, readability_score = $9,
		    reviewed_by = $10, reviewed_at = $11, approved_by = $12, approved_at = $13,
		    published_by = $14, published_at = $15, scheduled_publish_at = $16, archived_at = $17
		WHERE id = $1
	`, v.ID, blocks, string(v.Status), string(v.Stage), v.ContentHash,
		v.WordCount, v.RowCount, v.LintScore, v.ReadabilityScore,
		v.ReviewedBy, v.ReviewedAt, v.ApprovedBy, v.ApprovedAt,
		v.PublishedBy, v.PublishedAt, v.ScheduledPublishAt, v.ArchivedAt)
	if err != nil {
		if isCheckViolation(err) {
			return errors.NewSequenceError("state change", "preceding actor-trail timestamp")
		}
		return errors.NewInternalError("failed to update guidance version").WithCause(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("guidance version")
	}
	return nil
}

func insertTransition(ctx context.Context, tx pgx.Tx, tr *guidance.Transition) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO guidance_transitions (
			id, version_id, actor_id, actor_role, from_status, to_status,
			from_stage, to_stage, rationale, blocks_affected, suggestions_affected, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, tr.ID, tr.VersionID, tr.ActorID, tr.ActorRole,
		string(tr.FromStatus), string(tr.ToStatus), string(tr.FromStage), string(tr.ToStage),
		tr.Rationale, tr.BlocksAffected, tr.SuggestionsAffected, tr.OccurredAt)
	if err != nil {
		return errors.NewInternalError("failed to insert transition").WithCause(err)
	}
	return nil
}

func scanVersion(row rowScanner) (*guidance.Version, error) {
	var v guidance.Version
	var blocks []byte
	var status, stage string
	err := row.Scan(&v.ID, &v.UnifiedRequirementID, &v.VersionNumber, &blocks, &status, &stage,
		&v.ContentHash, &v.WordCount, &v.RowCount, &v.LintScore, &v.ReadabilityScore,
		&v.CreatedBy, &v.CreatedAt, &v.ReviewedBy, &v.ReviewedAt, &v.ApprovedBy, &v.ApprovedAt,
		&v.PublishedBy, &v.PublishedAt, &v.ScheduledPublishAt, &v.ArchivedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewNotFoundError("guidance version")
		}
		return nil, errors.NewInternalError("failed to scan guidance version").WithCause(err)
	}
	if err := json.Unmarshal(blocks, &v.Blocks); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal content blocks").WithCause(err)
	}
	v.Status = guidance.Status(status)
	v.Stage = guidance.Stage(stage)
	return &v, nil
}
