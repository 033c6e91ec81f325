package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/service/mapper"
)

// ReconcileRepository persists category reconciliation findings. Entries are
// append-only; review tooling reads them by run.
type ReconcileRepository struct {
	db *pgxpool.Pool
}

// NewReconcileRepository creates a PostgreSQL reconcile entry store
func NewReconcileRepository(pool *Pool) *ReconcileRepository {
	return &ReconcileRepository{db: pool.DB()}
}

// SaveEntry appends one reconciliation finding
func (r *ReconcileRepository) SaveEntry(ctx context.Context, entry *mapper.ReconcileEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO category_reconcile_entries (id, run_id, requirement_id, kind, text_category, fk_category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.RunID, entry.RequirementID, string(entry.Kind),
		entry.TextCategory, entry.FKCategory, entry.CreatedAt)
	if err != nil {
		return errors.NewInternalError("failed to insert reconcile entry").WithCause(err)
	}
	return nil
}
