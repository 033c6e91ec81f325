package mapper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/metrics"
)

// ReconcileEntry is one finding of a reconciliation run. Disagreements are
// queued for human review: auto-correction of drifted categories caused
// silent data loss in the past.
type ReconcileEntry struct {
	ID            uuid.UUID `json:"id"`
	RunID         uuid.UUID `json:"run_id"`
	RequirementID uuid.UUID `json:"requirement_id"`
	Kind          EntryKind `json:"kind"`
	TextCategory  string    `json:"text_category"`
	FKCategory    string    `json:"fk_category"`
	CreatedAt     time.Time `json:"created_at"`
}

// EntryKind classifies a reconciliation finding
type EntryKind string

const (
	// EntryBackfilled records a missing FK filled in from an exact name match
	EntryBackfilled EntryKind = "backfilled"
	// EntryDisagreement records a text/FK mismatch needing human review
	EntryDisagreement EntryKind = "disagreement"
	// EntryUnmatched records text that names no known category
	EntryUnmatched EntryKind = "unmatched"
)

// ReconcileReport summarizes one BulkReconcile run
type ReconcileReport struct {
	RunID         uuid.UUID        `json:"run_id"`
	StartedAt     time.Time        `json:"started_at"`
	CompletedAt   time.Time        `json:"completed_at"`
	Scanned       int              `json:"scanned"`
	Backfilled    int              `json:"backfilled"`
	Disagreements []ReconcileEntry `json:"disagreements"`
	Unmatched     []ReconcileEntry `json:"unmatched"`
}

// BulkReconcile walks the library in two passes. Requirements missing a
// category FK get name-based backfill against the unified taxonomy; rows
// whose text and FK-resolved names disagree produce report entries only.
func (s *service) BulkReconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
	logger := s.logger.With(zap.String("run_id", report.RunID.String()))

	categories, err := s.unifiedRepo.ListCategories(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to list categories").WithCause(err)
	}

	// Pass 1: backfill missing FKs from the text column
	missing, err := s.libraryRepo.ListMissingCategory(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to list requirements missing a category").WithCause(err)
	}
	for _, req := range missing {
		report.Scanned++

		var matched bool
		for _, category := range categories {
			if !category.MatchesName(req.Category) {
				continue
			}
			if err := s.libraryRepo.SetCategory(ctx, req.ID, category.ID, category.Name); err != nil {
				return nil, errors.NewInternalError("failed to backfill category").WithCause(err)
			}
			entry := &ReconcileEntry{
				ID:            uuid.New(),
				RunID:         report.RunID,
				RequirementID: req.ID,
				Kind:          EntryBackfilled,
				TextCategory:  req.Category,
				FKCategory:    category.Name,
				CreatedAt:     time.Now(),
			}
			if err := s.reporter.SaveEntry(ctx, entry); err != nil {
				return nil, errors.NewInternalError("failed to record backfill").WithCause(err)
			}
			report.Backfilled++
			metrics.ReconcileBackfills.Inc()
			matched = true
			break
		}

		if !matched {
			entry := ReconcileEntry{
				ID:            uuid.New(),
				RunID:         report.RunID,
				RequirementID: req.ID,
				Kind:          EntryUnmatched,
				TextCategory:  req.Category,
				CreatedAt:     time.Now(),
			}
			if err := s.reporter.SaveEntry(ctx, &entry); err != nil {
				return nil, errors.NewInternalError("failed to record unmatched requirement").WithCause(err)
			}
			report.Unmatched = append(report.Unmatched, entry)
		}
	}

	// Pass 2: report drift between the text column and the FK
	withCategory, err := s.libraryRepo.ListWithCategory(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to list categorized requirements").WithCause(err)
	}
	for _, req := range withCategory {
		report.Scanned++

		category, err := s.unifiedRepo.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if req.Category == "" || req.CategoryConsistent(category.Name) {
			continue
		}

		entry := ReconcileEntry{
			ID:            uuid.New(),
			RunID:         report.RunID,
			RequirementID: req.ID,
			Kind:          EntryDisagreement,
			TextCategory:  req.Category,
			FKCategory:    category.Name,
			CreatedAt:     time.Now(),
		}
		if err := s.reporter.SaveEntry(ctx, &entry); err != nil {
			return nil, errors.NewInternalError("failed to record disagreement").WithCause(err)
		}
		report.Disagreements = append(report.Disagreements, entry)
		metrics.ReconcileDisagreements.Inc()
	}

	report.CompletedAt = time.Now()
	logger.Info("bulk reconcile completed",
		zap.Int("scanned", report.Scanned),
		zap.Int("backfilled", report.Backfilled),
		zap.Int("disagreements", len(report.Disagreements)),
		zap.Int("unmatched", len(report.Unmatched)),
	)
	return report, nil
}
