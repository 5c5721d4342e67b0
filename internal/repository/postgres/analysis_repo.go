package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"workwise/internal/domain"
	"workwise/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, a *domain.Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `INSERT INTO analyses (id, document_id, kind, mode, status, verdict,
		findings, recommendations, missing_fields, failure_kind, failure_cause,
		model, latency_ms, attempts, force_images, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.DocumentID, a.Kind, a.Mode, a.Status, a.Verdict,
		a.Findings, a.Recommendations, a.MissingFields, a.FailureKind, a.FailureCause,
		a.Model, a.LatencyMS, a.Attempts, a.ForceImages, a.CreatedAt, a.UpdatedAt, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, analysisID uuid.UUID) (*domain.Analysis, error) {
	var a domain.Analysis
	err := r.db.GetContext(ctx, &a, "SELECT * FROM analyses WHERE id = $1", analysisID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}
	return &a, nil
}

func (r *analysisRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.Analysis, error) {
	var analyses []domain.Analysis
	err := r.db.SelectContext(ctx, &analyses,
		"SELECT * FROM analyses WHERE document_id = $1 ORDER BY created_at DESC", docID)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ListByDocument: %w", err)
	}
	return analyses, nil
}

// ClaimQueued atomically flips up to limit queued analyses to running and
// returns them. SKIP LOCKED keeps concurrent workers from claiming the same
// row.
func (r *analysisRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Analysis, error) {
	var analyses []domain.Analysis
	err := r.db.SelectContext(ctx, &analyses, `
		UPDATE analyses SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM analyses
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		domain.AnalysisStatusRunning, domain.AnalysisStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ClaimQueued: %w", err)
	}
	return analyses, nil
}

func (r *analysisRepo) Update(ctx context.Context, a *domain.Analysis) error {
	a.UpdatedAt = time.Now().UTC()
	query := `UPDATE analyses SET mode = $1, status = $2, verdict = $3, findings = $4,
		recommendations = $5, missing_fields = $6, failure_kind = $7, failure_cause = $8,
		model = $9, latency_ms = $10, attempts = $11, updated_at = $12, completed_at = $13
		WHERE id = $14`
	result, err := r.db.ExecContext(ctx, query,
		a.Mode, a.Status, a.Verdict, a.Findings, a.Recommendations, a.MissingFields,
		a.FailureKind, a.FailureCause, a.Model, a.LatencyMS, a.Attempts,
		a.UpdatedAt, a.CompletedAt, a.ID)
	if err != nil {
		return fmt.Errorf("analysisRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAnalysisNotFound
	}
	return nil
}
