package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"workwise/internal/domain"
	"workwise/internal/port"
)

type gostRepo struct {
	db *sqlx.DB
}

// NewGOSTRepo creates a new PostgreSQL-backed GOSTRepository.
func NewGOSTRepo(db *sqlx.DB) port.GOSTRepository {
	return &gostRepo{db: db}
}

func (r *gostRepo) List(ctx context.Context) ([]domain.GOST, error) {
	var gosts []domain.GOST
	err := r.db.SelectContext(ctx, &gosts, "SELECT * FROM gosts ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("gostRepo.List: %w", err)
	}
	return gosts, nil
}

func (r *gostRepo) GetByKind(ctx context.Context, kind domain.AnalysisKind) (*domain.GOST, error) {
	var g domain.GOST
	err := r.db.GetContext(ctx, &g, "SELECT * FROM gosts WHERE kind = $1", kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGOSTNotFound
		}
		return nil, fmt.Errorf("gostRepo.GetByKind: %w", err)
	}
	return &g, nil
}
