package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/glowguide/internal/domain/analysis"
)

type AnalysisRepository struct{ db *sql.DB }

var _ domain.Repository = (*AnalysisRepository)(nil)

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Save stores analysis_data in a JSON column.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analyses (id, user_id, image_url, analysis_data, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?);`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.UserID, a.ImageURL, string(a.Data), a.CreatedAt, a.ExpiresAt,
	)
	return err
}

// Get by ID scoped to the owner.
func (r *AnalysisRepository) Get(ctx context.Context, userID string, id domain.ID) (*domain.Analysis, error) {
	const q = `
SELECT id, user_id, image_url, analysis_data, created_at, expires_at
FROM analyses
WHERE user_id = ? AND id = ?
LIMIT 1;`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

// ListByUser pages newest first. Count and page run as two statements, so
// total may drift by a row under concurrent claims.
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*domain.Analysis, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analyses WHERE user_id = ?`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Analysis{}, 0, nil
	}

	const q = `
SELECT id, user_id, image_url, analysis_data, created_at, expires_at
FROM analyses
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*domain.Analysis, 0, pageSize)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var data []byte
	if err := s.Scan(&a.ID, &a.UserID, &a.ImageURL, &data, &a.CreatedAt, &a.ExpiresAt); err != nil {
		return nil, err
	}
	a.Data = data
	return &a, nil
}
