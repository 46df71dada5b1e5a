package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/glowguide/internal/domain/analysis"
)

var analysisCols = []string{"id", "user_id", "image_url", "analysis_data", "created_at", "expires_at"}

func TestAnalysisRepositorySave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	a := &domain.Analysis{
		ID:        "8f7d1c2e-0000-4000-8000-000000000001",
		UserID:    "user-1",
		ImageURL:  "http://minio/analysis-images/user-1/1.jpg",
		Data:      json.RawMessage(`{"perceived_age":33}`),
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analyses")).
		WithArgs(string(a.ID), a.UserID, a.ImageURL, `{"perceived_age":33}`, a.CreatedAt, a.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewAnalysisRepository(db).Save(context.Background(), a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAnalysisRepository(db)

	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM analyses")).
		WithArgs("user-1", "a-1").
		WillReturnRows(sqlmock.NewRows(analysisCols).
			AddRow("a-1", "user-1", "http://img", []byte(`{"perceived_age":41}`), now, now.Add(time.Hour)))

	got, err := repo.Get(context.Background(), "user-1", "a-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("a-1"), got.ID)
	assert.JSONEq(t, `{"perceived_age":41}`, string(got.Data))
	assert.Equal(t, now.Add(time.Hour), got.ExpiresAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM analyses")).
		WithArgs("user-2", "a-1").
		WillReturnRows(sqlmock.NewRows(analysisCols))
	_, err = repo.Get(context.Background(), "user-2", "a-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAnalysisRepository(db)

	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM analyses")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WithArgs("user-1", 2, 2).
		WillReturnRows(sqlmock.NewRows(analysisCols).
			AddRow("a-1", "user-1", "http://img/1", []byte(`{}`), now, now))

	rows, total, err := repo.ListByUser(context.Background(), "user-1", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "http://img/1", rows[0].ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryListByUserEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rows, total, err := NewAnalysisRepository(db).ListByUser(context.Background(), "nobody", 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepositoryPropagatesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT COUNT").WillReturnError(boom)
	_, _, err = NewAnalysisRepository(db).ListByUser(context.Background(), "u", 1, 20)
	assert.ErrorIs(t, err, boom)
}
