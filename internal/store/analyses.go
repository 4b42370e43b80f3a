package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Analysis is the parent unit of work recommendations belong to.
type Analysis struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAnalysis inserts an analysis row and returns its id.
func (s *Store) CreateAnalysis(ctx context.Context, url string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (url, created_at) VALUES (?, ?)`,
		url, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("create analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create analysis: last insert id: %w", err)
	}
	return id, nil
}

// ReadAnalysis retrieves a single analysis by id.
// Returns ErrNotFound if it does not exist.
func (s *Store) ReadAnalysis(ctx context.Context, id int64) (Analysis, error) {
	var a Analysis
	err := s.db.QueryRowContext(ctx,
		`SELECT id, url, created_at FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.URL, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	if err != nil {
		return Analysis{}, fmt.Errorf("read analysis: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

// AnalysisExists reports whether an analysis with the given id exists.
func (s *Store) AnalysisExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.ReadAnalysis(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
