package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/seorec/internal/model"
	"github.com/roach88/seorec/internal/persist"
)

// ErrInvalidStatus is returned for a status outside the known values.
var ErrInvalidStatus = errors.New("invalid status")

// SaveRecommendations replaces the recommendations of analysisID on a pinned
// connection with a ConnCoordinator. See persist.SaveRecommendations.
func (s *Store) SaveRecommendations(ctx context.Context, analysisID int64, payload model.Payload, opts ...persist.Option) (int, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	all := []persist.Option{persist.WithLogger(s.logger)}
	if s.schemaGuard {
		all = append(all, persist.WithSchemaVersionGuard(CurrentSchemaVersion))
	}
	all = append(all, opts...)

	return persist.SaveRecommendations(ctx, conn, analysisID, payload, NewConnCoordinator(conn), all...)
}

// GetRecommendations returns the recommendation graph of analysisID, or an
// empty slice on any failure. See persist.GetRecommendations.
func (s *Store) GetRecommendations(ctx context.Context, analysisID int64, opts ...persist.Option) []model.Recommendation {
	all := append([]persist.Option{persist.WithLogger(s.logger)}, opts...)
	return persist.GetRecommendations(ctx, s.db, analysisID, all...)
}

// UpdateRecommendationStatus sets the status of one recommendation.
// Returns ErrInvalidStatus for unknown values and ErrNotFound for unknown ids.
func (s *Store) UpdateRecommendationStatus(ctx context.Context, id int64, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE recommendations SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("recommendation status updated", "id", id, "status", string(status))
	return nil
}
