package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/seorec/internal/health"
	"github.com/roach88/seorec/internal/model"
)

// GetRecommendations returns the reconstructed recommendation graph of
// analysisID, ordered critical → high → medium → low and by creation order
// within a priority.
//
// It never fails: a non-positive id, an unhealthy store, an unknown analysis
// or any query error resolves to an empty, non-nil slice after logging.
func GetRecommendations(ctx context.Context, db DB, analysisID int64, opts ...Option) []model.Recommendation {
	o := buildOptions(opts)
	log := o.logger.With("analysis_id", analysisID)

	if analysisID <= 0 {
		log.Debug("invalid analysis id")
		return []model.Recommendation{}
	}

	if rep := health.Probe(ctx, db); !rep.Healthy {
		log.Warn("store unhealthy, returning no recommendations",
			"check", string(rep.FailedCheck), "error", rep.Err)
		return []model.Recommendation{}
	}

	exists, err := analysisExists(ctx, db, analysisID)
	if err != nil {
		log.Warn("analysis lookup failed", "error", err)
		return []model.Recommendation{}
	}
	if !exists {
		log.Debug("analysis not found")
		return []model.Recommendation{}
	}

	recs, err := loadGraph(ctx, db, analysisID)
	if err != nil {
		log.Warn("recommendation read failed", "error", err)
		return []model.Recommendation{}
	}
	return recs
}

// GetRecommendationsForInput is GetRecommendations for loosely typed ids as
// they arrive from a transport (JSON numbers, strings). Anything that is not
// a positive integer yields an empty slice without touching the store.
func GetRecommendationsForInput(ctx context.Context, db DB, rawID any, opts ...Option) []model.Recommendation {
	id, ok := ParseAnalysisID(rawID)
	if !ok {
		buildOptions(opts).logger.Debug("invalid analysis id", "raw", fmt.Sprint(rawID))
		return []model.Recommendation{}
	}
	return GetRecommendations(ctx, db, id, opts...)
}

// ParseAnalysisID converts v to a positive integral analysis id.
// Fractional, non-positive, non-finite and non-numeric values are rejected.
func ParseAnalysisID(v any) (int64, bool) {
	var id int64
	switch n := v.(type) {
	case int:
		id = int64(n)
	case int32:
		id = int64(n)
	case int64:
		id = n
	case uint32:
		id = int64(n)
	case float32:
		return floatID(float64(n))
	case float64:
		return floatID(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			id = i
		} else if f, err := n.Float64(); err == nil {
			return floatID(f)
		} else {
			return 0, false
		}
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		id = i
	default:
		return 0, false
	}
	if id <= 0 {
		return 0, false
	}
	return id, true
}

func floatID(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f <= 0 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// loadGraph reads the flat rows, then actions, examples and resources in three
// separate lookups. A single join across three one-to-many children would
// multiply rows.
func loadGraph(ctx context.Context, db DB, analysisID int64) ([]model.Recommendation, error) {
	recs, err := readRecommendationRows(ctx, db, analysisID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return recs, nil
	}

	ids := make([]int64, len(recs))
	index := make(map[int64]int, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
		index[rec.ID] = i
	}

	actions, err := readActions(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	examples, err := readExamples(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	resources, err := readResources(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	for id, i := range index {
		if a, ok := actions[id]; ok {
			recs[i].Actions = a
		}
		if ex, ok := examples[id]; ok {
			recs[i].Example = ex
		}
		if r, ok := resources[id]; ok {
			recs[i].Resources = r
		}
	}
	return recs, nil
}

func readRecommendationRows(ctx context.Context, db DB, analysisID int64) ([]model.Recommendation, error) {
	query := "SELECT " + recommendationColumns + `
		FROM recommendations
		WHERE analysis_id = ?
		ORDER BY ` + priorityOrder("priority") + `, created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	recs := []model.Recommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return recs, nil
}

func readActions(ctx context.Context, db DB, ids []int64) (map[int64][]model.Action, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT recommendation_id, step, action_text, action_type
		FROM recommendation_actions
		WHERE recommendation_id IN (`+placeholders(len(ids))+`)
		ORDER BY recommendation_id ASC, step ASC, id ASC
	`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]model.Action)
	for rows.Next() {
		var owner int64
		var a model.Action
		var actionType *string
		if err := rows.Scan(&owner, &a.Step, &a.ActionText, &actionType); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if actionType != nil {
			a.ActionType = *actionType
		}
		out[owner] = append(out[owner], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return out, nil
}

func readExamples(ctx context.Context, db DB, ids []int64) (map[int64]*model.Example, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT recommendation_id, before_example, after_example
		FROM recommendation_examples
		WHERE recommendation_id IN (`+placeholders(len(ids))+`)
		ORDER BY id ASC
	`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query examples: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*model.Example)
	for rows.Next() {
		var owner int64
		var before, after *string
		if err := rows.Scan(&owner, &before, &after); err != nil {
			return nil, fmt.Errorf("scan example: %w", err)
		}
		if _, seen := out[owner]; seen {
			continue
		}
		ex := &model.Example{}
		if before != nil {
			ex.BeforeExample = *before
		}
		if after != nil {
			ex.AfterExample = *after
		}
		out[owner] = ex
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate examples: %w", err)
	}
	return out, nil
}

func readResources(ctx context.Context, db DB, ids []int64) (map[int64][]model.Resource, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT recommendation_id, title, url
		FROM recommendation_resources
		WHERE recommendation_id IN (`+placeholders(len(ids))+`)
		ORDER BY id ASC
	`, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]model.Resource)
	for rows.Next() {
		var owner int64
		var r model.Resource
		var title *string
		if err := rows.Scan(&owner, &title, &r.URL); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		if title != nil {
			r.Title = *title
		}
		out[owner] = append(out[owner], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return out, nil
}
