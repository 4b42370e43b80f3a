package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/roach88/seorec/internal/model"
	"github.com/roach88/seorec/internal/schema"
)

// SaveRecommendations replaces every recommendation of analysisID with
// payload.Recommendations and returns how many were written.
//
// Order of operations:
//
//  1. connectivity probe (no transaction on failure)
//  2. empty payload returns 0 without starting a transaction
//  3. the analysis must exist
//  4. the whole payload is validated; all violations are reported together
//  5. tx.BeginTransaction
//  6. delete the previous set, including actions, examples and resources
//  7. insert each recommendation and its nested entities
//  8. tx.CommitTransaction
//
// Any failure in steps 6-8 invokes the rollback returned by step 5 before
// returning a KindTransaction error. Every returned error is an *Error.
func SaveRecommendations(ctx context.Context, db DB, analysisID int64, payload model.Payload, tx TxCoordinator, opts ...Option) (int, error) {
	o := buildOptions(opts)
	log := o.logger.With("analysis_id", analysisID)

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		log.Error("connection test failed", "error", err)
		return 0, connectivityError(err)
	}

	if len(payload.Recommendations) == 0 {
		log.Debug("empty recommendation set, nothing to save")
		return 0, nil
	}

	exists, err := analysisExists(ctx, db, analysisID)
	if err != nil {
		return 0, connectivityError(err)
	}
	if !exists {
		return 0, missingAnalysisError(analysisID)
	}

	recs := make([]model.Recommendation, len(payload.Recommendations))
	for i, rec := range payload.Recommendations {
		recs[i] = model.Normalize(rec)
	}
	if res := schema.Validate(recs); !res.Valid() {
		log.Warn("recommendations failed validation", "violations", len(res.Violations))
		return 0, validationError(res.Messages(), res.Error())
	}

	if o.minSchemaVersion > 0 {
		var version int
		if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
			return 0, connectivityError(err)
		}
		if version < o.minSchemaVersion {
			return 0, schemaDriftError(version, o.minSchemaVersion)
		}
	}

	rollback, err := tx.BeginTransaction(ctx)
	if err != nil {
		log.Error("begin transaction failed", "error", err)
		return 0, transactionError(fmt.Errorf("begin transaction: %w", err))
	}

	batchID := o.ids.Generate()
	if err := replaceAll(ctx, db, analysisID, recs, batchID, o.now()); err != nil {
		return 0, abort(log, rollback, err)
	}
	if err := tx.CommitTransaction(ctx); err != nil {
		return 0, abort(log, rollback, fmt.Errorf("commit transaction: %w", err))
	}

	log.Info("recommendations saved", "count", len(recs), "batch_id", batchID)
	return len(recs), nil
}

// abort rolls back and wraps cause. A rollback failure is logged, not returned,
// so the caller sees the original cause.
func abort(log *slog.Logger, rollback func() error, cause error) error {
	if rollback != nil {
		if rbErr := rollback(); rbErr != nil {
			log.Error("rollback failed", "error", rbErr, "cause", cause)
		}
	}
	log.Error("save aborted", "error", cause)
	return transactionError(cause)
}

func analysisExists(ctx context.Context, db DB, analysisID int64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM analyses WHERE id = ?", analysisID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check analysis %d: %w", analysisID, err)
	}
	return true, nil
}

// replaceAll runs inside the caller's transaction.
func replaceAll(ctx context.Context, db DB, analysisID int64, recs []model.Recommendation, batchID string, now time.Time) error {
	if err := deleteForAnalysis(ctx, db, analysisID); err != nil {
		return err
	}
	for i, rec := range recs {
		if err := insertRecommendation(ctx, db, analysisID, rec, batchID, now); err != nil {
			return fmt.Errorf("recommendation %d (%s): %w", i, rec.Title, err)
		}
	}
	return nil
}

func deleteForAnalysis(ctx context.Context, db DB, analysisID int64) error {
	const owned = "SELECT id FROM recommendations WHERE analysis_id = ?"
	statements := []struct {
		name  string
		query string
	}{
		{"actions", "DELETE FROM recommendation_actions WHERE recommendation_id IN (" + owned + ")"},
		{"examples", "DELETE FROM recommendation_examples WHERE recommendation_id IN (" + owned + ")"},
		{"resources", "DELETE FROM recommendation_resources WHERE recommendation_id IN (" + owned + ")"},
		{"recommendations", "DELETE FROM recommendations WHERE analysis_id = ?"},
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt.query, analysisID); err != nil {
			return fmt.Errorf("delete %s: %w", stmt.name, err)
		}
	}
	return nil
}

func insertRecommendation(ctx context.Context, db DB, analysisID int64, rec model.Recommendation, batchID string, now time.Time) error {
	status := rec.Status
	if status == "" {
		status = model.DefaultStatus
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO recommendations
		(analysis_id, rec_id, rule_id, title, priority, category, description, effort,
		 estimated_time, score_increase, percentage_increase, why_explanation, status,
		 batch_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		analysisID,
		rec.RecID,
		nullString(rec.RuleID),
		rec.Title,
		string(rec.Priority),
		rec.Category,
		rec.Description,
		nullString(string(rec.Effort)),
		rec.EstimatedTime,
		rec.ScoreIncrease,
		rec.PercentageIncrease,
		rec.WhyExplanation,
		string(status),
		batchID,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	recID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	for _, a := range orderedActions(rec.Actions) {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO recommendation_actions (recommendation_id, step, action_text, action_type)
			VALUES (?, ?, ?, ?)
		`, recID, a.Step, a.ActionText, a.ActionType); err != nil {
			return fmt.Errorf("insert action step %d: %w", a.Step, err)
		}
	}

	if !rec.Example.IsEmpty() {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO recommendation_examples (recommendation_id, before_example, after_example)
			VALUES (?, ?, ?)
		`, recID, nullString(rec.Example.BeforeExample), nullString(rec.Example.AfterExample)); err != nil {
			return fmt.Errorf("insert example: %w", err)
		}
	}

	for _, r := range rec.Resources {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO recommendation_resources (recommendation_id, title, url)
			VALUES (?, ?, ?)
		`, recID, r.Title, r.URL); err != nil {
			return fmt.Errorf("insert resource %q: %w", r.URL, err)
		}
	}

	return nil
}

// orderedActions assigns positional steps to actions without one (Step 0)
// and returns a copy sorted by step. Ties keep input order.
func orderedActions(actions []model.Action) []model.Action {
	out := make([]model.Action, len(actions))
	for i, a := range actions {
		if a.Step == 0 {
			a.Step = i + 1
		}
		out[i] = a
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}
