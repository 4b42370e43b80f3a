package persist

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/seorec/internal/model"
)

const recommendationColumns = `id, analysis_id, rec_id, rule_id, title, priority, category, description,
	effort, estimated_time, score_increase, percentage_increase, why_explanation,
	status, batch_id, created_at`

// priorityOrder renders a CASE expression ranking priorities critical first.
// Unknown values sort last.
func priorityOrder(column string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for rank, p := range model.AllPriorities() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, rank)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(model.AllPriorities()))
	return b.String()
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// nullString maps "" to SQL NULL so optional columns stay NULL rather than empty.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scanRecommendation scans one row selected with recommendationColumns.
// Nested collections are initialized empty (never nil).
func scanRecommendation(rows *sql.Rows) (model.Recommendation, error) {
	var rec model.Recommendation
	var recID, ruleID, category, description, effort, estimatedTime, why, status, batchID sql.NullString
	var priority string
	var scoreIncrease, percentageIncrease sql.NullFloat64
	var createdAt sql.NullTime

	if err := rows.Scan(
		&rec.ID, &rec.AnalysisID, &recID, &ruleID, &rec.Title, &priority, &category, &description,
		&effort, &estimatedTime, &scoreIncrease, &percentageIncrease, &why,
		&status, &batchID, &createdAt,
	); err != nil {
		return model.Recommendation{}, fmt.Errorf("scan recommendation: %w", err)
	}

	rec.RecID = recID.String
	rec.RuleID = ruleID.String
	rec.Priority = model.Priority(priority)
	rec.Category = category.String
	rec.Description = description.String
	rec.Effort = model.Effort(effort.String)
	rec.EstimatedTime = estimatedTime.String
	rec.ScoreIncrease = scoreIncrease.Float64
	rec.PercentageIncrease = percentageIncrease.Float64
	rec.WhyExplanation = why.String
	rec.Status = model.Status(status.String)
	if rec.Status == "" {
		rec.Status = model.DefaultStatus
	}
	rec.BatchID = batchID.String
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time.UTC()
	}
	rec.Actions = []model.Action{}
	rec.Resources = []model.Resource{}
	return rec, nil
}
