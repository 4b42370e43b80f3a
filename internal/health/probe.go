// Package health runs cheap read-only checks that decide whether the store is
// safe to query.
//
// Checks run in a fixed order and short-circuit on the first failure:
//
//  1. connectivity   - SELECT 1
//  2. integrity      - PRAGMA integrity_check returns "ok"
//  3. schema_version - PRAGMA user_version (informational, not gated)
//  4. table          - the recommendations table is in sqlite_master
//  5. columns        - the minimum required columns exist
//
// Probe never returns an error; the outcome is carried by Report.
package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Check names one probe step.
type Check string

// Probe steps, in execution order.
const (
	CheckConnectivity  Check = "connectivity"
	CheckIntegrity     Check = "integrity"
	CheckSchemaVersion Check = "schema_version"
	CheckTable         Check = "table"
	CheckColumns       Check = "columns"
)

// RecommendationsTable is the table the reader depends on.
const RecommendationsTable = "recommendations"

// RequiredColumns are the columns that must exist on RecommendationsTable.
var RequiredColumns = []string{"id", "analysis_id", "title", "priority"}

// Queryer is the read-only subset of *sql.DB, *sql.Conn and *sql.Tx the probe needs.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Report is the outcome of a probe.
type Report struct {
	Healthy        bool     `json:"healthy"`
	Passed         []Check  `json:"passed"`
	FailedCheck    Check    `json:"failed_check,omitempty"`
	Err            error    `json:"-"`
	SchemaVersion  int      `json:"schema_version"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// Error describes the failed check, or returns nil for a healthy report.
func (r Report) Error() error {
	if r.Healthy {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("health check %s failed: %w", r.FailedCheck, r.Err)
	}
	return fmt.Errorf("health check %s failed", r.FailedCheck)
}

// Probe runs all checks against q.
func Probe(ctx context.Context, q Queryer) Report {
	rep := Report{Passed: []Check{}}

	fail := func(c Check, err error) Report {
		rep.FailedCheck = c
		rep.Err = err
		return rep
	}

	var one int
	if err := q.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fail(CheckConnectivity, err)
	}
	rep.Passed = append(rep.Passed, CheckConnectivity)

	var integrity string
	if err := q.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fail(CheckIntegrity, err)
	}
	if integrity != "ok" {
		return fail(CheckIntegrity, fmt.Errorf("integrity_check returned %q", integrity))
	}
	rep.Passed = append(rep.Passed, CheckIntegrity)

	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&rep.SchemaVersion); err != nil {
		return fail(CheckSchemaVersion, err)
	}
	rep.Passed = append(rep.Passed, CheckSchemaVersion)

	var name string
	err := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		RecommendationsTable,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return fail(CheckTable, fmt.Errorf("table %s not found", RecommendationsTable))
	}
	if err != nil {
		return fail(CheckTable, err)
	}
	rep.Passed = append(rep.Passed, CheckTable)

	missing, err := missingColumns(ctx, q)
	if err != nil {
		return fail(CheckColumns, err)
	}
	if len(missing) > 0 {
		rep.MissingColumns = missing
		return fail(CheckColumns, fmt.Errorf("table %s is missing columns: %s",
			RecommendationsTable, strings.Join(missing, ", ")))
	}
	rep.Passed = append(rep.Passed, CheckColumns)

	rep.Healthy = true
	return rep
}

func missingColumns(ctx context.Context, q Queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", RecommendationsTable)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		present[col] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing, nil
}
