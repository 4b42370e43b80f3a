package harness

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/seorec/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s analysis=%s outcome=%s\n", i+1, event.Op, event.Analysis, event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertRowCount:
			err = assertRowCount(result.Trace, a, actx)
		case AssertSingleBatch:
			err = assertSingleBatch(result.Trace, a, actx)
		case AssertStatus:
			err = assertStatus(result.Trace, a, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertRowCount checks the number of rows in a table.
func assertRowCount(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	if !validIdentifier.MatchString(a.Table) {
		return fmt.Errorf("invalid table name %q", a.Table)
	}

	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", a.Table)
	if err := actx.Store.DB().QueryRowContext(actx.Ctx, query).Scan(&n); err != nil {
		return fmt.Errorf("row_count %s: %w", a.Table, err)
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s", a.Count, a.Table),
			Actual:   fmt.Sprintf("%d rows", n),
			Trace:    trace,
		}
	}
	return nil
}

// assertSingleBatch checks that one save wrote every recommendation of an analysis.
func assertSingleBatch(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	batches := make(map[string]bool)
	for _, rec := range actx.Store.GetRecommendations(actx.Ctx, a.Analysis) {
		batches[rec.BatchID] = true
	}
	if len(batches) != 1 || batches[""] {
		ids := make([]string, 0, len(batches))
		for id := range batches {
			ids = append(ids, fmt.Sprintf("%q", id))
		}
		return &AssertionError{
			Type:     AssertSingleBatch,
			Expected: fmt.Sprintf("one non-empty batch id for analysis %d", a.Analysis),
			Actual:   fmt.Sprintf("batch ids [%s]", strings.Join(ids, ", ")),
			Trace:    trace,
		}
	}
	return nil
}

// assertStatus checks the stored status of one recommendation.
func assertStatus(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	for _, rec := range actx.Store.GetRecommendations(actx.Ctx, a.Analysis) {
		if rec.RecID != a.RecID {
			continue
		}
		if string(rec.Status) != a.Status {
			return &AssertionError{
				Type:     AssertStatus,
				Expected: fmt.Sprintf("%s status %s", a.RecID, a.Status),
				Actual:   string(rec.Status),
				Trace:    trace,
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertStatus,
		Expected: fmt.Sprintf("%s in analysis %d", a.RecID, a.Analysis),
		Actual:   "not found",
		Trace:    trace,
	}
}
