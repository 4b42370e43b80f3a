package harness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/seorec/internal/model"
	"github.com/roach88/seorec/internal/persist"
	"github.com/roach88/seorec/internal/store"
	"github.com/roach88/seorec/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and batch ids.
type Harness struct {
	store  *store.Store
	clock  *testutil.StepClock
	ids    *testutil.SequenceBatchGenerator
	logger *slog.Logger
	seq    int64
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh SQLite file for isolation.
//
// Execution flow:
// 1. Create a fresh database in a temp directory
// 2. Create the scenario's analyses
// 3. Execute flow steps with expect validation
// 4. Capture the final graph of every analysis
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	if scenario == nil {
		return nil, errors.New("nil scenario")
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	dir, err := os.MkdirTemp("", "seorec-harness-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	st, err := store.Open(filepath.Join(dir, "scenario.db"), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewStepClock(testutil.DefaultEpoch, 0),
		ids:    testutil.NewSequenceBatchGenerator(scenario.BatchPrefix),
		logger: logger,
	}

	ctx := context.Background()

	analyses := make([]int64, 0, len(scenario.Analyses))
	for i, url := range scenario.Analyses {
		id, err := st.CreateAnalysis(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to create analysis %d: %w", i, err)
		}
		analyses = append(analyses, id)
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("flow step %d: %w", i, err)
		}
	}

	for _, id := range analyses {
		result.State[strconv.FormatInt(id, 10)] = stateRows(st.GetRecommendations(ctx, id))
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) options() []persist.Option {
	return []persist.Option{
		persist.WithLogger(h.logger),
		persist.WithIDGenerator(h.ids),
		persist.WithClock(h.clock.Now),
		persist.WithSchemaVersionGuard(store.CurrentSchemaVersion),
	}
}

// executeStep runs one flow step, records it in the trace and checks its
// expect clause. Returned errors abort the scenario; expectation mismatches
// are recorded on result instead.
func (h *Harness) executeStep(ctx context.Context, index int, step FlowStep, result *Result) error {
	h.seq++
	event := TraceEvent{
		Seq:      h.seq,
		Op:       step.Op,
		Analysis: fmt.Sprint(step.Analysis),
		Outcome:  OutcomeOK,
	}

	switch step.Op {
	case OpSave:
		id, ok := step.Analysis.(int)
		if !ok {
			return fmt.Errorf("save needs an integer analysis, got %T", step.Analysis)
		}
		n, err := h.save(ctx, int64(id), step)
		if err != nil {
			var pe *persist.Error
			if !errors.As(err, &pe) {
				return err
			}
			event.Outcome = string(pe.Kind)
			event.Message = pe.Message
		} else {
			event.Saved = &n
		}
	case OpRead:
		recs := persist.GetRecommendationsForInput(ctx, h.store.DB(), step.Analysis, persist.WithLogger(h.logger))
		event.RecIDs = recIDs(recs)
	case OpSetStatus:
		id, ok := step.Analysis.(int)
		if !ok {
			return fmt.Errorf("set_status needs an integer analysis, got %T", step.Analysis)
		}
		if err := h.setStatus(ctx, int64(id), step.RecID, model.Status(step.Status)); err != nil {
			event.Outcome = "error"
			event.Message = err.Error()
		}
	}

	result.AddTrace(event)
	for _, msg := range checkExpect(index, step, event) {
		result.AddError(msg)
	}

	h.logger.Info("flow step completed", "step", index, "op", step.Op, "outcome", event.Outcome)
	return nil
}

// save pins a connection so the coordinator and the (possibly faulty) handle
// share one transaction.
func (h *Harness) save(ctx context.Context, analysisID int64, step FlowStep) (int, error) {
	conn, err := h.store.DB().Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var db persist.DB = conn
	if step.FailOn != "" {
		db = faultyDB{DB: conn, trigger: step.FailOn}
	}

	payload := model.Payload{Recommendations: step.Recommendations}
	return persist.SaveRecommendations(ctx, db, analysisID, payload, store.NewConnCoordinator(conn), h.options()...)
}

func (h *Harness) setStatus(ctx context.Context, analysisID int64, recID string, status model.Status) error {
	for _, rec := range h.store.GetRecommendations(ctx, analysisID, persist.WithLogger(h.logger)) {
		if rec.RecID == recID {
			return h.store.UpdateRecommendationStatus(ctx, rec.ID, status)
		}
	}
	return fmt.Errorf("recommendation %s not found in analysis %d", recID, analysisID)
}

// checkExpect compares an executed step with its expect clause.
// A step without an expect clause must succeed.
func checkExpect(index int, step FlowStep, event TraceEvent) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("flow[%d] %s: ", index, step.Op)+fmt.Sprintf(format, args...))
	}

	e := step.Expect
	if e == nil {
		if event.Outcome != OutcomeOK {
			fail("unexpected failure %s: %s", event.Outcome, event.Message)
		}
		return errs
	}

	if e.Error != "" {
		if event.Outcome != e.Error {
			fail("expected error %s, got %s", e.Error, event.Outcome)
		}
	} else if event.Outcome != OutcomeOK {
		fail("unexpected failure %s: %s", event.Outcome, event.Message)
	}
	if e.Message != "" && !strings.Contains(event.Message, e.Message) {
		fail("expected message containing %q, got %q", e.Message, event.Message)
	}
	if e.Saved != nil && (event.Saved == nil || *event.Saved != *e.Saved) {
		got := "none"
		if event.Saved != nil {
			got = strconv.Itoa(*event.Saved)
		}
		fail("expected saved=%d, got %s", *e.Saved, got)
	}
	if e.Count != nil && len(event.RecIDs) != *e.Count {
		fail("expected %d recommendations, got %d", *e.Count, len(event.RecIDs))
	}
	if e.Order != nil && !slices.Equal(e.Order, event.RecIDs) {
		fail("expected order %v, got %v", e.Order, event.RecIDs)
	}
	return errs
}

func recIDs(recs []model.Recommendation) []string {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.RecID
	}
	return ids
}

// faultyDB fails every Exec whose statement contains trigger.
type faultyDB struct {
	persist.DB
	trigger string
}

func (f faultyDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.trigger) {
		return nil, fmt.Errorf("injected failure on %q", f.trigger)
	}
	return f.DB.ExecContext(ctx, query, args...)
}
