package harness

import "github.com/roach88/seorec/internal/model"

// Step outcomes besides persist error kinds.
const (
	OutcomeOK = "ok"
)

// TraceEvent records one executed flow step.
type TraceEvent struct {
	Seq      int64    `json:"seq"`
	Op       string   `json:"op"`
	Analysis string   `json:"analysis"`
	Outcome  string   `json:"outcome"` // "ok" or a persist error kind
	Saved    *int     `json:"saved,omitempty"`
	RecIDs   []string `json:"rec_ids,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// StateRow is the golden-friendly summary of one stored recommendation.
type StateRow struct {
	RecID      string `json:"rec_id"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
	BatchID    string `json:"batch_id"`
	Actions    int    `json:"actions"`
	HasExample bool   `json:"has_example"`
	Resources  int    `json:"resources"`
}

func stateRows(recs []model.Recommendation) []StateRow {
	rows := make([]StateRow, len(recs))
	for i, rec := range recs {
		rows[i] = StateRow{
			RecID:      rec.RecID,
			Priority:   string(rec.Priority),
			Status:     string(rec.Status),
			BatchID:    rec.BatchID,
			Actions:    len(rec.Actions),
			HasExample: !rec.Example.IsEmpty(),
			Resources:  len(rec.Resources),
		}
	}
	return rows
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State holds the final graph of every analysis, keyed by analysis id.
	State map[string][]StateRow `json:"state,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string][]StateRow),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed step to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
