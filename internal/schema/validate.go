// Package schema checks proposed recommendations against required-field and
// enumerated-value rules before anything is written.
//
// The rules live in the embedded schema.cue. Validation never touches the
// store and never stops at the first problem: every violation across every
// recommendation is collected into one Result.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/seorec/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// Violation describes one rule a recommendation failed.
type Violation struct {
	Index   int    // Position in the validated slice
	RecID   string // Caller key, if any
	Field   string // e.g. "priority", "actions[1].actionText"
	Message string
}

func (v Violation) String() string {
	if v.RecID != "" {
		return fmt.Sprintf("recommendations[%d] (%s): %s", v.Index, v.RecID, v.Message)
	}
	return fmt.Sprintf("recommendations[%d]: %s", v.Index, v.Message)
}

// Result is the outcome of validating a recommendation set.
type Result struct {
	Violations []Violation
}

// Valid reports whether no rule was violated.
func (r *Result) Valid() bool {
	return len(r.Violations) == 0
}

// Messages returns every violation rendered as a single line.
func (r *Result) Messages() []string {
	out := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.String()
	}
	return out
}

// Error joins all violations; empty when the result is valid.
func (r *Result) Error() string {
	return strings.Join(r.Messages(), "; ")
}

// Validator evaluates recommendations against the compiled CUE schema.
// A cue.Context is not safe for concurrent use, so calls are serialized.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Validate checks recs with a process-wide Validator.
// Panics if the embedded schema does not compile, which is a build defect.
func Validate(recs []model.Recommendation) *Result {
	defaultOnce.Do(func() {
		v, err := New()
		if err != nil {
			panic(err)
		}
		defaultValidator = v
	})
	return defaultValidator.Validate(recs)
}

// Validate checks every recommendation and its nested entities.
func (v *Validator) Validate(recs []model.Recommendation) *Result {
	v.mu.Lock()
	defer v.mu.Unlock()

	res := &Result{}
	for i, rec := range recs {
		res.Violations = append(res.Violations, v.validateOne(i, rec)...)
	}
	return res
}

func (v *Validator) validateOne(idx int, rec model.Recommendation) []Violation {
	var out []Violation
	add := func(field, format string, args ...any) {
		out = append(out, Violation{
			Index:   idx,
			RecID:   rec.RecID,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if rec.Title == "" {
		add("title", "title is required")
	} else if !v.conforms("#Title", rec.Title) {
		add("title", "title must be a non-empty string")
	}

	switch {
	case rec.Priority == "":
		add("priority", "priority is required")
	case !v.conforms("#Priority", string(rec.Priority)):
		add("priority", "invalid priority %q (must be one of %s)", rec.Priority, joinPriorities())
	}

	if rec.Status != "" && !v.conforms("#Status", string(rec.Status)) {
		add("status", "invalid status %q (must be one of %s)", rec.Status, joinStatuses())
	}

	if rec.Effort != "" && !v.conforms("#Effort", string(rec.Effort)) {
		add("effort", "invalid effort %q (must be one of %s)", rec.Effort, joinEfforts())
	}

	if !v.conforms("#ScoreIncrease", rec.ScoreIncrease) {
		add("scoreIncrease", "scoreIncrease must be non-negative, got %v", rec.ScoreIncrease)
	}

	for j, a := range rec.Actions {
		if !v.conforms("#ActionText", a.ActionText) {
			add(fmt.Sprintf("actions[%d].actionText", j), "actions[%d].actionText is required", j)
		}
		if !v.conforms("#Step", a.Step) {
			add(fmt.Sprintf("actions[%d].step", j), "actions[%d].step must not be negative, got %d", j, a.Step)
		}
	}

	if rec.Example != nil && rec.Example.IsEmpty() {
		add("example", "example needs a beforeExample or an afterExample")
	}

	for j, r := range rec.Resources {
		if !v.conforms("#ResourceURL", r.URL) {
			add(fmt.Sprintf("resources[%d].url", j), "resources[%d].url is required", j)
		}
	}

	return out
}

// conforms unifies value with the named schema definition.
func (v *Validator) conforms(def string, value any) bool {
	constraint := v.schema.LookupPath(cue.ParsePath(def))
	if !constraint.Exists() {
		// A missing definition is a schema defect; fail closed.
		return false
	}
	unified := constraint.Unify(v.ctx.Encode(value))
	return unified.Validate(cue.Concrete(true)) == nil
}

func joinPriorities() string {
	names := make([]string, 0, 4)
	for _, p := range model.AllPriorities() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func joinStatuses() string {
	names := make([]string, 0, 4)
	for _, s := range model.AllStatuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func joinEfforts() string {
	names := make([]string, 0, 3)
	for _, e := range model.AllEfforts() {
		names = append(names, string(e))
	}
	return strings.Join(names, ", ")
}
