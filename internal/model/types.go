package model

import "time"

// Recommendation is one actionable finding tied to exactly one analysis.
type Recommendation struct {
	ID                 int64      `json:"id,omitempty" yaml:"id,omitempty"`       // Store-assigned
	AnalysisID         int64      `json:"analysisId,omitempty" yaml:"-"`          // Owning analysis
	RecID              string     `json:"recId" yaml:"recId"`                     // Caller-assigned logical key
	RuleID             string     `json:"ruleId,omitempty" yaml:"ruleId,omitempty"`
	Title              string     `json:"title" yaml:"title"`
	Priority           Priority   `json:"priority" yaml:"priority"`
	Category           string     `json:"category,omitempty" yaml:"category,omitempty"`
	Description        string     `json:"description,omitempty" yaml:"description,omitempty"`
	Effort             Effort     `json:"effort,omitempty" yaml:"effort,omitempty"`
	EstimatedTime      string     `json:"estimatedTime,omitempty" yaml:"estimatedTime,omitempty"`
	ScoreIncrease      float64    `json:"scoreIncrease" yaml:"scoreIncrease"`
	PercentageIncrease float64    `json:"percentageIncrease" yaml:"percentageIncrease"`
	WhyExplanation     string     `json:"whyExplanation,omitempty" yaml:"whyExplanation,omitempty"`
	Status             Status     `json:"status,omitempty" yaml:"status,omitempty"`
	BatchID            string     `json:"batchId,omitempty" yaml:"-"` // Save that wrote the row
	CreatedAt          time.Time  `json:"createdAt,omitzero" yaml:"-"`
	Actions            []Action   `json:"actions" yaml:"actions,omitempty"`
	Example            *Example   `json:"example,omitempty" yaml:"example,omitempty"`
	Resources          []Resource `json:"resources" yaml:"resources,omitempty"`
}

// Action is one ordered remediation step owned by a Recommendation.
type Action struct {
	Step       int    `json:"step" yaml:"step"` // 1-based; 0 means "use position"
	ActionText string `json:"actionText" yaml:"actionText"`
	ActionType string `json:"actionType,omitempty" yaml:"actionType,omitempty"`
}

// Example is a before/after illustration. Either side may be empty, not both.
type Example struct {
	BeforeExample string `json:"beforeExample,omitempty" yaml:"beforeExample,omitempty"`
	AfterExample  string `json:"afterExample,omitempty" yaml:"afterExample,omitempty"`
}

// IsEmpty reports whether neither side of the example is set.
func (e *Example) IsEmpty() bool {
	return e == nil || (e.BeforeExample == "" && e.AfterExample == "")
}

// Resource is an external learn-more link.
type Resource struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Payload is the full recommendation set for one analysis. Saving a payload
// always replaces whatever was stored for the analysis before.
type Payload struct {
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
}
