package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/seorec/internal/model"
	"github.com/roach88/seorec/internal/persist"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Analyses lists the URLs of analyses created before the flow runs.
	// They receive ids 1..n in order.
	Analyses []string `yaml:"analyses"`

	// BatchPrefix prefixes generated batch ids. Defaults to "batch".
	BatchPrefix string `yaml:"batch_prefix,omitempty"`

	// Flow contains the steps to execute, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final database state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpSave      = "save"
	OpRead      = "read"
	OpSetStatus = "set_status"
)

// FlowStep is one operation against the engine.
type FlowStep struct {
	// Op is one of save, read, set_status.
	Op string `yaml:"op"`

	// Analysis is the target analysis id. Read steps accept any scalar so
	// malformed ids (1.5, "abc", -1) can be exercised.
	Analysis any `yaml:"analysis"`

	// Recommendations is the payload of a save step.
	Recommendations []model.Recommendation `yaml:"recommendations,omitempty"`

	// FailOn makes every statement containing this text fail (save only).
	FailOn string `yaml:"fail_on,omitempty"`

	// RecID and Status drive set_status.
	RecID  string `yaml:"rec_id,omitempty"`
	Status string `yaml:"status,omitempty"`

	// Expect specifies the expected outcome. If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Saved is the count a save must return.
	Saved *int `yaml:"saved,omitempty"`

	// Error is the persist error kind a save must fail with.
	Error string `yaml:"error,omitempty"`

	// Message must be contained in the error message.
	Message string `yaml:"message,omitempty"`

	// Count is the number of recommendations a read must return.
	Count *int `yaml:"count,omitempty"`

	// Order is the exact rec_id sequence a read must return.
	Order []string `yaml:"order,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "row_count": Table holds exactly Count rows
	// - "single_batch": every recommendation of Analysis shares one batch id
	// - "status": RecID within Analysis has Status
	Type string `yaml:"type"`

	Table    string `yaml:"table,omitempty"`
	Count    int    `yaml:"count,omitempty"`
	Analysis int64  `yaml:"analysis,omitempty"`
	RecID    string `yaml:"rec_id,omitempty"`
	Status   string `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount    = "row_count"
	AssertSingleBatch = "single_batch"
	AssertStatus      = "status"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *FlowStep) error {
	switch step.Op {
	case OpSave:
		if _, ok := step.Analysis.(int); !ok {
			return fmt.Errorf("flow[%d]: save needs an integer analysis", index)
		}
	case OpRead:
		if step.Analysis == nil {
			return fmt.Errorf("flow[%d]: analysis is required for read", index)
		}
	case OpSetStatus:
		if _, ok := step.Analysis.(int); !ok {
			return fmt.Errorf("flow[%d]: set_status needs an integer analysis", index)
		}
		if step.RecID == "" || step.Status == "" {
			return fmt.Errorf("flow[%d]: rec_id and status are required for set_status", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: op is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, step.Op)
	}

	if step.FailOn != "" && step.Op != OpSave {
		return fmt.Errorf("flow[%d]: fail_on is only valid for save", index)
	}

	if e := step.Expect; e != nil && e.Error != "" {
		switch persist.Kind(e.Error) {
		case persist.KindConnectivity, persist.KindReferentialIntegrity, persist.KindValidation,
			persist.KindSchemaDrift, persist.KindTransaction:
		default:
			return fmt.Errorf("flow[%d].expect: unknown error kind %q", index, e.Error)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertRowCount:
		if !validIdentifier.MatchString(a.Table) {
			return fmt.Errorf("assertions[%d]: invalid table %q for row_count", index, a.Table)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertSingleBatch:
		if a.Analysis <= 0 {
			return fmt.Errorf("assertions[%d]: analysis is required for single_batch", index)
		}
	case AssertStatus:
		if a.Analysis <= 0 || a.RecID == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: analysis, rec_id and status are required for status", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
