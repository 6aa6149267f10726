package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a task scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup lists task names created, in order, before the flow.
	Setup []string `yaml:"setup,omitempty"`

	// Flow contains the operations under test.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one operation.
type FlowStep struct {
	// Op is one of create, update, delete, move, check_name.
	Op string `yaml:"op"`

	// Task names the existing task the op applies to (update, delete, move,
	// and check_name when checking a rename).
	Task string `yaml:"task,omitempty"`

	// Name, Cost and Due are the task fields for create and update.
	// check_name checks Name.
	Name string  `yaml:"name,omitempty"`
	Cost float64 `yaml:"cost,omitempty"`
	Due  string  `yaml:"due,omitempty"`

	// Rank is the move target.
	Rank int `yaml:"rank,omitempty"`

	// Expect is the error code the step must fail with. Empty means the
	// step must succeed; for check_name, TAKEN means the name is in use.
	Expect string `yaml:"expect,omitempty"`
}

// Operation names.
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpMove      = "move"
	OpCheckName = "check_name"
)

// OutcomeTaken is the check_name outcome for a name in use.
const OutcomeTaken = "TAKEN"

// Assertion validates the final state.
type Assertion struct {
	// Type is one of order, count, rank.
	Type string `yaml:"type"`

	// Names is the expected order (order).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected number of tasks (count).
	Count int `yaml:"count,omitempty"`

	// Task and Rank give the expected rank of one task (rank).
	Task string `yaml:"task,omitempty"`
	Rank int    `yaml:"rank,omitempty"`
}

// Assertion type constants.
const (
	AssertOrder = "order"
	AssertCount = "count"
	AssertRank  = "rank"
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

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
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
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		switch step.Op {
		case OpCreate, OpCheckName:
		case OpUpdate, OpDelete, OpMove:
			if step.Task == "" {
				return fmt.Errorf("flow[%d]: task is required for %s", i, step.Op)
			}
		case "":
			return fmt.Errorf("flow[%d]: op is required", i)
		default:
			return fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertOrder:
		// An empty names list asserts an empty store.
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertRank:
		if a.Task == "" || a.Rank < 1 {
			return fmt.Errorf("assertions[%d]: rank needs task and a positive rank", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
