package harness

// TraceStep records one executed operation and the order it left behind.
type TraceStep struct {
	Seq     int      `json:"seq"`
	Op      string   `json:"op"`
	Task    string   `json:"task,omitempty"`
	Name    string   `json:"name,omitempty"`
	Rank    int      `json:"rank,omitempty"`
	Outcome string   `json:"outcome"` // "ok", "TAKEN", "FREE" or an error code
	Order   []string `json:"order"`
}

// Outcome for a step that succeeded.
const OutcomeOK = "ok"

// OutcomeFree is the check_name outcome for an unused name.
const OutcomeFree = "FREE"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step met its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains the flow steps in execution order. Setup is not traced.
	Trace []TraceStep `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the task order (names by rank) after the flow.
	Final []string `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step to the trace, numbering it from 1.
func (r *Result) AddStep(step TraceStep) {
	step.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, step)
}
