// Package harness runs task scenarios: scripted sequences of operations
// executed against a fresh store, with assertions on the resulting order.
//
// # Scenario Format
//
// Scenarios are defined in YAML files:
//
//	name: move_down
//	description: "Moving a task down shifts the ones it passes"
//	setup: [A, B, C, D, E]
//	flow:
//	  - op: move
//	    task: B
//	    rank: 4
//	  - op: move
//	    task: B
//	    rank: 6
//	    expect: VALIDATION
//	assertions:
//	  - type: order
//	    names: [A, C, D, B, E]
//	  - type: rank
//	    task: B
//	    rank: 4
//
// Setup creates one task per name (cost 1, due 2025-01-01). A flow step
// names an existing task by name in task; an unknown name is passed on as
// the id, so NOT_FOUND cases can be written directly. expect is the error
// code the step must fail with; empty means it must succeed.
//
// # Assertion Types
//
//   - order: task names listed by rank
//   - count: number of tasks
//   - rank: the rank of one task
//
// The rank invariant (ranks exactly 1..N) is checked after every step.
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite database with sequential
// ids (task-1, task-2, ...), so traces are identical across runs and can be
// compared against golden files.
package harness
