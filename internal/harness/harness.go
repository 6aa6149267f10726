package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tarefas/internal/service"
	"github.com/roach88/tarefas/internal/store"
	"github.com/roach88/tarefas/internal/task"
	"github.com/roach88/tarefas/internal/testutil"
)

// Setup tasks get these fields; only their names matter to scenarios.
const (
	setupCost = 1
	setupDue  = "2025-01-01"
)

// Harness executes one scenario against a service backed by a private
// in-memory store.
type Harness struct {
	svc *service.Service
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Create the setup tasks
// 3. Execute flow steps, checking expectations and rank density after each
// 4. Evaluate assertions against the final order
//
// A returned error means the scenario could not be executed at all; step
// and assertion failures are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs("")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		svc: service.New(st, slog.New(slog.NewTextHandler(io.Discard, nil))),
	}

	for _, name := range scenario.Setup {
		in := service.Input{Name: name, Cost: setupCost, DueDate: setupDue}
		if _, err := h.svc.Create(ctx, in); err != nil {
			return nil, fmt.Errorf("failed to execute setup: create %q: %w", name, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute flow: %w", err)
		}
	}

	final, err := h.order(ctx)
	if err != nil {
		return nil, err
	}
	result.Final = final

	tasks, err := h.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range EvaluateAssertions(tasks, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one flow step and records it. Only infrastructure
// failures are returned; coded task errors are outcomes.
func (h *Harness) executeStep(ctx context.Context, index int, step FlowStep, result *Result) error {
	id, err := h.resolve(ctx, step.Task)
	if err != nil {
		return err
	}

	var opErr error
	outcome := OutcomeOK
	switch step.Op {
	case OpCreate:
		_, opErr = h.svc.Create(ctx, step.input())
	case OpUpdate:
		_, opErr = h.svc.Update(ctx, id, step.input())
	case OpDelete:
		opErr = h.svc.Delete(ctx, id)
	case OpMove:
		opErr = h.svc.Move(ctx, id, step.Rank)
	case OpCheckName:
		var free bool
		free, opErr = h.svc.CheckName(ctx, step.Name, id)
		if opErr == nil {
			outcome = OutcomeTaken
			if free {
				outcome = OutcomeFree
			}
		}
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, step.Op)
	}

	if opErr != nil {
		code := task.CodeOf(opErr)
		if code == "" {
			return fmt.Errorf("flow[%d] %s: %w", index, step.Op, opErr)
		}
		outcome = string(code)
	}

	order, err := h.order(ctx)
	if err != nil {
		return err
	}
	result.AddStep(TraceStep{
		Op:      step.Op,
		Task:    step.Task,
		Name:    step.Name,
		Rank:    step.Rank,
		Outcome: outcome,
		Order:   order,
	})

	if want := step.expected(); outcome != want {
		result.AddError(fmt.Sprintf("flow[%d] %s %s: expected %s, got %s", index, step.Op, step.Task, want, outcome))
	}
	if err := h.svc.Verify(ctx); err != nil {
		result.AddError(fmt.Sprintf("flow[%d] %s %s: %v", index, step.Op, step.Task, err))
	}
	return nil
}

// resolve maps a task name to its id. Names that match no task are
// returned unchanged so scenarios can refer to missing ids.
func (h *Harness) resolve(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	t, err := h.svc.FindByName(ctx, name)
	if task.IsNotFound(err) {
		return name, nil
	}
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func (h *Harness) order(ctx context.Context) ([]string, error) {
	tasks, err := h.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names, nil
}

func (s FlowStep) input() service.Input {
	return service.Input{Name: s.Name, Cost: s.Cost, DueDate: s.Due}
}

func (s FlowStep) expected() string {
	switch {
	case s.Expect != "":
		return s.Expect
	case s.Op == OpCheckName:
		return OutcomeFree
	default:
		return OutcomeOK
	}
}
