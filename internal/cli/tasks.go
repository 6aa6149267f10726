package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tarefas/internal/service"
	"github.com/roach88/tarefas/internal/task"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks by rank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.svc.List(cmd.Context())
			if err != nil {
				return opFailed("list tasks failed", err)
			}
			return s.out.Success(taskTable(tasks))
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Long: `Show one task by id, or by name with --name.

Example:
  tarefas get 0191e5b2-7c1e-7d39-9a51-2f1f3c0e9a10
  tarefas get --name "Write report"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			var t task.Task
			if byName {
				t, err = s.svc.FindByName(cmd.Context(), args[0])
			} else {
				t, err = s.svc.Get(cmd.Context(), args[0])
			}
			if err != nil {
				return opFailed("get task failed", err)
			}
			return s.out.Success(taskView(t))
		},
	}

	cmd.Flags().BoolVar(&byName, "name", false, "look the task up by name instead of id")
	return cmd
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var in service.Input

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task at the end of the list",
		Long: `Create a task. It is appended with rank N+1.

Example:
  tarefas create --name "Write report" --cost 12.5 --due 2025-01-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.svc.Create(cmd.Context(), in)
			if err != nil {
				return opFailed("create task failed", err)
			}
			return s.out.Success(taskView(t))
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "task name (required)")
	cmd.Flags().Float64Var(&in.Cost, "cost", 0, "task cost, >= 0")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "due date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

// NewUpdateCommand creates the update command. Flags left unset keep the
// task's current values.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var in service.Input

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a task's name, cost or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			current, err := s.svc.Get(cmd.Context(), args[0])
			if err != nil {
				return opFailed("update task failed", err)
			}

			flags := cmd.Flags()
			if !flags.Changed("name") {
				in.Name = current.Name
			}
			if !flags.Changed("cost") {
				in.Cost = current.Cost
			}
			if !flags.Changed("due") {
				in.DueDate = current.DueDate.String()
			}

			t, err := s.svc.Update(cmd.Context(), args[0], in)
			if err != nil {
				return opFailed("update task failed", err)
			}
			return s.out.Success(taskView(t))
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "new task name")
	cmd.Flags().Float64Var(&in.Cost, "cost", 0, "new task cost")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "new due date, YYYY-MM-DD")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and close the gap in the ranks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.Delete(cmd.Context(), args[0]); err != nil {
				return opFailed("delete task failed", err)
			}
			return s.out.Success(messageView{Message: "task deleted", ID: args[0]})
		},
	}
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <rank>",
		Short: "Move a task to a new rank",
		Long: `Move a task to rank (1..N). The tasks in between shift by one.

Example:
  tarefas move task-2 4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid rank %q", args[1]), err)
			}

			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.Move(cmd.Context(), args[0], target); err != nil {
				return opFailed("move task failed", err)
			}
			return s.out.Success(messageView{Message: fmt.Sprintf("task moved to rank %d", target), ID: args[0]})
		},
	}
}

// NewCheckNameCommand creates the check-name command. A taken name exits
// with ExitFailure so scripts can branch on it.
func NewCheckNameCommand(rootOpts *RootOptions) *cobra.Command {
	var exceptID string

	cmd := &cobra.Command{
		Use:   "check-name <name>",
		Short: "Check whether a task name is free",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			free, err := s.svc.CheckName(cmd.Context(), args[0], exceptID)
			if err != nil {
				return opFailed("check name failed", err)
			}
			if !free {
				return WrapExitError(ExitFailure, "name check failed", task.NewConflictError(args[0]))
			}
			return s.out.Success(nameCheckView{Name: args[0], Available: true})
		},
	}

	cmd.Flags().StringVar(&exceptID, "id", "", "id of the task being renamed; its own name counts as free")
	return cmd
}
