package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tarefas/internal/importer"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks from a CUE or YAML file",
		Long: `Create tasks in file order from a .cue, .yaml or .yml file:

  tasks: [
    {name: "Write report", cost: 12.5, due_date: "2025-01-10"},
  ]

The whole file is validated before any task is created. Creation stops at
the first failure; tasks created before it are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := importer.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid import file", err)
			}

			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			s.out.Progress("importing %d task(s) from %s", len(inputs), args[0])
			created, err := importer.Run(cmd.Context(), s.svc, inputs)
			if err != nil {
				return opFailed(fmt.Sprintf("import stopped after %d of %d task(s)", len(created), len(inputs)), err)
			}
			return s.out.Success(importView{File: args[0], Created: len(created), Tasks: created})
		},
	}
}
