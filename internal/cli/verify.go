package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that ranks are exactly 1..N",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.Verify(cmd.Context()); err != nil {
				return opFailed("rank check failed", err)
			}
			tasks, err := s.svc.List(cmd.Context())
			if err != nil {
				return opFailed("rank check failed", err)
			}
			return s.out.Success(messageView{Message: fmt.Sprintf("ranks are dense (%d tasks)", len(tasks))})
		},
	}
}
