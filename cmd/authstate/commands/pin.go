package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/congo-pay/authstate/internal/pin"
)

func pinCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the login PIN",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <pin>",
			Short: "Hash and store a login PIN",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, err := pin.Hash(args[0])
				if err != nil {
					return err
				}
				if err := opts.svc.SetLoginPin(cmd.Context(), hash); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "PIN stored.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "verify <pin>",
			Short: "Check a PIN against the stored hash",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, found, err := opts.svc.LoginPIN(cmd.Context())
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("no PIN configured")
				}
				if err := pin.Verify(hash, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "PIN verified.")
				return nil
			},
		},
	)
	return cmd
}
