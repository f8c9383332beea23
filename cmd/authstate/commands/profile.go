package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/congo-pay/authstate/internal/authstate"
)

func profileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the stored user profile",
	}

	var name, email string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store a user profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := authstate.UserProfile{
				Name:      name,
				Email:     email,
				SetupDate: time.Now().UTC().Format(time.RFC3339Nano),
			}
			if err := opts.svc.SetUserData(cmd.Context(), profile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile stored.")
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "display name")
	set.Flags().StringVar(&email, "email", "", "email address")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage
			found, err := opts.svc.UserData(cmd.Context(), &raw)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no profile stored")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}

	cmd.AddCommand(set, show)
	return cmd
}
