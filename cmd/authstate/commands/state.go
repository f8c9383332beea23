package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which auth records are present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "onboarding completed: %t\n", st.OnboardingCompleted)
			fmt.Fprintf(out, "login PIN set:        %t\n", st.HasLoginPIN)
			fmt.Fprintf(out, "user data stored:     %t\n", st.HasUserData)
			fmt.Fprintf(out, "returning user:       %t\n", st.ReturningUser)
			return nil
		},
	}
}

func onboardingCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Manage the onboarding flag",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "complete",
		Short: "Mark onboarding as completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.svc.SetOnboardingCompleted(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Onboarding marked as completed.")
			return nil
		},
	})
	return cmd
}

func returningCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "returning",
		Short: "Print whether this install counts as a returning user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			returning, err := opts.svc.IsReturningUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), returning)
			return nil
		},
	}
}

func resetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the onboarding flag, PIN and user data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.svc.ResetAuthData(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Auth state cleared.")
			return nil
		},
	}
}

func demoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Write placeholder records so the install counts as set up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.svc.MarkUserAsSetUp(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Placeholder user set up.")
			return nil
		},
	}
}
