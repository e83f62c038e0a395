package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <email>",
	Short: "Reset a learner's XP, streaks, progress and chat history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to reset %s without --yes", args[0])
		}
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.UserByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		if err := a.ResetUser(ctx, u.ID); err != nil {
			return fmt.Errorf("reset %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset progress for %s (%s).\n", u.Name, u.Email)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm the reset")
}
