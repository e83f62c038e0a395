package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sunny/internal/ui/report"
)

var progressCmd = &cobra.Command{
	Use:   "progress <email>",
	Short: "Show a learner's dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.UserByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		d, err := a.Dashboard.Build(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("build dashboard: %w", err)
		}
		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprint(cmd.OutOrStdout(), report.Render(d, width))
		return nil
	},
}

func init() {
	progressCmd.Flags().IntP("width", "w", report.DefaultWidth, "Report width in columns")
}
