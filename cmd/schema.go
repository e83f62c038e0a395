package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sunny/internal/store"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the Postgres schema for the Supabase backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ddl, err := store.PostgresSchema()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ddl)
		return nil
	},
}
