package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mandi-backend/internal/database"
	"mandi-backend/migrations"
)

var confirmReset bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		return database.NewMigratorWithFS(e.pool, migrations.FS, ".", e.log).RunMigrations(cmd.Context())
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all ledgers, documents and numbering state",
	Long:  "Truncates every data table and restarts the id sequences. The schema is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmReset {
			return fmt.Errorf("refusing to reset without --yes")
		}
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := database.Reset(cmd.Context(), e.pool, e.log); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d tables\n", len(database.ResetTables))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVar(&confirmReset, "yes", false, "Confirm the reset.")
}
