package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentKind string

var nextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Preview the next document number without reserving it",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := cliScope()
		if err != nil {
			return err
		}
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		svc, err := e.services()
		if err != nil {
			return err
		}

		number, err := svc.Sequences.NextNumber(cmd.Context(), scope, documentKind)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), number)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nextNumberCmd)

	addScopeFlags(nextNumberCmd)
	nextNumberCmd.Flags().StringVar(&documentKind, "kind", "", "Document kind, e.g. customer_bill.")
	nextNumberCmd.MarkFlagRequired("kind")
}
