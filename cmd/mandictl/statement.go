package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

var (
	ledgerID             int
	fromString, toString string
)

var statementCmd = &cobra.Command{
	Use:   "statement",
	Short: "Print a ledger statement with running balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := cliScope()
		if err != nil {
			return err
		}
		from, err := timeutil.ParseDate(fromString)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		to, err := timeutil.ParseDate(toString)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
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

		st, err := svc.Statements.Statement(cmd.Context(), scope, ledgerID, from, to)
		if err != nil {
			return err
		}
		return printStatement(cmd.OutOrStdout(), st)
	},
}

func printStatement(w io.Writer, st *models.Statement) error {
	fmt.Fprintf(w, "%s (%s) %s to %s\n\n", st.LedgerName, st.Kind, st.From, st.To)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tBill No\tType\tDebit\tCredit\tBalance\t")
	for _, line := range st.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			line.Date, line.BillNo, line.Type,
			line.Debit.StringFixed(2), line.Credit.StringFixed(2), line.Balance.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\tTotal\t%s\t%s\t%s\t\n",
		st.TotalDebit.StringFixed(2), st.TotalCredit.StringFixed(2), st.ClosingBalance.StringFixed(2))
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(statementCmd)

	addScopeFlags(statementCmd)
	statementCmd.Flags().IntVar(&ledgerID, "ledger", 0, "Ledger id.")
	statementCmd.Flags().StringVar(&fromString, "from", "", "First day, YYYY-MM-DD.")
	statementCmd.Flags().StringVar(&toString, "to", "", "Last day, YYYY-MM-DD.")
	statementCmd.MarkFlagRequired("ledger")
	statementCmd.MarkFlagRequired("from")
	statementCmd.MarkFlagRequired("to")
}
