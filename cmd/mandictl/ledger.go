package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

var (
	ledgerName        string
	ledgerKind        string
	partyNo           string
	openingString     string
	openingDateString string
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage customer and farmer ledgers",
}

var ledgerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ledger with its opening balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := cliScope()
		if err != nil {
			return err
		}
		l, err := buildLedger(scope, ledgerName, ledgerKind, partyNo, openingString, openingDateString)
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

		if err := svc.Ledgers.Create(cmd.Context(), l); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created ledger %d (%s %s)\n", l.ID, l.Kind, l.CorrelationKey())
		return nil
	},
}

// buildLedger validates flag input. The party number lands on customer_no
// or farmer_no depending on kind.
func buildLedger(scope models.Scope, name, kind, party, opening, openingDate string) (*models.Ledger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("--name is required")
	}
	k := models.LedgerKind(strings.ToUpper(kind))
	if !k.Valid() {
		return nil, fmt.Errorf("--kind must be customer or farmer")
	}
	party = strings.TrimSpace(party)
	if party == "" {
		return nil, fmt.Errorf("--party-no is required")
	}

	balance := decimal.Zero
	if opening != "" {
		var err error
		balance, err = decimal.NewFromString(opening)
		if err != nil {
			return nil, fmt.Errorf("--opening: %w", err)
		}
	}

	l := &models.Ledger{
		CompanyID:      scope.CompanyID,
		YearID:         scope.YearID,
		Name:           name,
		Kind:           k,
		OpeningBalance: balance.Round(2),
	}
	if openingDate != "" {
		d, err := timeutil.ParseDate(openingDate)
		if err != nil {
			return nil, fmt.Errorf("--opening-date: %w", err)
		}
		l.OpeningBalanceDate = models.NewDate(d)
	}
	if k == models.LedgerKindCustomer {
		l.CustomerNo = &party
	} else {
		l.FarmerNo = &party
	}
	return l, nil
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerCreateCmd)

	addScopeFlags(ledgerCreateCmd)
	ledgerCreateCmd.Flags().StringVar(&ledgerName, "name", "", "Party name.")
	ledgerCreateCmd.Flags().StringVar(&ledgerKind, "kind", "", "customer or farmer.")
	ledgerCreateCmd.Flags().StringVar(&partyNo, "party-no", "", "Customer or farmer number bills are filed under.")
	ledgerCreateCmd.Flags().StringVar(&openingString, "opening", "0", "Opening balance.")
	ledgerCreateCmd.Flags().StringVar(&openingDateString, "opening-date", "", "Opening balance date, YYYY-MM-DD.")
}
