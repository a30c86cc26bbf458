package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandi-backend/internal/models"
)

func TestBuildLedger(t *testing.T) {
	scope := models.Scope{CompanyID: 2, YearID: 5}

	l, err := buildLedger(scope, " Ramesh Traders ", "customer", "C12", "1500.505", "2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Traders", l.Name)
	assert.Equal(t, models.LedgerKindCustomer, l.Kind)
	assert.Equal(t, 2, l.CompanyID)
	assert.Equal(t, 5, l.YearID)
	require.NotNil(t, l.CustomerNo)
	assert.Equal(t, "C12", *l.CustomerNo)
	assert.Nil(t, l.FarmerNo)
	assert.Equal(t, "1500.51", l.OpeningBalance.StringFixed(2))
	assert.Equal(t, "2024-04-01", l.OpeningBalanceDate.String())

	l, err = buildLedger(scope, "Suresh", "FARMER", "F7", "", "")
	require.NoError(t, err)
	require.NotNil(t, l.FarmerNo)
	assert.Equal(t, "F7", l.CorrelationKey())
	assert.True(t, l.OpeningBalance.IsZero())
	assert.True(t, l.OpeningBalanceDate.IsZero())
}

func TestBuildLedgerRejectsBadInput(t *testing.T) {
	scope := models.Scope{CompanyID: 1, YearID: 1}
	tests := []struct {
		name                                string
		ledgerName, kind, party, open, date string
		want                                string
	}{
		{"no name", "", "customer", "C1", "", "", "--name"},
		{"bad kind", "A", "trader", "C1", "", "", "--kind"},
		{"no party", "A", "customer", " ", "", "", "--party-no"},
		{"bad opening", "A", "customer", "C1", "abc", "", "--opening"},
		{"bad date", "A", "farmer", "F1", "10", "01/04/2024", "--opening-date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildLedger(scope, tt.ledgerName, tt.kind, tt.party, tt.open, tt.date)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPrintStatement(t *testing.T) {
	st := &models.Statement{
		LedgerName:     "Ramesh Traders",
		Kind:           models.LedgerKindCustomer,
		From:           models.MustDate("2024-04-01"),
		To:             models.MustDate("2024-04-30"),
		OpeningBalance: decimal.NewFromInt(1500),
		TotalDebit:     decimal.NewFromInt(1720),
		TotalCredit:    decimal.NewFromInt(500),
		ClosingBalance: decimal.NewFromInt(1220),
		Lines: []models.StatementLine{
			{Date: "2024-04-01", Type: models.SourceOpening, Debit: decimal.NewFromInt(1500), Balance: decimal.NewFromInt(1500)},
			{Date: "2024-04-03", BillNo: "CB-001", Type: models.SourceBill, Debit: decimal.NewFromInt(220), Balance: decimal.NewFromInt(1720)},
			{Date: "2024-04-05", BillNo: "R-001", Type: models.SourceReceipt, Credit: decimal.NewFromInt(500), Balance: decimal.NewFromInt(1220)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printStatement(&buf, st))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Ramesh Traders (CUSTOMER) 2024-04-01 to 2024-04-30\n"))
	assert.Contains(t, out, "CB-001")
	assert.Contains(t, out, "1720.00")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	last := lines[len(lines)-1]
	assert.Contains(t, last, "Total")
	assert.Contains(t, last, "500.00")
	assert.Contains(t, last, "1220.00")
}

func TestCLIScopeRequiresPositiveIDs(t *testing.T) {
	companyID, yearID = 0, 3
	_, err := cliScope()
	assert.Error(t, err)

	companyID, yearID = 4, 3
	scope, err := cliScope()
	require.NoError(t, err)
	assert.Equal(t, models.Scope{CompanyID: 4, YearID: 3}, scope)
}

func TestResetRequiresConfirmation(t *testing.T) {
	confirmReset = false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"reset"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}
