package statement

import (
	"github.com/shopspring/decimal"

	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

// Totals summarises an accumulated statement
type Totals struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Closing decimal.Decimal
}

// RunningBalance walks entries once from zero applying balance += debit - credit.
// It knows nothing about ledger kinds.
func RunningBalance(entries []Entry) ([]models.StatementLine, Totals) {
	lines := make([]models.StatementLine, 0, len(entries))
	totals := Totals{Debit: decimal.Zero, Credit: decimal.Zero, Closing: decimal.Zero}

	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Debit).Sub(e.Credit)
		if e.SortKey > 0 {
			totals.Debit = totals.Debit.Add(e.Debit)
			totals.Credit = totals.Credit.Add(e.Credit)
		}
		lines = append(lines, models.StatementLine{
			Date:        timeutil.FormatDate(e.Date),
			BillNo:      e.DocumentNo,
			Description: e.Description,
			Type:        e.Source,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Balance:     balance,
			TotalItems:  e.TotalItems,
		})
	}
	totals.Closing = balance
	return lines, totals
}
