// Package statement builds ledger statements: the as-of opening balance, the
// merged list of bills and cash vouchers, and the running balance over them.
package statement

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"mandi-backend/internal/models"
)

// Key identifies the ledger a source is asked about. Bill sources join on
// CorrelationKey, cash sources on LedgerID.
type Key struct {
	Scope          models.Scope
	LedgerID       int
	Kind           models.LedgerKind
	CorrelationKey string
}

// KeyFor builds the key for ledger within scope
func KeyFor(scope models.Scope, ledger *models.Ledger) Key {
	return Key{
		Scope:          scope,
		LedgerID:       ledger.ID,
		Kind:           ledger.Kind,
		CorrelationKey: ledger.CorrelationKey(),
	}
}

// Record is one transaction returned by a source. Amount is never negative;
// the ledger's polarity decides the column.
type Record struct {
	ID          int
	Source      models.EntrySource
	Date        time.Time
	DocumentNo  string
	Description string
	Amount      decimal.Decimal
	TotalItems  *int
}

// BalanceSource is one of the transaction tables feeding a statement.
//
// SumBefore covers dates strictly before asOf. ListBetween is inclusive on both
// ends. Dates are compared as calendar days. A source with no matching rows
// returns zero and an empty slice.
type BalanceSource interface {
	Source() models.EntrySource
	SumBefore(ctx context.Context, key Key, asOf time.Time) (decimal.Decimal, error)
	ListBetween(ctx context.Context, key Key, from, to time.Time) ([]Record, error)
}

// TxBinder is implemented by sources that can read through a caller's
// transaction instead of the pool
type TxBinder interface {
	BindTx(tx pgx.Tx) BalanceSource
}
