package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

// OpeningBalanceCalculator reconstructs a ledger's balance at the start of a
// day from the stored opening balance and every source's prior activity.
// The result is computed on every call and never stored, since a backdated
// voucher would make a stored value stale.
type OpeningBalanceCalculator struct {
	sources []BalanceSource
}

func NewOpeningBalanceCalculator(sources ...BalanceSource) *OpeningBalanceCalculator {
	return &OpeningBalanceCalculator{sources: sources}
}

// Compute returns opening + sum of signed prior activity before asOf.
// For a customer ledger that is opening + bills + payments - receipts.
func (c *OpeningBalanceCalculator) Compute(ctx context.Context, scope models.Scope, ledger *models.Ledger, asOf time.Time) (decimal.Decimal, error) {
	polarity, err := PolarityFor(ledger.Kind)
	if err != nil {
		return decimal.Zero, apperr.Internal("resolve ledger polarity", err)
	}
	return computeFrom(ctx, c.sources, KeyFor(scope, ledger), polarity, ledger.OpeningBalance, asOf)
}

// ComputeTx is Compute read through tx, so the balance sees the same
// snapshot as the rest of the caller's transaction.
//
// Parameters:
//   - tx: the open transaction; sources that implement TxBinder are bound to it
//   - asOf: the day whose opening balance is wanted, time of day ignored
//
// Returns:
//   - the signed balance before asOf, or an Internal error if any source fails
func (c *OpeningBalanceCalculator) ComputeTx(ctx context.Context, tx pgx.Tx, scope models.Scope, ledger *models.Ledger, asOf time.Time) (decimal.Decimal, error) {
	polarity, err := PolarityFor(ledger.Kind)
	if err != nil {
		return decimal.Zero, apperr.Internal("resolve ledger polarity", err)
	}
	bound := make([]BalanceSource, len(c.sources))
	for i, src := range c.sources {
		if b, ok := src.(TxBinder); ok {
			bound[i] = b.BindTx(tx)
		} else {
			bound[i] = src
		}
	}
	return computeFrom(ctx, bound, KeyFor(scope, ledger), polarity, ledger.OpeningBalance, asOf)
}

func (c *OpeningBalanceCalculator) compute(ctx context.Context, key Key, polarity Polarity, stored decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	return computeFrom(ctx, c.sources, key, polarity, stored, asOf)
}

func computeFrom(ctx context.Context, sources []BalanceSource, key Key, polarity Polarity, stored decimal.Decimal, asOf time.Time) (decimal.Decimal, error) {
	asOf = timeutil.DateOnly(asOf)
	balance := stored
	for _, src := range sources {
		sum, err := src.SumBefore(ctx, key, asOf)
		if err != nil {
			// a partial opening balance is worse than none
			return decimal.Zero, apperr.EnsureInternal(fmt.Sprintf("sum %s before %s", src.Source(), timeutil.FormatDate(asOf)), err)
		}
		balance = balance.Add(Signed(polarity, src.Source(), sum))
	}
	return balance, nil
}
