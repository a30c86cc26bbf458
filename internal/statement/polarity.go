package statement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"mandi-backend/internal/models"
)

// Column is the statement side an amount is shown on
type Column int

const (
	Debit Column = iota
	Credit
)

func (c Column) String() string {
	if c == Credit {
		return "credit"
	}
	return "debit"
}

// Polarity decides which column each source populates for a ledger kind.
// The accumulator never branches on ledger kind; everything kind-specific
// lives behind this interface.
type Polarity interface {
	Kind() models.LedgerKind
	Column(source models.EntrySource) Column
}

// customer ledgers owe us for bills and for cash paid out to them
type customerPolarity struct{}

func (customerPolarity) Kind() models.LedgerKind { return models.LedgerKindCustomer }

func (customerPolarity) Column(source models.EntrySource) Column {
	switch source {
	case models.SourceBill, models.SourcePayment:
		return Debit
	default:
		return Credit
	}
}

// farmer bills are what we owe the farmer
type farmerPolarity struct{}

func (farmerPolarity) Kind() models.LedgerKind { return models.LedgerKindFarmer }

func (farmerPolarity) Column(source models.EntrySource) Column {
	switch source {
	case models.SourcePayment:
		return Debit
	default:
		return Credit
	}
}

// PolarityFor returns the strategy for kind
func PolarityFor(kind models.LedgerKind) (Polarity, error) {
	switch kind {
	case models.LedgerKindCustomer:
		return customerPolarity{}, nil
	case models.LedgerKindFarmer:
		return farmerPolarity{}, nil
	}
	return nil, fmt.Errorf("unknown ledger kind %q", kind)
}

// Split places amount in the column p picks for source
func Split(p Polarity, source models.EntrySource, amount decimal.Decimal) (debit, credit decimal.Decimal) {
	if p.Column(source) == Debit {
		return amount, decimal.Zero
	}
	return decimal.Zero, amount
}

// Signed returns amount as it moves the balance: debit adds, credit subtracts
func Signed(p Polarity, source models.EntrySource, amount decimal.Decimal) decimal.Decimal {
	if p.Column(source) == Debit {
		return amount
	}
	return amount.Neg()
}
