package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind decides which side of the statement each source lands on
type LedgerKind string

const (
	LedgerKindCustomer LedgerKind = "CUSTOMER"
	LedgerKindFarmer   LedgerKind = "FARMER"
)

// Valid reports whether k is a known ledger kind
func (k LedgerKind) Valid() bool {
	return k == LedgerKindCustomer || k == LedgerKindFarmer
}

// Ledger is a customer or farmer account
type Ledger struct {
	ID                 int             `json:"id"`
	CompanyID          int             `json:"company_id"`
	YearID             int             `json:"year_id"`
	Name               string          `json:"name"`
	Kind               LedgerKind      `json:"kind"`
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	OpeningBalanceDate Date            `json:"opening_balance_date"`
	CustomerNo         *string         `json:"customer_no,omitempty"` // join key for customer bills
	FarmerNo           *string         `json:"farmer_no,omitempty"`   // join key for farmer bills
	CreatedAt          time.Time       `json:"created_at"`
}

// CorrelationKey returns the party number bills are filed under for this ledger
func (l *Ledger) CorrelationKey() string {
	switch l.Kind {
	case LedgerKindCustomer:
		if l.CustomerNo != nil {
			return *l.CustomerNo
		}
	case LedgerKindFarmer:
		if l.FarmerNo != nil {
			return *l.FarmerNo
		}
	}
	return ""
}
