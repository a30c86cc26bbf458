package models

import "github.com/shopspring/decimal"

// EntrySource tags where a statement row came from
type EntrySource string

const (
	SourceOpening EntrySource = "OPENING"
	SourceBill    EntrySource = "BILL"
	SourcePayment EntrySource = "PAYMENT"
	SourceReceipt EntrySource = "RECEIPT"
)

// StatementLine is one derived row of a ledger statement. Never persisted.
type StatementLine struct {
	Date        string          `json:"date"`
	BillNo      string          `json:"billNo"`
	Description string          `json:"description"`
	Type        EntrySource     `json:"type"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	TotalItems  *int            `json:"totalItems,omitempty"`
}

// Statement is a full statement with its totals
type Statement struct {
	LedgerID       int             `json:"ledgerId"`
	LedgerName     string          `json:"ledgerName"`
	Kind           LedgerKind      `json:"kind"`
	From           Date            `json:"from"`
	To             Date            `json:"to"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Lines          []StatementLine `json:"lines"`
}

// OpeningBalanceResponse is returned by the opening-balance endpoint
type OpeningBalanceResponse struct {
	LedgerID       int             `json:"ledgerId"`
	AsOf           Date            `json:"asOf"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}
