package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashTransactionType discriminates cash book rows
type CashTransactionType string

const (
	CashReceipt CashTransactionType = "Receipt"
	CashPayment CashTransactionType = "Payment"
)

// Valid reports whether t is a known transaction type
func (t CashTransactionType) Valid() bool {
	return t == CashReceipt || t == CashPayment
}

// CashBookEntry is a receipt or payment voucher. It concerns a ledger when
// either CashBankID or OppBankID points at it.
type CashBookEntry struct {
	ID              int                 `json:"id"`
	CompanyID       int                 `json:"company_id"`
	YearID          int                 `json:"year_id"`
	VoucherNo       string              `json:"voucher_no"`
	TransactionType CashTransactionType `json:"transaction_type"`
	EntryDate       Date                `json:"entry_date"`
	Amount          decimal.Decimal     `json:"amount"`
	CashBankID      *int                `json:"cash_bank_id,omitempty"`
	OppBankID       *int                `json:"opp_bank_id,omitempty"`
	Narration       string              `json:"narration"`
	CreatedBy       int                 `json:"created_by"`
	CreatedAt       time.Time           `json:"created_at"`
}

// CashBookRequest is the payload for recording a voucher
type CashBookRequest struct {
	TransactionType CashTransactionType `json:"transaction_type"`
	EntryDate       Date                `json:"entry_date"`
	Amount          decimal.Decimal     `json:"amount"`
	CashBankID      *int                `json:"cash_bank_id"`
	OppBankID       *int                `json:"opp_bank_id"`
	Narration       string              `json:"narration"`
}

// CashBookFilter narrows a cash book listing
type CashBookFilter struct {
	TransactionType CashTransactionType
	LedgerID        int
	From            Date
	To              Date
}
