package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillKind selects between the customer and farmer bill books
type BillKind string

const (
	BillKindCustomer BillKind = "customer"
	BillKindFarmer   BillKind = "farmer"
)

// ParseBillKind accepts the path segment used by the API
func ParseBillKind(value string) (BillKind, error) {
	switch BillKind(value) {
	case BillKindCustomer, BillKindFarmer:
		return BillKind(value), nil
	}
	return "", fmt.Errorf("unknown bill kind %q", value)
}

// LedgerKind is the kind of ledger a bill of this kind is filed against
func (k BillKind) LedgerKind() LedgerKind {
	if k == BillKindFarmer {
		return LedgerKindFarmer
	}
	return LedgerKindCustomer
}

// Bill is a customer or farmer bill header with its items
type Bill struct {
	ID              int             `json:"id"`
	CompanyID       int             `json:"company_id"`
	YearID          int             `json:"year_id"`
	Kind            BillKind        `json:"kind"`
	BillNo          string          `json:"bill_no"`
	BillDate        Date            `json:"bill_date"`
	PartyNo         string          `json:"party_no"` // customer_no or farmer_no of the ledger
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Charges         decimal.Decimal `json:"charges"` // added for customers, deducted for farmers
	FinalAmount     decimal.Decimal `json:"final_amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Remarks         string          `json:"remarks"`
	CreatedBy       int             `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []BillItem      `json:"items"`
}

// BillItem is one billed line
type BillItem struct {
	ID          int             `json:"id"`
	BillID      int             `json:"bill_id"`
	SoudaItemID *int            `json:"souda_item_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Weight      decimal.Decimal `json:"weight"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// BillRequest is the payload for creating or updating a bill
type BillRequest struct {
	PartyNo  string            `json:"party_no"`
	BillDate Date              `json:"bill_date"`
	Charges  decimal.Decimal   `json:"charges"`
	Remarks  string            `json:"remarks"`
	Items    []BillItemRequest `json:"items"`
}

// BillItemRequest is one line of a BillRequest. Amount is derived when omitted.
type BillItemRequest struct {
	SoudaItemID *int             `json:"souda_item_id"`
	ProductName string           `json:"product_name"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Weight      decimal.Decimal  `json:"weight"`
	Rate        decimal.Decimal  `json:"rate"`
	Amount      *decimal.Decimal `json:"amount"`
}

// CreateBillResponse is returned by POST /api/bills/{kind}
type CreateBillResponse struct {
	Success    bool   `json:"success"`
	BillID     int    `json:"billId"`
	BillNumber string `json:"billNumber"`
}

// BillFilter narrows a bill listing
type BillFilter struct {
	PartyNo string
	From    Date
	To      Date
}

// SoudaItemIDs returns the souda items a bill references, in order
func (b *Bill) SoudaItemIDs() []int {
	var ids []int
	for _, item := range b.Items {
		if item.SoudaItemID != nil {
			ids = append(ids, *item.SoudaItemID)
		}
	}
	return ids
}
