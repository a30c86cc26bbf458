package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Souda is a trade event between farmers and customers
type Souda struct {
	ID        int         `json:"id"`
	CompanyID int         `json:"company_id"`
	YearID    int         `json:"year_id"`
	SoudaNo   string      `json:"souda_no"`
	SoudaDate Date        `json:"souda_date"`
	Remarks   string      `json:"remarks"`
	CreatedBy int         `json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Items     []SoudaItem `json:"items"`
}

// SoudaItem links a selling farmer to a buying customer. The billed flags are
// one-way: once set they are never cleared.
type SoudaItem struct {
	ID             int             `json:"id"`
	SoudaID        int             `json:"souda_id"`
	FarmerNo       string          `json:"farmer_no"`
	CustomerNo     string          `json:"customer_no"`
	ProductName    string          `json:"product_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Weight         decimal.Decimal `json:"weight"`
	Rate           decimal.Decimal `json:"rate"`
	Amount         decimal.Decimal `json:"amount"`
	CustomerBilled bool            `json:"customer_billed"`
	FarmerBilled   bool            `json:"farmer_billed"`
}

// Billed reports whether either side has billed the item
func (i *SoudaItem) Billed() bool {
	return i.CustomerBilled || i.FarmerBilled
}

// SoudaRequest is the payload for creating or updating a souda
type SoudaRequest struct {
	SoudaDate Date               `json:"souda_date"`
	Remarks   string             `json:"remarks"`
	Items     []SoudaItemRequest `json:"items"`
}

type SoudaItemRequest struct {
	FarmerNo    string           `json:"farmer_no"`
	CustomerNo  string           `json:"customer_no"`
	ProductName string           `json:"product_name"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Weight      decimal.Decimal  `json:"weight"`
	Rate        decimal.Decimal  `json:"rate"`
	Amount      *decimal.Decimal `json:"amount"`
}

// CandidateItem is an unbilled souda item offered for billing
type CandidateItem struct {
	SoudaItem
	SoudaNo   string `json:"souda_no"`
	SoudaDate Date   `json:"souda_date"`
}
