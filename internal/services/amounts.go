package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

const amountPlaces = 2

// lineAmount is the explicit amount when given, otherwise weight x rate, or
// quantity x rate for goods sold by count
func lineAmount(quantity, weight, rate decimal.Decimal, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return explicit.Round(amountPlaces)
	}
	if !weight.IsZero() {
		return weight.Mul(rate).Round(amountPlaces)
	}
	return quantity.Mul(rate).Round(amountPlaces)
}

// finalAmount applies charges: added on customer bills, deducted from farmer bills
func finalAmount(kind models.BillKind, total, charges decimal.Decimal) decimal.Decimal {
	if kind == models.BillKindFarmer {
		return total.Sub(charges)
	}
	return total.Add(charges)
}

// checkLine validates the numeric fields shared by bill and souda lines
func checkLine(field string, quantity, weight, rate decimal.Decimal, explicit *decimal.Decimal) error {
	if quantity.IsNegative() {
		return apperr.Validation(field+".quantity", "must not be negative")
	}
	if weight.IsNegative() {
		return apperr.Validation(field+".weight", "must not be negative")
	}
	if rate.IsNegative() {
		return apperr.Validation(field+".rate", "must not be negative")
	}
	if quantity.IsZero() && weight.IsZero() && explicit == nil {
		return apperr.Validation(field, "quantity or weight is required")
	}
	if !lineAmount(quantity, weight, rate, explicit).IsPositive() {
		return apperr.Validation(field+".amount", "must be positive")
	}
	return nil
}

func itemField(collection string, i int) string {
	return fmt.Sprintf("%s[%d]", collection, i)
}

func billSequenceKind(kind models.BillKind) sequence.Kind {
	if kind == models.BillKindFarmer {
		return sequence.KindFarmerBill
	}
	return sequence.KindCustomerBill
}

func cashSequenceKind(t models.CashTransactionType) sequence.Kind {
	if t == models.CashPayment {
		return sequence.KindPayment
	}
	return sequence.KindReceipt
}
