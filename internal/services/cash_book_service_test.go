package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/events"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

func newCashBookFixture() (*CashBookService, *fakeCashBook, *recordingPublisher) {
	entries := newFakeCashBook()
	pub := &recordingPublisher{}
	ledgers := newFakeLedgers(customerLedger(1, "C001"), farmerLedger(2, "F001"))
	svc := NewCashBookService(&fakeTx{}, ledgers, entries, &fakeSequences{}, sequence.DefaultPrefixes, pub, zap.NewNop())
	return svc, entries, pub
}

func TestCashBookSeparateSeries(t *testing.T) {
	svc, _, pub := newCashBookFixture()
	ctx := context.Background()

	receipt, err := svc.Create(ctx, testScope, &models.CashBookRequest{
		TransactionType: models.CashReceipt,
		EntryDate:       models.MustDate("2024-01-20"),
		Amount:          dec("500"),
		CashBankID:      intPtr(1),
	})
	require.NoError(t, err)

	payment, err := svc.Create(ctx, testScope, &models.CashBookRequest{
		TransactionType: models.CashPayment,
		EntryDate:       models.MustDate("2024-01-20"),
		Amount:          dec("250.125"),
		OppBankID:       intPtr(2),
	})
	require.NoError(t, err)

	assert.Equal(t, "R-001", receipt.VoucherNo)
	assert.Equal(t, "P-001", payment.VoucherNo)
	assert.Equal(t, "250.13", payment.Amount.StringFixed(2))
	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TypeCashCreated, pub.events[1].Type)
}

func TestCashBookValidation(t *testing.T) {
	date := models.MustDate("2024-01-20")
	tests := []struct {
		name  string
		req   *models.CashBookRequest
		field string
	}{
		{"bad type", &models.CashBookRequest{TransactionType: "Journal", EntryDate: date, Amount: dec("1"), CashBankID: intPtr(1)}, "transaction_type"},
		{"missing date", &models.CashBookRequest{TransactionType: models.CashReceipt, Amount: dec("1"), CashBankID: intPtr(1)}, "entry_date"},
		{"zero amount", &models.CashBookRequest{TransactionType: models.CashReceipt, EntryDate: date, CashBankID: intPtr(1)}, "amount"},
		{"negative amount", &models.CashBookRequest{TransactionType: models.CashReceipt, EntryDate: date, Amount: dec("-5"), CashBankID: intPtr(1)}, "amount"},
		{"no ledger", &models.CashBookRequest{TransactionType: models.CashReceipt, EntryDate: date, Amount: dec("1")}, "cash_bank_id"},
		{"same ledger", &models.CashBookRequest{TransactionType: models.CashReceipt, EntryDate: date, Amount: dec("1"), CashBankID: intPtr(1), OppBankID: intPtr(1)}, "opp_bank_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, entries, _ := newCashBookFixture()
			_, err := svc.Create(context.Background(), testScope, tt.req)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tt.field, e.Field)
			assert.Empty(t, entries.entries)
		})
	}
}

func TestCashBookUnknownLedger(t *testing.T) {
	svc, _, _ := newCashBookFixture()

	_, err := svc.Create(context.Background(), testScope, &models.CashBookRequest{
		TransactionType: models.CashReceipt,
		EntryDate:       models.MustDate("2024-01-20"),
		Amount:          dec("10"),
		CashBankID:      intPtr(1),
		OppBankID:       intPtr(42),
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCashBookListRejectsUnknownType(t *testing.T) {
	svc, _, _ := newCashBookFixture()

	_, err := svc.List(context.Background(), testScope, models.CashBookFilter{TransactionType: "Contra"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSequenceNextNumber(t *testing.T) {
	svc := NewSequenceService(&fakeSequences{next: map[sequence.Kind]int64{sequence.KindCustomerBill: 41}}, sequence.DefaultPrefixes)
	ctx := context.Background()

	next, err := svc.NextNumber(ctx, testScope, "customer_bill")
	require.NoError(t, err)
	assert.Equal(t, "CB-042", next)

	next, err = svc.NextNumber(ctx, testScope, "payment")
	require.NoError(t, err)
	assert.Equal(t, "P-001", next)

	_, err = svc.NextNumber(ctx, testScope, "invoice")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
