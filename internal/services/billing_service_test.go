package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/events"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

type billingFixture struct {
	svc       *BillingService
	tx        *fakeTx
	bills     *fakeBills
	items     *fakeSoudaItems
	sequences *fakeSequences
	opening   *fakeOpening
	events    *recordingPublisher
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		tx:        &fakeTx{},
		bills:     newFakeBills(),
		items:     newFakeSoudaItems(),
		sequences: &fakeSequences{},
		opening:   &fakeOpening{balance: dec("1500")},
		events:    &recordingPublisher{},
	}
	f.opening.tx = f.tx
	ledgers := newFakeLedgers(customerLedger(1, "C001"), farmerLedger(2, "F001"))
	f.svc = NewBillingService(f.tx, ledgers, f.bills, f.items, f.sequences, f.opening,
		sequence.DefaultPrefixes, f.events, zap.NewNop())
	return f
}

var testScope = models.Scope{CompanyID: 1, YearID: 1, UserID: 7}

func customerBillRequest(date string, items ...models.BillItemRequest) *models.BillRequest {
	if len(items) == 0 {
		items = []models.BillItemRequest{{ProductName: "Onion", Weight: dec("100"), Rate: dec("2")}}
	}
	return &models.BillRequest{
		PartyNo:  "C001",
		BillDate: models.MustDate(date),
		Charges:  dec("20"),
		Items:    items,
	}
}

func TestBillingCreateCustomerBill(t *testing.T) {
	f := newBillingFixture()

	bill, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.NoError(t, err)

	assert.Equal(t, "CB-001", bill.BillNo)
	assert.Equal(t, 1, bill.ID)
	assert.True(t, dec("200").Equal(bill.TotalAmount))
	assert.True(t, dec("220").Equal(bill.FinalAmount))
	assert.True(t, dec("1500").Equal(bill.PreviousBalance))
	assert.Equal(t, 7, bill.CreatedBy)
	assert.Equal(t, "2024-01-20", models.NewDate(f.opening.asOf).String())

	require.Len(t, f.events.events, 1)
	assert.Equal(t, events.TypeBillCreated, f.events.events[0].Type)
	assert.Equal(t, "CB-001", f.events.events[0].DocumentNo)
}

func TestBillingCreateFarmerBillDeductsCharges(t *testing.T) {
	f := newBillingFixture()
	req := &models.BillRequest{
		PartyNo:  "F001",
		BillDate: models.MustDate("2024-01-20"),
		Charges:  dec("35.50"),
		Items:    []models.BillItemRequest{{ProductName: "Potato", Quantity: dec("10"), Rate: dec("50")}},
	}

	bill, err := f.svc.Create(context.Background(), testScope, models.BillKindFarmer, req)
	require.NoError(t, err)

	assert.Equal(t, "FB-001", bill.BillNo)
	assert.True(t, dec("500").Equal(bill.TotalAmount))
	assert.True(t, dec("464.50").Equal(bill.FinalAmount))
}

func TestBillingCreateRejectsExcessDeductions(t *testing.T) {
	f := newBillingFixture()
	req := &models.BillRequest{
		PartyNo:  "F001",
		BillDate: models.MustDate("2024-01-20"),
		Charges:  dec("600"),
		Items:    []models.BillItemRequest{{ProductName: "Potato", Quantity: dec("10"), Rate: dec("50")}},
	}

	_, err := f.svc.Create(context.Background(), testScope, models.BillKindFarmer, req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, f.tx.calls)
}

func TestBillingCreateDuplicatePartyDate(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus())
	assert.Len(t, f.bills.bills, 1)

	// the farmer book is separate
	farmer := &models.BillRequest{
		PartyNo:  "F001",
		BillDate: models.MustDate("2024-01-20"),
		Items:    []models.BillItemRequest{{ProductName: "Onion", Weight: dec("1"), Rate: dec("1")}},
	}
	_, err = f.svc.Create(ctx, testScope, models.BillKindFarmer, farmer)
	require.NoError(t, err)
}

func TestBillingCreateUnknownParty(t *testing.T) {
	f := newBillingFixture()
	req := customerBillRequest("2024-01-20")
	req.PartyNo = "C999"

	_, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Zero(t, f.tx.calls)
}

func TestBillingCreateValidation(t *testing.T) {
	item := models.BillItemRequest{ProductName: "Onion", Weight: dec("1"), Rate: dec("1")}
	tests := []struct {
		name  string
		req   *models.BillRequest
		field string
	}{
		{"nil body", nil, "body"},
		{"missing party", &models.BillRequest{BillDate: models.MustDate("2024-01-01"), Items: []models.BillItemRequest{item}}, "party_no"},
		{"missing date", &models.BillRequest{PartyNo: "C001", Items: []models.BillItemRequest{item}}, "bill_date"},
		{"no items", &models.BillRequest{PartyNo: "C001", BillDate: models.MustDate("2024-01-01")}, "items"},
		{"negative charges", &models.BillRequest{PartyNo: "C001", BillDate: models.MustDate("2024-01-01"), Charges: dec("-1"), Items: []models.BillItemRequest{item}}, "charges"},
		{"missing product", &models.BillRequest{PartyNo: "C001", BillDate: models.MustDate("2024-01-01"), Items: []models.BillItemRequest{{Weight: dec("1"), Rate: dec("1")}}}, "items[0].product_name"},
		{"no quantity", &models.BillRequest{PartyNo: "C001", BillDate: models.MustDate("2024-01-01"), Items: []models.BillItemRequest{{ProductName: "Onion", Rate: dec("1")}}}, "items[0]"},
		{"negative rate", &models.BillRequest{PartyNo: "C001", BillDate: models.MustDate("2024-01-01"), Items: []models.BillItemRequest{{ProductName: "Onion", Weight: dec("1"), Rate: dec("-1")}}}, "items[0].rate"},
		{"souda item twice", &models.BillRequest{PartyNo: "C001", BillDate: models.MustDate("2024-01-01"), Items: []models.BillItemRequest{
			{SoudaItemID: intPtr(4), ProductName: "Onion", Weight: dec("1"), Rate: dec("1")},
			{SoudaItemID: intPtr(4), ProductName: "Onion", Weight: dec("1"), Rate: dec("1")},
		}}, "items[1].souda_item_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture()
			_, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, tt.req)
			require.Error(t, err)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestBillingCreateExplicitAmountWins(t *testing.T) {
	f := newBillingFixture()
	req := customerBillRequest("2024-01-20", models.BillItemRequest{
		ProductName: "Onion", Weight: dec("100"), Rate: dec("2"), Amount: decPtr("150.255"),
	})

	bill, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, req)
	require.NoError(t, err)
	assert.Equal(t, "150.26", bill.Items[0].Amount.StringFixed(2))
}

func TestBillingCreateMarksSoudaItems(t *testing.T) {
	f := newBillingFixture()
	req := customerBillRequest("2024-01-20",
		models.BillItemRequest{SoudaItemID: intPtr(11), ProductName: "Onion", Weight: dec("10"), Rate: dec("2")},
		models.BillItemRequest{SoudaItemID: intPtr(12), ProductName: "Garlic", Weight: dec("5"), Rate: dec("4")},
		models.BillItemRequest{ProductName: "Bags", Quantity: dec("3"), Rate: dec("5")},
	)

	_, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, req)
	require.NoError(t, err)

	require.Len(t, f.items.marks, 1)
	assert.Equal(t, []int{11, 12}, f.items.marks[0])
	assert.True(t, f.items.billed[models.BillKindCustomer][11])
	assert.False(t, f.items.billed[models.BillKindFarmer][11])
}

func TestBillingCreateAlreadyBilledItemRollsBack(t *testing.T) {
	f := newBillingFixture()
	f.items.billed[models.BillKindCustomer][11] = true
	req := customerBillRequest("2024-01-20",
		models.BillItemRequest{SoudaItemID: intPtr(11), ProductName: "Onion", Weight: dec("10"), Rate: dec("2")},
	)

	_, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, req)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, f.events.events)
}

func TestBillingCreateSequenceFailureIsInternal(t *testing.T) {
	f := newBillingFixture()
	f.sequences.err = errBroker

	_, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorIs(t, err, errBroker)
}

func TestBillingCreatePublishFailureDoesNotFail(t *testing.T) {
	f := newBillingFixture()
	f.events.err = errBroker

	bill, err := f.svc.Create(context.Background(), testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.NoError(t, err)
	assert.Equal(t, "CB-001", bill.BillNo)
}

func TestBillingNumbersIncrease(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-21"))
	require.NoError(t, err)

	assert.Equal(t, "CB-001", first.BillNo)
	assert.Equal(t, "CB-002", second.BillNo)
}

func TestBillingUpdateKeepsNumberAndMarksOnlyNewItems(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-20",
		models.BillItemRequest{SoudaItemID: intPtr(11), ProductName: "Onion", Weight: dec("10"), Rate: dec("2")},
	))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, testScope, models.BillKindCustomer, created.ID, customerBillRequest("2024-01-20",
		models.BillItemRequest{SoudaItemID: intPtr(11), ProductName: "Onion", Weight: dec("10"), Rate: dec("3")},
		models.BillItemRequest{SoudaItemID: intPtr(12), ProductName: "Garlic", Weight: dec("1"), Rate: dec("5")},
	))
	require.NoError(t, err)

	assert.Equal(t, created.BillNo, updated.BillNo)
	assert.True(t, dec("35").Equal(updated.TotalAmount))
	require.Len(t, f.items.marks, 2)
	assert.Equal(t, []int{12}, f.items.marks[1])
	assert.Equal(t, events.TypeBillUpdated, f.events.events[1].Type)
}

func TestBillingUpdateDuplicateDate(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-21"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, testScope, models.BillKindCustomer, second.ID, customerBillRequest("2024-01-20"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// same date as itself is fine
	_, err = f.svc.Update(ctx, testScope, models.BillKindCustomer, second.ID, customerBillRequest("2024-01-21"))
	require.NoError(t, err)
}

func TestBillingUpdateMissingBill(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.Update(context.Background(), testScope, models.BillKindCustomer, 99, customerBillRequest("2024-01-20"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestBillingDeleteKeepsSoudaFlags(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-20",
		models.BillItemRequest{SoudaItemID: intPtr(11), ProductName: "Onion", Weight: dec("10"), Rate: dec("2")},
	))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, testScope, models.BillKindCustomer, created.ID))
	assert.Empty(t, f.bills.bills)
	assert.True(t, f.items.billed[models.BillKindCustomer][11])
	assert.Equal(t, events.TypeBillDeleted, f.events.events[len(f.events.events)-1].Type)

	err = f.svc.Delete(ctx, testScope, models.BillKindCustomer, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestBillingCandidatesValidation(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	_, err := f.svc.Candidates(ctx, testScope, models.BillKindCustomer, " ", models.MustDate("2024-01-20"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Candidates(ctx, testScope, models.BillKindCustomer, "C001", models.Date{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.Candidates(ctx, testScope, models.BillKindCustomer, "C001", models.MustDate("2024-01-20"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.items.listHits)
}

func TestNewlyReferenced(t *testing.T) {
	existing := &models.Bill{PartyNo: "C001", Items: []models.BillItem{{SoudaItemID: intPtr(1)}, {SoudaItemID: intPtr(2)}}}

	same := &models.Bill{PartyNo: "C001", Items: []models.BillItem{{SoudaItemID: intPtr(2)}, {SoudaItemID: intPtr(3)}, {}}}
	assert.Equal(t, []int{3}, newlyReferenced(existing, same))

	moved := &models.Bill{PartyNo: "C002", Items: []models.BillItem{{SoudaItemID: intPtr(2)}}}
	assert.Equal(t, []int{2}, newlyReferenced(existing, moved))
}

func TestBillingPreviousBalanceReadInsideTransaction(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	bill, err := f.svc.Create(ctx, testScope, models.BillKindCustomer, customerBillRequest("2024-01-20"))
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, testScope, models.BillKindCustomer, bill.ID, customerBillRequest("2024-01-21"))
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true}, f.opening.inTx)
}
