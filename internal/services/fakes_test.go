package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/events"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

type fakeTx struct {
	calls  int
	active bool
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	f.active = true
	defer func() { f.active = false }()
	return fn(nil)
}

type fakeLedgers struct {
	byID map[int]*models.Ledger
}

func newFakeLedgers(ledgers ...*models.Ledger) *fakeLedgers {
	f := &fakeLedgers{byID: map[int]*models.Ledger{}}
	for _, l := range ledgers {
		f.byID[l.ID] = l
	}
	return f
}

func (f *fakeLedgers) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Ledger, error) {
	if l, ok := f.byID[id]; ok {
		return l, nil
	}
	return nil, apperr.NotFound("ledger %d not found", id)
}

func (f *fakeLedgers) GetByPartyNo(ctx context.Context, scope models.Scope, kind models.LedgerKind, partyNo string) (*models.Ledger, error) {
	for _, l := range f.byID {
		if l.Kind == kind && l.CorrelationKey() == partyNo {
			return l, nil
		}
	}
	return nil, apperr.NotFound("%s %s not found", kind, partyNo)
}

type fakeSequences struct {
	next map[sequence.Kind]int64
	err  error
}

func (f *fakeSequences) NextTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind sequence.Kind, prefix string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.next == nil {
		f.next = map[sequence.Kind]int64{}
	}
	f.next[kind]++
	return sequence.Format(prefix, f.next[kind]), nil
}

func (f *fakeSequences) Peek(ctx context.Context, scope models.Scope, kind sequence.Kind, prefix string) (string, error) {
	return sequence.Format(prefix, f.next[kind]+1), nil
}

type fakeOpening struct {
	balance decimal.Decimal
	asOf    time.Time
	tx      *fakeTx
	inTx    []bool
}

func (f *fakeOpening) ComputeTx(ctx context.Context, tx pgx.Tx, scope models.Scope, ledger *models.Ledger, asOf time.Time) (decimal.Decimal, error) {
	f.asOf = asOf
	if f.tx != nil {
		f.inTx = append(f.inTx, f.tx.active)
	}
	return f.balance, nil
}

type fakeBills struct {
	bills  map[int]*models.Bill
	nextID int
}

func newFakeBills() *fakeBills {
	return &fakeBills{bills: map[int]*models.Bill{}}
}

func (f *fakeBills) ExistsForPartyDateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, partyNo string, date models.Date, excludeID int) (bool, error) {
	for _, b := range f.bills {
		if b.Kind == kind && b.PartyNo == partyNo && b.BillDate.Equal(date) && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBills) CreateTx(ctx context.Context, tx pgx.Tx, bill *models.Bill) error {
	f.nextID++
	bill.ID = f.nextID
	copied := *bill
	f.bills[bill.ID] = &copied
	return nil
}

func (f *fakeBills) UpdateTx(ctx context.Context, tx pgx.Tx, bill *models.Bill) error {
	copied := *bill
	f.bills[bill.ID] = &copied
	return nil
}

func (f *fakeBills) DeleteTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, id int) error {
	delete(f.bills, id)
	return nil
}

func (f *fakeBills) GetByID(ctx context.Context, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error) {
	if b, ok := f.bills[id]; ok && b.Kind == kind {
		return b, nil
	}
	return nil, apperr.NotFound("bill %d not found", id)
}

func (f *fakeBills) GetForUpdateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error) {
	return f.GetByID(ctx, scope, kind, id)
}

func (f *fakeBills) List(ctx context.Context, scope models.Scope, kind models.BillKind, filter models.BillFilter) ([]models.Bill, error) {
	var out []models.Bill
	for _, b := range f.bills {
		if b.Kind == kind {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeSoudaItems records which items each side has billed
type fakeSoudaItems struct {
	billed   map[models.BillKind]map[int]bool
	marks    [][]int
	markErr  error
	listHits int
}

func newFakeSoudaItems() *fakeSoudaItems {
	return &fakeSoudaItems{billed: map[models.BillKind]map[int]bool{
		models.BillKindCustomer: {},
		models.BillKindFarmer:   {},
	}}
}

func (f *fakeSoudaItems) MarkBilledTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, partyNo string, ids []int) error {
	f.marks = append(f.marks, ids)
	if f.markErr != nil {
		return f.markErr
	}
	for _, id := range ids {
		if f.billed[kind][id] {
			return apperr.Conflict("souda item %d already billed", id)
		}
	}
	for _, id := range ids {
		f.billed[kind][id] = true
	}
	return nil
}

func (f *fakeSoudaItems) ListCandidates(ctx context.Context, scope models.Scope, kind models.BillKind, partyNo string, date models.Date) ([]models.CandidateItem, error) {
	f.listHits++
	return nil, nil
}

type fakeSoudas struct {
	soudas map[int]*models.Souda
	nextID int
}

func newFakeSoudas() *fakeSoudas {
	return &fakeSoudas{soudas: map[int]*models.Souda{}}
}

func (f *fakeSoudas) CreateTx(ctx context.Context, tx pgx.Tx, souda *models.Souda) error {
	f.nextID++
	souda.ID = f.nextID
	copied := *souda
	f.soudas[souda.ID] = &copied
	return nil
}

func (f *fakeSoudas) UpdateTx(ctx context.Context, tx pgx.Tx, souda *models.Souda) error {
	copied := *souda
	f.soudas[souda.ID] = &copied
	return nil
}

func (f *fakeSoudas) DeleteTx(ctx context.Context, tx pgx.Tx, scope models.Scope, id int) error {
	delete(f.soudas, id)
	return nil
}

func (f *fakeSoudas) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Souda, error) {
	if s, ok := f.soudas[id]; ok {
		return s, nil
	}
	return nil, apperr.NotFound("souda %d not found", id)
}

func (f *fakeSoudas) GetForUpdateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, id int) (*models.Souda, error) {
	return f.GetByID(ctx, scope, id)
}

func (f *fakeSoudas) List(ctx context.Context, scope models.Scope, from, to models.Date) ([]models.Souda, error) {
	var out []models.Souda
	for _, s := range f.soudas {
		out = append(out, *s)
	}
	return out, nil
}

type fakeCashBook struct {
	entries map[int]*models.CashBookEntry
	nextID  int
}

func newFakeCashBook() *fakeCashBook {
	return &fakeCashBook{entries: map[int]*models.CashBookEntry{}}
}

func (f *fakeCashBook) CreateTx(ctx context.Context, tx pgx.Tx, entry *models.CashBookEntry) error {
	f.nextID++
	entry.ID = f.nextID
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeCashBook) GetByID(ctx context.Context, scope models.Scope, id int) (*models.CashBookEntry, error) {
	if e, ok := f.entries[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("cash book entry %d not found", id)
}

func (f *fakeCashBook) List(ctx context.Context, scope models.Scope, filter models.CashBookFilter) ([]models.CashBookEntry, error) {
	var out []models.CashBookEntry
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeCashBook) Delete(ctx context.Context, scope models.Scope, id int) error {
	if _, ok := f.entries[id]; !ok {
		return apperr.NotFound("cash book entry %d not found", id)
	}
	delete(f.entries, id)
	return nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

var errBroker = errors.New("broker unavailable")

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func customerLedger(id int, no string) *models.Ledger {
	return &models.Ledger{ID: id, CompanyID: 1, YearID: 1, Name: fmt.Sprintf("Customer %s", no), Kind: models.LedgerKindCustomer, CustomerNo: strPtr(no)}
}

func farmerLedger(id int, no string) *models.Ledger {
	return &models.Ledger{ID: id, CompanyID: 1, YearID: 1, Name: fmt.Sprintf("Farmer %s", no), Kind: models.LedgerKindFarmer, FarmerNo: strPtr(no)}
}
