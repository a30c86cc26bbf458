package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/events"
	"mandi-backend/internal/metrics"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

// BillState is a step of the bill creation workflow
type BillState string

const (
	StateValidating      BillState = "validating"
	StateBalanceComputed BillState = "balance_computed"
	StateNumberAllocated BillState = "number_allocated"
	StatePersisted       BillState = "persisted"
	StateItemsLinked     BillState = "items_linked"
	StateDone            BillState = "done"
	StateRejected        BillState = "rejected"
)

// billWorkflow tracks one request through the states. Rejection is only
// possible while validating; later failures roll the transaction back.
type billWorkflow struct {
	kind  models.BillKind
	state BillState
	log   *zap.Logger
}

func (w *billWorkflow) advance(to BillState) {
	w.log.Debug("bill workflow", zap.String("from", string(w.state)), zap.String("to", string(to)))
	w.state = to
}

func (w *billWorkflow) reject(reason string, err error) error {
	if w.state == StateValidating {
		w.state = StateRejected
		metrics.BillsRejected.WithLabelValues(string(w.kind), reason).Inc()
		w.log.Info("bill rejected", zap.String("reason", reason), zap.Error(err))
	}
	return err
}

// BillingService creates, edits and removes customer and farmer bills
type BillingService struct {
	tx        TxRunner
	ledgers   LedgerLookup
	bills     BillStore
	soudas    SoudaItemMarker
	sequences SequenceAllocator
	opening   OpeningBalancer
	prefixes  sequence.Prefixes
	events    events.Publisher
	log       *zap.Logger
}

// NewBillingService wires the bill workflow. opening is usually the
// statement engine's calculator so previous_balance matches the statement.
func NewBillingService(
	tx TxRunner,
	ledgers LedgerLookup,
	bills BillStore,
	soudas SoudaItemMarker,
	sequences SequenceAllocator,
	opening OpeningBalancer,
	prefixes sequence.Prefixes,
	publisher events.Publisher,
	log *zap.Logger,
) *BillingService {
	return &BillingService{
		tx:        tx,
		ledgers:   ledgers,
		bills:     bills,
		soudas:    soudas,
		sequences: sequences,
		opening:   opening,
		prefixes:  prefixes,
		events:    publisher,
		log:       log.Named("billing"),
	}
}

// Create runs the bill workflow: validate, reject duplicates for the party
// and date, compute the previous balance, allocate a number, persist, then
// mark the consumed souda items billed. Everything after validation shares
// one transaction.
func (s *BillingService) Create(ctx context.Context, scope models.Scope, kind models.BillKind, req *models.BillRequest) (*models.Bill, error) {
	wf := &billWorkflow{kind: kind, state: StateValidating, log: s.log}

	bill, err := buildBill(scope, kind, req)
	if err != nil {
		return nil, wf.reject("validation", err)
	}

	ledger, err := s.ledgers.GetByPartyNo(ctx, scope, kind.LedgerKind(), bill.PartyNo)
	if err != nil {
		return nil, wf.reject("ledger", err)
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		exists, err := s.bills.ExistsForPartyDateTx(ctx, tx, scope, kind, bill.PartyNo, bill.BillDate, 0)
		if err != nil {
			return apperr.Internal("check duplicate bill", err)
		}
		if exists {
			return wf.reject("duplicate", apperr.DuplicateBill(bill.PartyNo, bill.BillDate.String()))
		}

		previous, err := s.opening.ComputeTx(ctx, tx, scope, ledger, bill.BillDate.Time)
		if err != nil {
			return err
		}
		bill.PreviousBalance = previous
		wf.advance(StateBalanceComputed)

		bill.BillNo, err = s.sequences.NextTx(ctx, tx, scope, billSequenceKind(kind), s.prefixes.For(billSequenceKind(kind)))
		if err != nil {
			return apperr.EnsureInternal("allocate bill number", err)
		}
		wf.advance(StateNumberAllocated)

		if err := s.bills.CreateTx(ctx, tx, bill); err != nil {
			return apperr.EnsureInternal("persist bill", err)
		}
		wf.advance(StatePersisted)

		if err := s.soudas.MarkBilledTx(ctx, tx, scope, kind, bill.PartyNo, bill.SoudaItemIDs()); err != nil {
			return apperr.EnsureInternal("mark souda items billed", err)
		}
		wf.advance(StateItemsLinked)
		return nil
	})
	if err != nil {
		logFailure(s.log, "create bill", err)
		return nil, err
	}

	wf.advance(StateDone)
	metrics.DocumentNumbersIssued.WithLabelValues(string(billSequenceKind(kind))).Inc()
	publish(ctx, s.events, s.log, events.New(events.TypeBillCreated, scope, bill.BillNo, billSummary(bill)))
	s.log.Info("bill created",
		zap.String("kind", string(kind)),
		zap.String("bill_no", bill.BillNo),
		zap.String("party_no", bill.PartyNo),
		zap.String("final_amount", bill.FinalAmount.StringFixed(amountPlaces)),
	)
	return bill, nil
}

// Update replaces a bill's header fields and all of its items. The number is
// kept. Newly referenced souda items are marked billed; dropped ones keep
// their flag.
func (s *BillingService) Update(ctx context.Context, scope models.Scope, kind models.BillKind, id int, req *models.BillRequest) (*models.Bill, error) {
	bill, err := buildBill(scope, kind, req)
	if err != nil {
		return nil, err
	}

	ledger, err := s.ledgers.GetByPartyNo(ctx, scope, kind.LedgerKind(), bill.PartyNo)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.bills.GetForUpdateTx(ctx, tx, scope, kind, id)
		if err != nil {
			return err
		}

		exists, err := s.bills.ExistsForPartyDateTx(ctx, tx, scope, kind, bill.PartyNo, bill.BillDate, id)
		if err != nil {
			return apperr.Internal("check duplicate bill", err)
		}
		if exists {
			return apperr.DuplicateBill(bill.PartyNo, bill.BillDate.String())
		}

		previous, err := s.opening.ComputeTx(ctx, tx, scope, ledger, bill.BillDate.Time)
		if err != nil {
			return err
		}

		bill.ID = existing.ID
		bill.BillNo = existing.BillNo
		bill.CreatedBy = existing.CreatedBy
		bill.PreviousBalance = previous

		if err := s.bills.UpdateTx(ctx, tx, bill); err != nil {
			return apperr.EnsureInternal("update bill", err)
		}

		fresh := newlyReferenced(existing, bill)
		if err := s.soudas.MarkBilledTx(ctx, tx, scope, kind, bill.PartyNo, fresh); err != nil {
			return apperr.EnsureInternal("mark souda items billed", err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "update bill", err)
		return nil, err
	}

	publish(ctx, s.events, s.log, events.New(events.TypeBillUpdated, scope, bill.BillNo, billSummary(bill)))
	return bill, nil
}

// Delete removes a bill and its items. Souda items it consumed stay billed,
// so they do not reappear as candidates.
func (s *BillingService) Delete(ctx context.Context, scope models.Scope, kind models.BillKind, id int) error {
	var billNo string
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.bills.GetForUpdateTx(ctx, tx, scope, kind, id)
		if err != nil {
			return err
		}
		billNo = existing.BillNo
		return apperr.EnsureInternal("delete bill", s.bills.DeleteTx(ctx, tx, scope, kind, id))
	})
	if err != nil {
		logFailure(s.log, "delete bill", err)
		return err
	}

	publish(ctx, s.events, s.log, events.New(events.TypeBillDeleted, scope, billNo, map[string]any{"kind": kind, "bill_id": id}))
	return nil
}

func (s *BillingService) Get(ctx context.Context, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error) {
	return s.bills.GetByID(ctx, scope, kind, id)
}

func (s *BillingService) List(ctx context.Context, scope models.Scope, kind models.BillKind, filter models.BillFilter) ([]models.Bill, error) {
	return s.bills.List(ctx, scope, kind, filter)
}

// Candidates lists souda items of partyNo on date not yet billed on this side
func (s *BillingService) Candidates(ctx context.Context, scope models.Scope, kind models.BillKind, partyNo string, date models.Date) ([]models.CandidateItem, error) {
	partyNo = strings.TrimSpace(partyNo)
	if partyNo == "" {
		return nil, apperr.Validation("party_no", "is required")
	}
	if date.IsZero() {
		return nil, apperr.Validation("date", "is required")
	}
	return s.soudas.ListCandidates(ctx, scope, kind, partyNo, date)
}

// buildBill validates req and derives item and bill amounts
func buildBill(scope models.Scope, kind models.BillKind, req *models.BillRequest) (*models.Bill, error) {
	if req == nil {
		return nil, apperr.Validation("body", "is required")
	}
	partyNo := strings.TrimSpace(req.PartyNo)
	if partyNo == "" {
		return nil, apperr.Validation("party_no", "is required")
	}
	if req.BillDate.IsZero() {
		return nil, apperr.Validation("bill_date", "is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("items", "at least one item is required")
	}
	if req.Charges.IsNegative() {
		return nil, apperr.Validation("charges", "must not be negative")
	}

	bill := &models.Bill{
		CompanyID: scope.CompanyID,
		YearID:    scope.YearID,
		Kind:      kind,
		BillDate:  req.BillDate,
		PartyNo:   partyNo,
		Charges:   req.Charges.Round(amountPlaces),
		Remarks:   strings.TrimSpace(req.Remarks),
		CreatedBy: scope.UserID,
		Items:     make([]models.BillItem, 0, len(req.Items)),
	}

	seen := map[int]bool{}
	total := decimal.Zero
	for i, in := range req.Items {
		field := itemField("items", i)
		if strings.TrimSpace(in.ProductName) == "" {
			return nil, apperr.Validation(field+".product_name", "is required")
		}
		if err := checkLine(field, in.Quantity, in.Weight, in.Rate, in.Amount); err != nil {
			return nil, err
		}
		if in.SoudaItemID != nil {
			if seen[*in.SoudaItemID] {
				return nil, apperr.Validation(field+".souda_item_id", "souda item %d listed twice", *in.SoudaItemID)
			}
			seen[*in.SoudaItemID] = true
		}

		amount := lineAmount(in.Quantity, in.Weight, in.Rate, in.Amount)
		total = total.Add(amount)
		bill.Items = append(bill.Items, models.BillItem{
			SoudaItemID: in.SoudaItemID,
			ProductName: strings.TrimSpace(in.ProductName),
			Quantity:    in.Quantity,
			Weight:      in.Weight,
			Rate:        in.Rate,
			Amount:      amount,
		})
	}

	bill.TotalAmount = total
	bill.FinalAmount = finalAmount(kind, total, bill.Charges)
	if bill.FinalAmount.IsNegative() {
		return nil, apperr.Validation("charges", "deductions exceed the bill total")
	}
	return bill, nil
}

// newlyReferenced returns the souda items updated references that existing
// did not. A change of party makes every reference new.
func newlyReferenced(existing, updated *models.Bill) []int {
	if existing.PartyNo != updated.PartyNo {
		return updated.SoudaItemIDs()
	}
	had := map[int]bool{}
	for _, id := range existing.SoudaItemIDs() {
		had[id] = true
	}
	var fresh []int
	for _, id := range updated.SoudaItemIDs() {
		if !had[id] {
			fresh = append(fresh, id)
		}
	}
	return fresh
}

func billSummary(bill *models.Bill) map[string]any {
	return map[string]any{
		"kind":         bill.Kind,
		"bill_id":      bill.ID,
		"party_no":     bill.PartyNo,
		"bill_date":    bill.BillDate.String(),
		"final_amount": bill.FinalAmount.StringFixed(amountPlaces),
		"items":        len(bill.Items),
	}
}
