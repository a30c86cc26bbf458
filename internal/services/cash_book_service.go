package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/events"
	"mandi-backend/internal/metrics"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

// CashBookService records receipt and payment vouchers
type CashBookService struct {
	tx        TxRunner
	ledgers   LedgerLookup
	entries   CashBookStore
	sequences SequenceAllocator
	prefixes  sequence.Prefixes
	events    events.Publisher
	log       *zap.Logger
}

// NewCashBookService wires the voucher workflow. Receipts and payments draw
// from separate number series.
func NewCashBookService(
	tx TxRunner,
	ledgers LedgerLookup,
	entries CashBookStore,
	sequences SequenceAllocator,
	prefixes sequence.Prefixes,
	publisher events.Publisher,
	log *zap.Logger,
) *CashBookService {
	return &CashBookService{
		tx:        tx,
		ledgers:   ledgers,
		entries:   entries,
		sequences: sequences,
		prefixes:  prefixes,
		events:    publisher,
		log:       log.Named("cash_book"),
	}
}

// Create numbers and stores a voucher. Receipts and payments have separate
// number series.
func (s *CashBookService) Create(ctx context.Context, scope models.Scope, req *models.CashBookRequest) (*models.CashBookEntry, error) {
	if err := validateCashBook(req); err != nil {
		return nil, err
	}
	for _, id := range []*int{req.CashBankID, req.OppBankID} {
		if id == nil {
			continue
		}
		if _, err := s.ledgers.GetByID(ctx, scope, *id); err != nil {
			return nil, err
		}
	}

	entry := &models.CashBookEntry{
		CompanyID:       scope.CompanyID,
		YearID:          scope.YearID,
		TransactionType: req.TransactionType,
		EntryDate:       req.EntryDate,
		Amount:          req.Amount.Round(amountPlaces),
		CashBankID:      req.CashBankID,
		OppBankID:       req.OppBankID,
		Narration:       strings.TrimSpace(req.Narration),
		CreatedBy:       scope.UserID,
	}
	kind := cashSequenceKind(entry.TransactionType)

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		no, err := s.sequences.NextTx(ctx, tx, scope, kind, s.prefixes.For(kind))
		if err != nil {
			return apperr.EnsureInternal("allocate voucher number", err)
		}
		entry.VoucherNo = no
		return apperr.EnsureInternal("persist voucher", s.entries.CreateTx(ctx, tx, entry))
	})
	if err != nil {
		logFailure(s.log, "create voucher", err)
		return nil, err
	}

	metrics.DocumentNumbersIssued.WithLabelValues(string(kind)).Inc()
	publish(ctx, s.events, s.log, events.New(events.TypeCashCreated, scope, entry.VoucherNo, map[string]any{
		"entry_id":         entry.ID,
		"transaction_type": entry.TransactionType,
		"amount":           entry.Amount.StringFixed(amountPlaces),
	}))
	return entry, nil
}

func (s *CashBookService) Get(ctx context.Context, scope models.Scope, id int) (*models.CashBookEntry, error) {
	return s.entries.GetByID(ctx, scope, id)
}

func (s *CashBookService) List(ctx context.Context, scope models.Scope, filter models.CashBookFilter) ([]models.CashBookEntry, error) {
	if filter.TransactionType != "" && !filter.TransactionType.Valid() {
		return nil, apperr.Validation("type", "must be Receipt or Payment")
	}
	return s.entries.List(ctx, scope, filter)
}

func (s *CashBookService) Delete(ctx context.Context, scope models.Scope, id int) error {
	return s.entries.Delete(ctx, scope, id)
}

func validateCashBook(req *models.CashBookRequest) error {
	if req == nil {
		return apperr.Validation("body", "is required")
	}
	if !req.TransactionType.Valid() {
		return apperr.Validation("transaction_type", "must be Receipt or Payment")
	}
	if req.EntryDate.IsZero() {
		return apperr.Validation("entry_date", "is required")
	}
	if !req.Amount.IsPositive() {
		return apperr.Validation("amount", "must be positive")
	}
	if req.CashBankID == nil && req.OppBankID == nil {
		return apperr.Validation("cash_bank_id", "cash_bank_id or opp_bank_id is required")
	}
	if req.CashBankID != nil && req.OppBankID != nil && *req.CashBankID == *req.OppBankID {
		return apperr.Validation("opp_bank_id", "must differ from cash_bank_id")
	}
	return nil
}
