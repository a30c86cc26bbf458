package statement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/metrics"
	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

// LedgerReader loads the ledger a statement is requested for
type LedgerReader interface {
	GetByID(ctx context.Context, scope models.Scope, id int) (*models.Ledger, error)
}

// Service answers statement and opening-balance requests
type Service struct {
	ledgers LedgerReader
	opening *OpeningBalanceCalculator
	merger  *Merger
	log     *zap.Logger
}

// NewService wires the calculator and merger over the same sources
func NewService(ledgers LedgerReader, log *zap.Logger, sources ...BalanceSource) *Service {
	return &Service{
		ledgers: ledgers,
		opening: NewOpeningBalanceCalculator(sources...),
		merger:  NewMerger(sources...),
		log:     log.Named("statement"),
	}
}

// Calculator exposes the opening balance calculator for the billing workflow
func (s *Service) Calculator() *OpeningBalanceCalculator {
	return s.opening
}

// Statement builds the statement of ledgerID between from and to inclusive
func (s *Service) Statement(ctx context.Context, scope models.Scope, ledgerID int, from, to time.Time) (*models.Statement, error) {
	start := time.Now()

	if from.IsZero() {
		return nil, apperr.Validation("from", "is required")
	}
	if to.IsZero() {
		return nil, apperr.Validation("to", "is required")
	}
	from, to = timeutil.DateOnly(from), timeutil.DateOnly(to)
	if to.Before(from) {
		return nil, apperr.Validation("to", "must not be before from")
	}

	ledger, err := s.ledgers.GetByID(ctx, scope, ledgerID)
	if err != nil {
		return nil, err
	}
	polarity, err := PolarityFor(ledger.Kind)
	if err != nil {
		return nil, apperr.Internal("resolve ledger polarity", err)
	}
	key := KeyFor(scope, ledger)

	opening, err := s.opening.compute(ctx, key, polarity, ledger.OpeningBalance, from)
	if err != nil {
		s.log.Error("opening balance failed", zap.Int("ledger_id", ledgerID), zap.Error(err))
		return nil, err
	}

	entries, err := s.merger.Merge(ctx, key, polarity, opening, from, to)
	if err != nil {
		s.log.Error("merge failed", zap.Int("ledger_id", ledgerID), zap.Error(err))
		return nil, err
	}

	lines, totals := RunningBalance(entries)

	metrics.StatementsGenerated.WithLabelValues(string(ledger.Kind)).Inc()
	metrics.StatementDuration.Observe(time.Since(start).Seconds())
	s.log.Debug("statement built",
		zap.Int("ledger_id", ledgerID),
		zap.String("from", timeutil.FormatDate(from)),
		zap.String("to", timeutil.FormatDate(to)),
		zap.Int("lines", len(lines)),
	)

	return &models.Statement{
		LedgerID:       ledger.ID,
		LedgerName:     ledger.Name,
		Kind:           ledger.Kind,
		From:           models.NewDate(from),
		To:             models.NewDate(to),
		OpeningBalance: opening,
		TotalDebit:     totals.Debit,
		TotalCredit:    totals.Credit,
		ClosingBalance: totals.Closing,
		Lines:          lines,
	}, nil
}

// OpeningBalance returns the balance of ledgerID at the start of asOf
func (s *Service) OpeningBalance(ctx context.Context, scope models.Scope, ledgerID int, asOf time.Time) (decimal.Decimal, error) {
	if asOf.IsZero() {
		return decimal.Zero, apperr.Validation("as_of", "is required")
	}
	ledger, err := s.ledgers.GetByID(ctx, scope, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.opening.Compute(ctx, scope, ledger, asOf)
}
