// Package app wires repositories, the statement engine and the services
// over one pool. The server and mandictl share it.
package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"mandi-backend/internal/events"
	"mandi-backend/internal/repositories"
	"mandi-backend/internal/sequence"
	"mandi-backend/internal/services"
	"mandi-backend/internal/statement"
)

type App struct {
	Ledgers    *repositories.LedgerRepository
	Statements *statement.Service
	Billing    *services.BillingService
	Soudas     *services.SoudaService
	CashBook   *services.CashBookService
	Sequences  *services.SequenceService
}

func New(pool *pgxpool.Pool, prefixes sequence.Prefixes, publisher events.Publisher, log *zap.Logger) *App {
	txManager := repositories.NewTxManager(pool)
	ledgerRepo := repositories.NewLedgerRepository(pool)
	billRepo := repositories.NewBillRepository(pool)
	soudaRepo := repositories.NewSoudaRepository(pool)
	cashBookRepo := repositories.NewCashBookRepository(pool)
	sequenceRepo := repositories.NewSequenceRepository(pool)

	statements := statement.NewService(ledgerRepo, log,
		repositories.NewBillSource(pool),
		repositories.NewPaymentSource(pool),
		repositories.NewReceiptSource(pool),
	)

	return &App{
		Ledgers:    ledgerRepo,
		Statements: statements,
		Billing: services.NewBillingService(txManager, ledgerRepo, billRepo, soudaRepo,
			sequenceRepo, statements.Calculator(), prefixes, publisher, log),
		Soudas:    services.NewSoudaService(txManager, ledgerRepo, soudaRepo, sequenceRepo, prefixes, publisher, log),
		CashBook:  services.NewCashBookService(txManager, ledgerRepo, cashBookRepo, sequenceRepo, prefixes, publisher, log),
		Sequences: services.NewSequenceService(sequenceRepo, prefixes),
	}
}
