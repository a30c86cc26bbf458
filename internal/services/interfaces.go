package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

// TxRunner runs fn inside a single transaction
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// LedgerLookup resolves the ledgers documents refer to
type LedgerLookup interface {
	GetByID(ctx context.Context, scope models.Scope, id int) (*models.Ledger, error)
	GetByPartyNo(ctx context.Context, scope models.Scope, kind models.LedgerKind, partyNo string) (*models.Ledger, error)
}

// SequenceAllocator hands out document numbers
type SequenceAllocator interface {
	NextTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind sequence.Kind, prefix string) (string, error)
	Peek(ctx context.Context, scope models.Scope, kind sequence.Kind, prefix string) (string, error)
}

// OpeningBalancer computes a ledger balance at the start of a day, reading
// through the caller's transaction
type OpeningBalancer interface {
	ComputeTx(ctx context.Context, tx pgx.Tx, scope models.Scope, ledger *models.Ledger, asOf time.Time) (decimal.Decimal, error)
}

type BillStore interface {
	ExistsForPartyDateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, partyNo string, date models.Date, excludeID int) (bool, error)
	CreateTx(ctx context.Context, tx pgx.Tx, bill *models.Bill) error
	UpdateTx(ctx context.Context, tx pgx.Tx, bill *models.Bill) error
	DeleteTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, id int) error
	GetByID(ctx context.Context, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error)
	List(ctx context.Context, scope models.Scope, kind models.BillKind, filter models.BillFilter) ([]models.Bill, error)
}

// SoudaItemMarker is the part of the souda store billing needs
type SoudaItemMarker interface {
	MarkBilledTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind models.BillKind, partyNo string, ids []int) error
	ListCandidates(ctx context.Context, scope models.Scope, kind models.BillKind, partyNo string, date models.Date) ([]models.CandidateItem, error)
}

type SoudaStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, souda *models.Souda) error
	UpdateTx(ctx context.Context, tx pgx.Tx, souda *models.Souda) error
	DeleteTx(ctx context.Context, tx pgx.Tx, scope models.Scope, id int) error
	GetByID(ctx context.Context, scope models.Scope, id int) (*models.Souda, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, scope models.Scope, id int) (*models.Souda, error)
	List(ctx context.Context, scope models.Scope, from, to models.Date) ([]models.Souda, error)
}

type CashBookStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, entry *models.CashBookEntry) error
	GetByID(ctx context.Context, scope models.Scope, id int) (*models.CashBookEntry, error)
	List(ctx context.Context, scope models.Scope, filter models.CashBookFilter) ([]models.CashBookEntry, error)
	Delete(ctx context.Context, scope models.Scope, id int) error
}
