package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
)

// LedgerRepository reads the ledger registry. Ledger maintenance happens
// elsewhere; this service only needs lookups.
type LedgerRepository struct {
	DB *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

const ledgerColumns = `id, company_id, year_id, name, kind, opening_balance,
	opening_balance_date, customer_no, farmer_no, created_at`

func scanLedger(row pgx.Row) (*models.Ledger, error) {
	var l models.Ledger
	err := row.Scan(&l.ID, &l.CompanyID, &l.YearID, &l.Name, &l.Kind, &l.OpeningBalance,
		&l.OpeningBalanceDate, &l.CustomerNo, &l.FarmerNo, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID loads a ledger within scope
func (r *LedgerRepository) GetByID(ctx context.Context, scope models.Scope, id int) (*models.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers
		WHERE id = @id AND company_id = @company_id AND year_id = @year_id`

	l, err := scanLedger(r.DB.QueryRow(ctx, query, scoped(scope, pgx.NamedArgs{"id": id})))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("ledger %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal("load ledger", fmt.Errorf("failed to get ledger %d: %w", id, err))
	}
	return l, nil
}

// GetByPartyNo finds the ledger a bill of the given kind is filed against
func (r *LedgerRepository) GetByPartyNo(ctx context.Context, scope models.Scope, kind models.LedgerKind, partyNo string) (*models.Ledger, error) {
	column := "customer_no"
	if kind == models.LedgerKindFarmer {
		column = "farmer_no"
	}
	query := `SELECT ` + ledgerColumns + ` FROM ledgers
		WHERE ` + column + ` = @party_no AND kind = @kind
		  AND company_id = @company_id AND year_id = @year_id`

	l, err := scanLedger(r.DB.QueryRow(ctx, query, scoped(scope, pgx.NamedArgs{
		"party_no": partyNo,
		"kind":     kind,
	})))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("%s ledger %s not found", kindLabel(kind), partyNo)
	}
	if err != nil {
		return nil, apperr.Internal("load ledger", fmt.Errorf("failed to get ledger by %s %s: %w", column, partyNo, err))
	}
	return l, nil
}

// Create inserts a ledger. Used by seeding and tests.
func (r *LedgerRepository) Create(ctx context.Context, l *models.Ledger) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO ledgers (company_id, year_id, name, kind, opening_balance,
			opening_balance_date, customer_no, farmer_no)
		 VALUES (@company_id, @year_id, @name, @kind, @opening_balance,
			@opening_balance_date, @customer_no, @farmer_no)
		 RETURNING id, created_at`,
		pgx.NamedArgs{
			"company_id":           l.CompanyID,
			"year_id":              l.YearID,
			"name":                 l.Name,
			"kind":                 l.Kind,
			"opening_balance":      l.OpeningBalance,
			"opening_balance_date": dateArg(l.OpeningBalanceDate),
			"customer_no":          l.CustomerNo,
			"farmer_no":            l.FarmerNo,
		},
	).Scan(&l.ID, &l.CreatedAt)
	if _, dup := uniqueViolation(err); dup {
		return apperr.Conflict("ledger party number already in use")
	}
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	return nil
}

func kindLabel(kind models.LedgerKind) string {
	if kind == models.LedgerKindFarmer {
		return "farmer"
	}
	return "customer"
}
