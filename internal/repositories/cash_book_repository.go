package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
)

type CashBookRepository struct {
	DB *pgxpool.Pool
}

func NewCashBookRepository(db *pgxpool.Pool) *CashBookRepository {
	return &CashBookRepository{DB: db}
}

const cashBookColumns = `id, company_id, year_id, voucher_no, transaction_type, entry_date, amount,
	cash_bank_id, opp_bank_id, narration, created_by, created_at`

func (r *CashBookRepository) CreateTx(ctx context.Context, tx pgx.Tx, entry *models.CashBookEntry) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO cash_book (company_id, year_id, voucher_no, transaction_type, entry_date, amount,
			cash_bank_id, opp_bank_id, narration, created_by)
		 VALUES (@company_id, @year_id, @voucher_no, @transaction_type, @entry_date, @amount,
			@cash_bank_id, @opp_bank_id, @narration, @created_by)
		 RETURNING id, created_at`,
		pgx.NamedArgs{
			"company_id":       entry.CompanyID,
			"year_id":          entry.YearID,
			"voucher_no":       entry.VoucherNo,
			"transaction_type": entry.TransactionType,
			"entry_date":       dateArg(entry.EntryDate),
			"amount":           entry.Amount,
			"cash_bank_id":     entry.CashBankID,
			"opp_bank_id":      entry.OppBankID,
			"narration":        entry.Narration,
			"created_by":       entry.CreatedBy,
		},
	).Scan(&entry.ID, &entry.CreatedAt)
	if _, dup := uniqueViolation(err); dup {
		return apperr.Conflict("voucher number %s already issued", entry.VoucherNo)
	}
	if err != nil {
		return fmt.Errorf("failed to create cash book entry: %w", err)
	}
	return nil
}

func (r *CashBookRepository) GetByID(ctx context.Context, scope models.Scope, id int) (*models.CashBookEntry, error) {
	e, err := scanCashBookEntry(r.DB.QueryRow(ctx,
		`SELECT `+cashBookColumns+` FROM cash_book
		 WHERE id = @id AND company_id = @company_id AND year_id = @year_id`,
		scoped(scope, pgx.NamedArgs{"id": id})))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("cash book entry %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal("load cash book entry", err)
	}
	return e, nil
}

func (r *CashBookRepository) List(ctx context.Context, scope models.Scope, filter models.CashBookFilter) ([]models.CashBookEntry, error) {
	conds := []string{"company_id = @company_id", "year_id = @year_id"}
	args := scoped(scope, pgx.NamedArgs{})
	if filter.TransactionType != "" {
		conds = append(conds, "transaction_type = @transaction_type")
		args["transaction_type"] = filter.TransactionType
	}
	if filter.LedgerID != 0 {
		conds = append(conds, "(cash_bank_id = @ledger_id OR opp_bank_id = @ledger_id)")
		args["ledger_id"] = filter.LedgerID
	}
	if !filter.From.IsZero() {
		conds = append(conds, "entry_date >= @from")
		args["from"] = dateArg(filter.From)
	}
	if !filter.To.IsZero() {
		conds = append(conds, "entry_date <= @to")
		args["to"] = dateArg(filter.To)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+cashBookColumns+` FROM cash_book
		 WHERE `+strings.Join(conds, " AND ")+`
		 ORDER BY entry_date DESC, id DESC`, args)
	if err != nil {
		return nil, apperr.Internal("list cash book", err)
	}
	defer rows.Close()

	entries := []models.CashBookEntry{}
	for rows.Next() {
		e, err := scanCashBookEntry(rows)
		if err != nil {
			return nil, apperr.Internal("list cash book", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list cash book", err)
	}
	return entries, nil
}

func (r *CashBookRepository) Delete(ctx context.Context, scope models.Scope, id int) error {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM cash_book WHERE id = @id AND company_id = @company_id AND year_id = @year_id`,
		scoped(scope, pgx.NamedArgs{"id": id}))
	if err != nil {
		return apperr.Internal("delete cash book entry", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("cash book entry %d not found", id)
	}
	return nil
}

func scanCashBookEntry(row pgx.Row) (*models.CashBookEntry, error) {
	var e models.CashBookEntry
	err := row.Scan(&e.ID, &e.CompanyID, &e.YearID, &e.VoucherNo, &e.TransactionType, &e.EntryDate,
		&e.Amount, &e.CashBankID, &e.OppBankID, &e.Narration, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
