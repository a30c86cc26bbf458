package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mandi-backend/internal/models"
	"mandi-backend/internal/statement"
	"mandi-backend/internal/timeutil"
)

// BillSource feeds bills into statements. The bill book is picked from the
// ledger kind and joined on the ledger's party number.
type BillSource struct {
	DB querier
}

// NewBillSource reads both bill books through the pool. Use BindTx to read
// inside a transaction.
func NewBillSource(db *pgxpool.Pool) *BillSource {
	return &BillSource{DB: db}
}

func (s *BillSource) BindTx(tx pgx.Tx) statement.BalanceSource {
	return &BillSource{DB: tx}
}

func (s *BillSource) Source() models.EntrySource { return models.SourceBill }

func (s *BillSource) bookFor(key statement.Key) (billTable, string) {
	if key.Kind == models.LedgerKindFarmer {
		return billTables[models.BillKindFarmer], "Farmer bill"
	}
	return billTables[models.BillKindCustomer], "Customer bill"
}

func (s *BillSource) SumBefore(ctx context.Context, key statement.Key, asOf time.Time) (decimal.Decimal, error) {
	if key.CorrelationKey == "" {
		return decimal.Zero, nil
	}
	t, _ := s.bookFor(key)

	var sum decimal.Decimal
	err := s.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(final_amount), 0) FROM `+t.header+`
		 WHERE company_id = @company_id AND year_id = @year_id
		   AND party_no = @party_no AND bill_date < @as_of`,
		scoped(key.Scope, pgx.NamedArgs{
			"party_no": key.CorrelationKey,
			"as_of":    timeutil.FormatDate(asOf),
		}),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s before %s: %w", t.header, timeutil.FormatDate(asOf), err)
	}
	return sum, nil
}

func (s *BillSource) ListBetween(ctx context.Context, key statement.Key, from, to time.Time) ([]statement.Record, error) {
	records := []statement.Record{}
	if key.CorrelationKey == "" {
		return records, nil
	}
	t, label := s.bookFor(key)

	rows, err := s.DB.Query(ctx,
		`SELECT b.id, b.bill_no, b.bill_date, b.final_amount, b.remarks, COUNT(i.id)
		 FROM `+t.header+` b
		 LEFT JOIN `+t.items+` i ON i.bill_id = b.id
		 WHERE b.company_id = @company_id AND b.year_id = @year_id
		   AND b.party_no = @party_no
		   AND b.bill_date BETWEEN @from AND @to
		 GROUP BY b.id
		 ORDER BY b.bill_date, b.id`,
		scoped(key.Scope, pgx.NamedArgs{
			"party_no": key.CorrelationKey,
			"from":     timeutil.FormatDate(from),
			"to":       timeutil.FormatDate(to),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.header, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec     statement.Record
			date    models.Date
			remarks string
			count   int
		)
		if err := rows.Scan(&rec.ID, &rec.DocumentNo, &date, &rec.Amount, &remarks, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.header, err)
		}
		rec.Source = models.SourceBill
		rec.Date = date.Time
		rec.Description = label
		if remarks != "" {
			rec.Description = label + " - " + remarks
		}
		rec.TotalItems = &count
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CashBookSource feeds one transaction type of the cash book into statements.
// An entry concerns a ledger when either cash_bank_id or opp_bank_id is it.
type CashBookSource struct {
	DB   querier
	Type models.CashTransactionType
}

func (s *CashBookSource) BindTx(tx pgx.Tx) statement.BalanceSource {
	return &CashBookSource{DB: tx, Type: s.Type}
}

// NewPaymentSource feeds Payment vouchers
func NewPaymentSource(db *pgxpool.Pool) *CashBookSource {
	return &CashBookSource{DB: db, Type: models.CashPayment}
}

// NewReceiptSource feeds Receipt vouchers
func NewReceiptSource(db *pgxpool.Pool) *CashBookSource {
	return &CashBookSource{DB: db, Type: models.CashReceipt}
}

func (s *CashBookSource) Source() models.EntrySource {
	if s.Type == models.CashPayment {
		return models.SourcePayment
	}
	return models.SourceReceipt
}

func (s *CashBookSource) SumBefore(ctx context.Context, key statement.Key, asOf time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM cash_book
		 WHERE company_id = @company_id AND year_id = @year_id
		   AND transaction_type = @transaction_type
		   AND (cash_bank_id = @ledger_id OR opp_bank_id = @ledger_id)
		   AND entry_date < @as_of`,
		scoped(key.Scope, pgx.NamedArgs{
			"transaction_type": s.Type,
			"ledger_id":        key.LedgerID,
			"as_of":            timeutil.FormatDate(asOf),
		}),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s vouchers before %s: %w", s.Type, timeutil.FormatDate(asOf), err)
	}
	return sum, nil
}

func (s *CashBookSource) ListBetween(ctx context.Context, key statement.Key, from, to time.Time) ([]statement.Record, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT id, voucher_no, entry_date, amount, narration FROM cash_book
		 WHERE company_id = @company_id AND year_id = @year_id
		   AND transaction_type = @transaction_type
		   AND (cash_bank_id = @ledger_id OR opp_bank_id = @ledger_id)
		   AND entry_date BETWEEN @from AND @to
		 ORDER BY entry_date, id`,
		scoped(key.Scope, pgx.NamedArgs{
			"transaction_type": s.Type,
			"ledger_id":        key.LedgerID,
			"from":             timeutil.FormatDate(from),
			"to":               timeutil.FormatDate(to),
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s vouchers: %w", s.Type, err)
	}
	defer rows.Close()

	records := []statement.Record{}
	for rows.Next() {
		var (
			rec       statement.Record
			date      models.Date
			narration string
		)
		if err := rows.Scan(&rec.ID, &rec.DocumentNo, &date, &rec.Amount, &narration); err != nil {
			return nil, fmt.Errorf("failed to scan %s voucher: %w", s.Type, err)
		}
		rec.Source = s.Source()
		rec.Date = date.Time
		rec.Description = string(s.Type)
		if narration != "" {
			rec.Description = narration
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var (
	_ statement.BalanceSource = (*BillSource)(nil)
	_ statement.BalanceSource = (*CashBookSource)(nil)
)
