package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

// SequenceRepository allocates document numbers from the document_sequences
// counter table. A missing counter row is seeded from the last number found
// in the document table itself so existing books keep their numbering.
type SequenceRepository struct {
	DB *pgxpool.Pool
}

func NewSequenceRepository(db *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{DB: db}
}

// documentQueries returns the newest document number of each kind
var documentQueries = map[sequence.Kind]string{
	sequence.KindCustomerBill: `SELECT bill_no FROM customer_bills
		WHERE company_id = @company_id AND year_id = @year_id ORDER BY id DESC LIMIT 1`,
	sequence.KindFarmerBill: `SELECT bill_no FROM farmer_bills
		WHERE company_id = @company_id AND year_id = @year_id ORDER BY id DESC LIMIT 1`,
	sequence.KindSouda: `SELECT souda_no FROM soudas
		WHERE company_id = @company_id AND year_id = @year_id ORDER BY id DESC LIMIT 1`,
	sequence.KindReceipt: `SELECT voucher_no FROM cash_book
		WHERE company_id = @company_id AND year_id = @year_id AND transaction_type = 'Receipt'
		ORDER BY id DESC LIMIT 1`,
	sequence.KindPayment: `SELECT voucher_no FROM cash_book
		WHERE company_id = @company_id AND year_id = @year_id AND transaction_type = 'Payment'
		ORDER BY id DESC LIMIT 1`,
}

// NextTx reserves the next number inside tx. The counter row stays locked
// until tx ends, so concurrent callers for the same scope queue behind it.
// A rolled back tx gives its number back, which keeps the series gap-free.
//
// The first allocation for a scope has no counter row yet. It seeds from the
// newest document already stored with prefix, so numbers continue after data
// imported before counters existed.
//
// Parameters:
//   - tx: the transaction that will also write the document
//   - kind: document series, one counter per (company, year, kind)
//   - prefix: rendered in front of the zero padded number
//
// Returns:
//   - string: the reserved number, e.g. R-014
//   - error: if the counter cannot be read or written
func (r *SequenceRepository) NextTx(ctx context.Context, tx pgx.Tx, scope models.Scope, kind sequence.Kind, prefix string) (string, error) {
	args := scoped(scope, pgx.NamedArgs{"kind": kind})

	var next int64
	err := tx.QueryRow(ctx,
		`UPDATE document_sequences SET last_value = last_value + 1, updated_at = NOW()
		 WHERE company_id = @company_id AND year_id = @year_id AND kind = @kind
		 RETURNING last_value`, args,
	).Scan(&next)
	if err == nil {
		return sequence.Format(prefix, next), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("failed to advance %s sequence: %w", kind, err)
	}

	seed, err := r.lastIssued(ctx, tx, scope, kind, prefix)
	if err != nil {
		return "", err
	}

	// a concurrent first allocation lands in DO UPDATE and gets seed + 2
	args["seed"] = seed + 1
	err = tx.QueryRow(ctx,
		`INSERT INTO document_sequences (company_id, year_id, kind, last_value)
		 VALUES (@company_id, @year_id, @kind, @seed)
		 ON CONFLICT (company_id, year_id, kind)
		 DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = NOW()
		 RETURNING last_value`, args,
	).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("failed to seed %s sequence: %w", kind, err)
	}
	return sequence.Format(prefix, next), nil
}

// Peek returns the number NextTx would issue now, without reserving it
func (r *SequenceRepository) Peek(ctx context.Context, scope models.Scope, kind sequence.Kind, prefix string) (string, error) {
	var last int64
	err := r.DB.QueryRow(ctx,
		`SELECT last_value FROM document_sequences
		 WHERE company_id = @company_id AND year_id = @year_id AND kind = @kind`,
		scoped(scope, pgx.NamedArgs{"kind": kind}),
	).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		last, err = r.lastIssued(ctx, r.DB, scope, kind, prefix)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s sequence: %w", kind, err)
	}
	return sequence.Format(prefix, last+1), nil
}

// lastIssued parses the newest existing document number, 0 when there is none
func (r *SequenceRepository) lastIssued(ctx context.Context, q querier, scope models.Scope, kind sequence.Kind, prefix string) (int64, error) {
	query, ok := documentQueries[kind]
	if !ok {
		return 0, fmt.Errorf("unknown document kind %q", kind)
	}

	var number string
	err := q.QueryRow(ctx, query, scoped(scope, nil)).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to scan last %s number: %w", kind, err)
	}
	return sequence.NextAfter(prefix, number) - 1, nil
}
