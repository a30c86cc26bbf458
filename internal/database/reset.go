package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ResetTables lists every data table, children first. The migrations table
// is kept so the schema is not re-applied.
var ResetTables = []string{
	"customer_bill_items",
	"farmer_bill_items",
	"customer_bills",
	"farmer_bills",
	"souda_items",
	"soudas",
	"cash_book",
	"document_sequences",
	"ledgers",
}

// Reset deletes all ledger, document and numbering data in one transaction
// and restarts the id sequences. The schema and schema_migrations stay, so
// the server starts on an empty but migrated database.
//
// Parameters:
//   - ctx: Context for database operation
//   - pool: PostgreSQL connection pool
//   - log: receives one line per cleared table
//
// Returns:
//   - error: if any truncate fails; nothing is cleared in that case
func Reset(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range ResetTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
		log.Info("cleared table", zap.String("table", table))
	}

	return tx.Commit(ctx)
}
