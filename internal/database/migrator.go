package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Migrator applies the embedded .sql files in name order, each once
type Migrator struct {
	pool *pgxpool.Pool
	fsys fs.FS
	dir  string
	log  *zap.Logger
}

// NewMigratorWithFS creates a migration runner reading dir inside fsys
//
// Parameters:
//   - pool: PostgreSQL connection pool
//   - fsys: filesystem holding the .sql files, usually migrations.FS
//   - dir: directory inside fsys, "." for the embedded set
//   - log: logger for applied and skipped files
//
// Returns:
//   - *Migrator: New migrator instance
func NewMigratorWithFS(pool *pgxpool.Pool, fsys fs.FS, dir string, log *zap.Logger) *Migrator {
	return &Migrator{
		pool: pool,
		fsys: fsys,
		dir:  dir,
		log:  log.Named("migrator"),
	}
}

// RunMigrations executes all pending database migrations
//
// Migrations are skipped if:
//   - Filename contains "reset" (destructive operations)
//   - Migration has already been run (tracked in schema_migrations)
//
// Each file runs in its own transaction together with its tracking row.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	m.log.Info("starting database migrations")

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := m.Pending(applied)
	if err != nil {
		return err
	}

	for _, filename := range files {
		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		m.log.Info("running migration", zap.String("file", filename))
		if err := m.apply(ctx, filename, string(content)); err != nil {
			return err
		}
	}

	if len(files) > 0 {
		m.log.Info("migrations applied", zap.Int("count", len(files)))
	} else {
		m.log.Info("database is up to date")
	}
	return nil
}

// Pending lists migration files not in applied, in execution order
func (m *Migrator) Pending(applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if strings.Contains(name, "reset") || applied[name] {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (m *Migrator) apply(ctx context.Context, filename, sql string) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to run migration %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
		filename); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", filename, err)
	}
	return tx.Commit(ctx)
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := m.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}
	return applied, rows.Err()
}
