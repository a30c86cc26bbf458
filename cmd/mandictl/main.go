// Command mandictl is the operator CLI for the mandi back office: schema
// migrations, statements, numbering previews, ledger seeding and resets.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mandi-backend/internal/app"
	"mandi-backend/internal/config"
	"mandi-backend/internal/db"
	"mandi-backend/internal/events"
	"mandi-backend/internal/logger"
	"mandi-backend/internal/models"
)

var (
	configPath string
	companyID  int
	yearID     int
)

var rootCmd = &cobra.Command{
	Use:           "mandictl",
	Short:         "Operate the mandi ledger and billing database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to the config file.")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is what every database command needs
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	pool *pgxpool.Pool
}

func (e *env) Close() {
	e.pool.Close()
	e.log.Sync()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log.Named("mandictl"), pool: pool}, nil
}

// services builds the application layer. The CLI never publishes events.
func (e *env) services() (*app.App, error) {
	prefixes, err := e.cfg.Prefixes()
	if err != nil {
		return nil, err
	}
	return app.New(e.pool, prefixes, events.NopPublisher{}, e.log), nil
}

// addScopeFlags registers --company and --year on cmd as required flags
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&companyID, "company", 0, "Company id.")
	cmd.Flags().IntVar(&yearID, "year", 0, "Financial year id.")
	cmd.MarkFlagRequired("company")
	cmd.MarkFlagRequired("year")
}

func cliScope() (models.Scope, error) {
	if companyID <= 0 || yearID <= 0 {
		return models.Scope{}, fmt.Errorf("--company and --year must be positive")
	}
	return models.Scope{CompanyID: companyID, YearID: yearID}, nil
}
