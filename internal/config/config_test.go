package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandi-backend/internal/sequence"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "mandi-backend", cfg.JWT.Issuer)
	assert.Equal(t, 5*time.Second, cfg.StatementTimeout())
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL())

	prefixes, err := cfg.Prefixes()
	require.NoError(t, err)
	assert.Equal(t, "CB", prefixes.For(sequence.KindCustomerBill))
}

func TestLoadFileOverridesPrefixes(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	path := writeConfig(t, `
numbering:
  prefixes:
    customer_bill: INV
database:
  name: books
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	prefixes, err := cfg.Prefixes()
	require.NoError(t, err)
	assert.Equal(t, "INV", prefixes.For(sequence.KindCustomerBill))
	assert.Equal(t, "FB", prefixes.For(sequence.KindFarmerBill))
	assert.Contains(t, cfg.DSN(), "/books")
}

func TestLoadRejectsInvalidPrefix(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	for name, body := range map[string]string{
		"lower case":   "numbering:\n  prefixes:\n    souda: so\n",
		"too long":     "numbering:\n  prefixes:\n    souda: SOUD\n",
		"unknown kind": "numbering:\n  prefixes:\n    invoice: IN\n",
		"shared cash":  "numbering:\n  prefixes:\n    receipt: V\n    payment: V\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadFile(writeConfig(t, "jwt:\n  issuer: x\n"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}
