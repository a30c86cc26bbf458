package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"mandi-backend/internal/sequence"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host               string `mapstructure:"host"`
		Port               int    `mapstructure:"port"`
		User               string `mapstructure:"user"`
		Password           string `mapstructure:"password"`
		Name               string `mapstructure:"name"`
		MaxConns           int32  `mapstructure:"max_conns"`
		StatementTimeoutMS int    `mapstructure:"statement_timeout_ms"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Redis struct {
		Addr                  string `mapstructure:"addr"`
		Password              string `mapstructure:"password"`
		DB                    int    `mapstructure:"db"`
		IdempotencyTTLMinutes int    `mapstructure:"idempotency_ttl_minutes"`
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`

	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`

	Numbering struct {
		Prefixes map[string]string `mapstructure:"prefixes"`
	} `mapstructure:"numbering"`
}

// Load reads configs/config.yaml when present, then the environment.
func Load() (*Config, error) {
	return LoadFile("configs/config.yaml")
}

// LoadFile is Load with an explicit config file path
func LoadFile(path string) (*Config, error) {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "Idempotency-Key"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "mandi_db")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.statement_timeout_ms", 5000)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "mandi-backend")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.idempotency_ttl_minutes", 60)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "mandi.documents")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if _, err := cfg.Prefixes(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN is the pgx connection string for the configured database
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Prefixes merges configured number prefixes over the defaults and validates
// the result.
func (c *Config) Prefixes() (sequence.Prefixes, error) {
	for key := range c.Numbering.Prefixes {
		if _, err := sequence.ParseKind(key); err != nil {
			return nil, fmt.Errorf("numbering.prefixes: %w", err)
		}
	}
	prefixes := sequence.Merge(c.Numbering.Prefixes)
	if err := prefixes.Validate(); err != nil {
		return nil, fmt.Errorf("numbering.prefixes: %w", err)
	}
	return prefixes, nil
}

func (c *Config) StatementTimeout() time.Duration {
	return time.Duration(c.Database.StatementTimeoutMS) * time.Millisecond
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.Redis.IdempotencyTTLMinutes) * time.Minute
}
