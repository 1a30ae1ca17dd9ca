// Package config provides configuration management for the land registry.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like DATABASE_URL, SERVER_PORT)
// 3. Default values
//
// Import Path: landledger.io/registry/internal/config
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	River     RiverConfig     `mapstructure:"river"`
	Integrity IntegrityConfig `mapstructure:"integrity"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	OpenAPIValidation  bool          `mapstructure:"openapi_validation"`
}

// StorageConfig selects where lands, owners, deeds, audit logs and the ledger live.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // postgres or memory
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	// Pool configuration (shared by the repository, ledger and River)
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`

	// Optional dedicated endpoint for River (e.g. behind PgBouncer)
	WorkerHost string `mapstructure:"worker_host"`
	WorkerPort int    `mapstructure:"worker_port"`

	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
// Priority: DATABASE_URL > constructed from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// RiverConfig contains River Queue settings.
type RiverConfig struct {
	MaxWorkers                  int           `mapstructure:"max_workers"`
	CompletedJobRetentionPeriod time.Duration `mapstructure:"completed_job_retention_period"`
}

// IntegrityConfig controls the periodic ledger verification sweep.
type IntegrityConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	SweepWorkers  int           `mapstructure:"sweep_workers"`
}

// AuditConfig controls audit attribution and the optional Kafka mirror.
type AuditConfig struct {
	DefaultActor string      `mapstructure:"default_actor"`
	Kafka        KafkaConfig `mapstructure:"kafka"`
}

// KafkaConfig configures the audit event mirror. Empty brokers disable it.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Enabled reports whether the mirror should be started.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// SecurityConfig contains security-related settings.
// An empty JWTSigningKey disables bearer-token parsing; requests are then
// attributed to Audit.DefaultActor.
type SecurityConfig struct {
	JWTSigningKey string        `mapstructure:"jwt_signing_key"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

// Load reads configuration from file and environment variables.
// Nested keys map to env names with underscores: database.max_conns → DATABASE_MAX_CONNS.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/land-registry")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendPostgres, BackendMemory, c.Storage.Backend)
	}
	if c.Integrity.SweepWorkers <= 0 {
		return fmt.Errorf("integrity.sweep_workers must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Audit.DefaultActor) == "" {
		return fmt.Errorf("audit.default_actor must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("server.openapi_validation", true)

	// Storage
	v.SetDefault("storage.backend", BackendPostgres)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "registry")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "land_registry")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.worker_host", "")
	v.SetDefault("database.worker_port", 5432)
	v.SetDefault("database.auto_migrate", false)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// River
	v.SetDefault("river.max_workers", 5)
	v.SetDefault("river.completed_job_retention_period", "24h")

	// Integrity sweep
	v.SetDefault("integrity.sweep_interval", "1h")
	v.SetDefault("integrity.sweep_workers", 8)

	// Audit
	v.SetDefault("audit.default_actor", "Admin")
	v.SetDefault("audit.kafka.brokers", []string{})
	v.SetDefault("audit.kafka.topic", "")
	v.SetDefault("audit.kafka.batch_timeout", "100ms")
	v.SetDefault("audit.kafka.write_timeout", "5s")

	// Security
	v.SetDefault("security.jwt_signing_key", "")
	v.SetDefault("security.token_ttl", "12h")
}
