package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBConn     string `env:"DB_CONN"` // full DSN, or file path for sqlite; overrides the parts below
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"loans"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret  string        `env:"JWT_SECRET" envDefault:"secret"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	RejectOverpayment bool `env:"REJECT_OVERPAYMENT" envDefault:"false"`

	CBREnabled bool    `env:"CBR_ENABLED" envDefault:"false"`
	CBRURL     string  `env:"CBR_URL" envDefault:"https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"`
	CBRMargin  float64 `env:"CBR_MARGIN" envDefault:"5.0"`

	LoginRate  float64 `env:"LOGIN_RATE" envDefault:"1"`
	LoginBurst int     `env:"LOGIN_BURST" envDefault:"5"`
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func NewConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBConn == "" && cfg.DBHost == "" {
			return nil, fmt.Errorf("DB_HOST or DB_CONN is required")
		}
	case DriverSQLite:
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required for sqlite")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}
	if cfg.CBREnabled && cfg.CBRURL == "" {
		return nil, fmt.Errorf("CBR_URL is required when CBR_ENABLED is set")
	}

	return cfg, nil
}

// DSN returns the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DBConn != "" {
		return c.DBConn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// String returns a printable form of the config with secrets masked
func (c *Config) String() string {
	db := c.DBConn
	if c.DBDriver == DriverPostgres {
		db = fmt.Sprintf("%s@%s:%s/%s", c.DBUser, c.DBHost, c.DBPort, c.DBName)
	}
	return fmt.Sprintf("Config{Port: %s, DB: %s %s, LogLevel: %s, JWT: ***, RejectOverpayment: %t, CBR: %t}",
		c.Port, c.DBDriver, db, c.LogLevel, c.RejectOverpayment, c.CBREnabled)
}
