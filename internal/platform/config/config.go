package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string
	Port           string
	IsProduction   bool
	JWTSecret      string
	RateLimit      string
	CurrenciesFile string
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DATABASE_DRIVER", DriverSQLite)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("SQLITE_PATH", "treasury.db")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("CURRENCIES_FILE", "currencies.json")
	viper.SetDefault("ALLOWED_ORIGINS", []string{"*"})

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseDriver: viper.GetString("DATABASE_DRIVER"),
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		SQLitePath:     viper.GetString("SQLITE_PATH"),
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		RateLimit:      viper.GetString("RATE_LIMIT"),
		CurrenciesFile: viper.GetString("CURRENCIES_FILE"),
		AllowedOrigins: viper.GetStringSlice("ALLOWED_ORIGINS"),
	}

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when DATABASE_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required when DATABASE_DRIVER is %q", DriverSQLite)
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}
