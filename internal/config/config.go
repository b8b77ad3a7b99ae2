package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	DBDSN            string        `env:"DB_DSN"`
	DBHost           string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort           int           `env:"DB_PORT" envDefault:"5432"`
	DBUser           string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword       string        `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName           string        `env:"DB_NAME" envDefault:"printmarket"`
	DBSSLMode        string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"30s"`
	SeedDemo         bool          `env:"SEED_DEMO" envDefault:"false"`

	MPAccessToken string `env:"MP_ACCESS_TOKEN"`
	MPBaseURL     string `env:"MP_API_URL" envDefault:"https://api.mercadopago.com"`
	SecretKey     string `env:"SECRET_KEY" envDefault:"dev"`

	ListingConcurrency int           `env:"LISTING_CONCURRENCY" envDefault:"8"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ListingConcurrency < 1 {
		return nil, fmt.Errorf("LISTING_CONCURRENCY must be positive, got %d", cfg.ListingConcurrency)
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	if strings.TrimSpace(c.DBDSN) != "" {
		return c.DBDSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.AppEnv)
	return e == "production" || e == "prod"
}
