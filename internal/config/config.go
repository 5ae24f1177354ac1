package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	AppPort      string        `env:"APP_PORT,default=8080"`
	DBDriver     string        `env:"DB_DRIVER,default=mysql"`
	DSN          string        `env:"DB_DSN,required"`
	JWTSecret    string        `env:"JWT_SECRET,default=dev-secret-only"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,default=24h"`
	CORSOrigins  []string      `env:"CORS_ORIGINS,default=*"`
	SeedOnStart  bool          `env:"SEED_ON_START,default=true"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`
	OTLPEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LoginRateLimit int `env:"LOGIN_RATE_LIMIT,default=10"`
}

// Load reads .env when present and then the process environment.
func Load(ctx context.Context) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using system environment variables")
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or postgres, got %q", c.DBDriver)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.LoginRateLimit < 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must not be negative")
	}
	return nil
}

// Level returns the parsed LOG_LEVEL.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.AppPort
}
