package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port         int           `env:"PORT" env-default:"3318"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	DatabaseType string        `env:"DATABASE_TYPE" env-default:"sqlite"`
	SessionTTL   time.Duration `env:"SESSION_TTL" env-default:"24h"`
	SessionSweep time.Duration `env:"SESSION_SWEEP_INTERVAL" env-default:"10m"`
	BcryptCost   int           `env:"BCRYPT_COST" env-default:"10"`
	LogLevel     string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat    string        `env:"LOG_FORMAT" env-default:"text"`
	CORSOrigin   string        `env:"CORS_ORIGIN" env-default:"*"`
}

// ParseFlags builds the config from a .env file, the environment and the
// command line, in increasing order of precedence.
func ParseFlags(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fset := pflag.NewFlagSet("codevote", pflag.ContinueOnError)

	// Env values become the flag defaults so the command line wins
	fset.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Server port")
	fset.StringVarP(&cfg.DatabaseURL, "database-url", "d", cfg.DatabaseURL, "Database URL")
	fset.StringVarP(&cfg.DatabaseType, "database-type", "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fset.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Login session lifetime")
	fset.DurationVar(&cfg.SessionSweep, "session-sweep", cfg.SessionSweep, "Interval between expired session sweeps (0 disables)")
	fset.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost for password hashes")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fset.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")
	fset.StringVar(&cfg.CORSOrigin, "cors-origin", cfg.CORSOrigin, "Allowed CORS origin")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.SessionSweep < 0 {
		return errors.New("session sweep interval must not be negative")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
