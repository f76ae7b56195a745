package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	AppPort  string `env:"PORT" envDefault:"8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AppID             string        `env:"APP_ID"`
	AppSecret         string        `env:"APP_SECRET"`
	GraphVersion      string        `env:"GRAPH_VERSION" envDefault:"v17.0"`
	FacebookDialogURL string        `env:"FACEBOOK_DIALOG_URL" envDefault:"https://www.facebook.com"`
	FacebookGraphURL  string        `env:"FACEBOOK_GRAPH_URL" envDefault:"https://graph.facebook.com"`
	ProviderScopes    []string      `env:"PROVIDER_SCOPES" envSeparator:"," envDefault:"email"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`

	CallbackBaseURL  string `env:"CALLBACK_BASE_URL" envDefault:"http://localhost:8080/provider/callback"`
	LoginRedirectURL string `env:"LOGIN_REDIRECT_URL" envDefault:"http://localhost:3000/login"`
	FrontendURL      string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	JWTSecret    string        `env:"JWT_SECRET"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`

	AccountStore string `env:"ACCOUNT_STORE" envDefault:"postgres"`
	DatabaseDSN  string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.AccountStore = strings.ToLower(strings.TrimSpace(cfg.AccountStore))
	cfg.CallbackBaseURL = strings.TrimRight(cfg.CallbackBaseURL, "/")
	cfg.FrontendURL = strings.TrimSpace(cfg.FrontendURL)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.AppID == "" {
		errs = append(errs, errors.New("APP_ID is required"))
	}
	if c.AppSecret == "" {
		errs = append(errs, errors.New("APP_SECRET is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.CallbackBaseURL == "" {
		errs = append(errs, errors.New("CALLBACK_BASE_URL is required"))
	}
	if c.FrontendURL == "" {
		errs = append(errs, errors.New("FRONTEND_URL is required"))
	}

	switch c.AccountStore {
	case StorePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for the postgres store"))
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown ACCOUNT_STORE %q", c.AccountStore))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
