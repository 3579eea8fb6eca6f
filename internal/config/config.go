package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string        `env:"APP_ADDR" env-default:":8080" env-description:"Listen address of the web server"`
	BackendURL string        `env:"BACKEND_URL" env-default:"http://localhost:5000" env-description:"Base URL of the catalog backend"`
	APITimeout time.Duration `env:"API_TIMEOUT" env-default:"10s" env-description:"Timeout of one backend call"`
	APIRPS     int           `env:"API_RPS" env-default:"20" env-description:"Backend requests per second, 0 for unlimited"`
	Fanout     int           `env:"FETCH_CONCURRENCY" env-default:"4" env-description:"Concurrent book fetches when a list loads"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"25s" env-description:"Deadline of one browser request across all its backend calls"`

	SessionSecret string        `env:"SESSION_SECRET" env-required:"true" env-description:"Key that signs profile cookies"`
	CookieSecure  bool          `env:"COOKIE_SECURE" env-default:"false" env-description:"Mark the profile cookie Secure"`
	ProfileTTL    time.Duration `env:"PROFILE_TTL" env-default:"720h" env-description:"Lifetime of an idle profile cookie"`

	StorageDriver string `env:"STORAGE_DRIVER" env-default:"sqlite" env-description:"Profile storage: memory, sqlite or postgres"`
	DBDSN         string `env:"DB_DSN" env-description:"Postgres DSN when STORAGE_DRIVER=postgres"`
	SQLitePath    string `env:"SQLITE_PATH" env-default:"bookshelf.db" env-description:"SQLite file when STORAGE_DRIVER=sqlite"`

	ToastTTL   time.Duration `env:"TOAST_TTL" env-default:"3s" env-description:"How long a toast stays once shown"`
	ConfirmTTL time.Duration `env:"CONFIRM_TTL" env-default:"5m" env-description:"How long a confirm dialog stays open"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" env-default:"10" env-description:"Browser requests per second per client"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" env-default:"30" env-description:"Burst of browser requests per client"`
	MaxBodyBytes   int64   `env:"MAX_BODY_BYTES" env-default:"65536" env-description:"Largest accepted form body"`
	EnableHSTS     bool    `env:"ENABLE_HSTS" env-default:"false" env-description:"Send Strict-Transport-Security"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text" env-description:"text or json"`
}

var ErrInvalid = errors.New("invalid configuration")

// LoadEnvFiles reads .env and .env.local. Variables already set in the
// environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the configuration from the environment. The error of a missing
// or malformed variable carries the description of every variable.
func Load() (*Config, error) {
	LoadEnvFiles()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		help, _ := cleanenv.GetDescription(&cfg, nil)
		return nil, fmt.Errorf("%w: %v\n%s", ErrInvalid, err, help)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DBDSN == "" {
			return fmt.Errorf("%w: DB_DSN is required with STORAGE_DRIVER=postgres", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown STORAGE_DRIVER %q", ErrInvalid, c.StorageDriver)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("%w: BACKEND_URL is empty", ErrInvalid)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("%w: API_TIMEOUT must be positive", ErrInvalid)
	}
	if c.RequestTimeout < c.APITimeout {
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be at least API_TIMEOUT", ErrInvalid)
	}
	return nil
}
