package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultJWTSecret is the development fallback. Production refuses it.
const DefaultJWTSecret = "secret"

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port         string        `env:"PORT,         default=8080"`
	Env          string        `env:"ENV,          default=development"`
	LogLevel     string        `env:"LOG_LEVEL,    default=info"`
	JWTSecret    string        `env:"JWT_SECRET,   default=secret"`
	JWTTTL       time.Duration `env:"JWT_TTL,      default=1h"`
	BcryptCost   int           `env:"BCRYPT_COST,  default=10"`
	StoreDriver  string        `env:"STORE_DRIVER, default=mongo"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT, default=3s"`

	Session SessionConfig
	Mongo   MongoConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL,           default=1h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME,   default=sid"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	Prefix       string        `env:"SESSION_PREFIX,        default=session:"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=forms"`
}

type SQLiteConfig struct {
	DSN string `env:"SQLITE_DSN, default=forms.db"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads a .env file when one exists, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo, StoreSQLite:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	if c.JWTTTL <= 0 || c.Session.TTL <= 0 {
		return errors.New("config: JWT_TTL and SESSION_TTL must be positive")
	}
	if c.Session.CookieName == "" {
		return errors.New("config: SESSION_COOKIE_NAME must not be empty")
	}
	return nil
}
