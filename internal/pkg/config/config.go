package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const minProductionSecretLen = 32

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	ExposeErrors bool   `env:"EXPOSE_ERRORS, default=false"`
	BcryptCost   int    `env:"BCRYPT_COST,   default=10"`
	AuditWorkers int    `env:"AUDIT_WORKERS, default=4"`

	JWT   JWTConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY,  default=15m"`
	RefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY, default=168h"`
	Issuer        string        `env:"JWT_ISSUER,         default=marketplace-api"`
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,        default=marketplace"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,   default=10s"`
	MaxPoolSize uint64        `env:"MONGO_POOL_SIZE, default=100"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}

// Validate checks invariants envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "":
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required"))
	case c.JWT.AccessSecret == c.JWT.RefreshSecret:
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	case !c.IsDevelopment() &&
		(len(c.JWT.AccessSecret) < minProductionSecretLen || len(c.JWT.RefreshSecret) < minProductionSecretLen):
		errs = append(errs, fmt.Errorf("JWT secrets must be at least %d bytes outside development", minProductionSecretLen))
	}

	if c.JWT.AccessExpiry <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRY must be positive"))
	}
	if c.JWT.RefreshExpiry <= c.JWT.AccessExpiry {
		errs = append(errs, errors.New("JWT_REFRESH_EXPIRY must exceed JWT_ACCESS_EXPIRY"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within 4..31, got %d", c.BcryptCost))
	}
	if c.AuditWorkers < 1 {
		errs = append(errs, errors.New("AUDIT_WORKERS must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
