package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/spec-kit/coworking/internal/domain"
)

// GatewayConfig aggregates runtime configuration for the edge gateway.
type GatewayConfig struct {
	App    AppConfig
	Logger LoggerConfig
	Admin  UpstreamConfig `env:", prefix=ADMIN_"`
	Client UpstreamConfig `env:", prefix=CLIENT_"`
	// ValidateTimeout bounds the token validation call made per request.
	ValidateTimeout time.Duration `env:"VALIDATE_TIMEOUT, default=3s"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name           string        `env:"APP_NAME, default=coworking-gateway"`
	Env            string        `env:"APP_ENV, default=development"`
	Address        string        `env:"SERVER_ADDRESS, default=0.0.0.0:8080"`
	Version        string        `env:"APP_VERSION, default=dev"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT, default=30s"`
}

// UpstreamConfig locates one identity domain service.
type UpstreamConfig struct {
	Address    string        `env:"SERVICE_ADDRESS"`
	RPCTimeout time.Duration `env:"RPC_TIMEOUT, default=10s"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL, default=info"`
}

// DomainConfig is the configuration of one identity domain process.
// Every key is read with the domain prefix, e.g. ADMIN_JWT_SECRET.
type DomainConfig struct {
	Address string `env:"SERVICE_ADDRESS"`
	// MetricsAddress serves /metrics over HTTP when set.
	MetricsAddress string `env:"METRICS_ADDRESS"`
	Logger         LoggerConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	Auth           AuthConfig
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN           string        `env:"DATABASE_URL, required"`
	MaxConns      int32         `env:"POSTGRES_MAX_CONNS, default=10"`
	MinConns      int32         `env:"POSTGRES_MIN_CONNS, default=2"`
	RunMigrations bool          `env:"RUN_MIGRATIONS, default=true"`
	ConnMaxIdle   time.Duration `env:"POSTGRES_CONN_MAX_IDLE, default=30s"`
	ConnMaxLife   time.Duration `env:"POSTGRES_CONN_MAX_LIFE, default=5m"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET, required"`
	BcryptCost       int           `env:"BCRYPT_COST, default=12"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW, default=15m"`
}

// Domain prefixes used by LoadDomain.
const (
	AdminPrefix  = "ADMIN_"
	ClientPrefix = "CLIENT_"
)

var defaultAddresses = map[string]string{
	AdminPrefix:  "[::1]:50051",
	ClientPrefix: "[::1]:50052",
}

// LoadGateway reads gateway configuration from the environment (and a .env
// file when present).
func LoadGateway(ctx context.Context) (*GatewayConfig, error) {
	_ = godotenv.Load()
	return loadGateway(ctx, envconfig.OsLookuper())
}

// LoadDomain reads the configuration of the identity domain selected by
// prefix (AdminPrefix or ClientPrefix).
func LoadDomain(ctx context.Context, prefix string) (*DomainConfig, error) {
	_ = godotenv.Load()
	return loadDomain(ctx, prefix, envconfig.OsLookuper())
}

func loadGateway(ctx context.Context, lookuper envconfig.Lookuper) (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load gateway config: %w", err)
	}
	if cfg.Admin.Address == "" {
		cfg.Admin.Address = "localhost:50051"
	}
	if cfg.Client.Address == "" {
		cfg.Client.Address = "localhost:50052"
	}
	if cfg.ValidateTimeout <= 0 {
		return nil, fmt.Errorf("load gateway config: VALIDATE_TIMEOUT must be positive")
	}
	return &cfg, nil
}

func loadDomain(ctx context.Context, prefix string, lookuper envconfig.Lookuper) (*DomainConfig, error) {
	fallbackAddr, ok := defaultAddresses[prefix]
	if !ok {
		return nil, fmt.Errorf("load domain config: unknown prefix %q", prefix)
	}

	var cfg DomainConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(prefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("load %sconfig: %w", prefix, err)
	}
	if cfg.Address == "" {
		cfg.Address = fallbackAddr
	}
	if len(cfg.Auth.JWTSecret) < domain.MinSecretLength {
		return nil, fmt.Errorf("load %sconfig: %sJWT_SECRET must be at least %d bytes", prefix, prefix, domain.MinSecretLength)
	}
	if cfg.Auth.LoginMaxAttempts <= 0 {
		return nil, fmt.Errorf("load %sconfig: %sLOGIN_MAX_ATTEMPTS must be positive", prefix, prefix)
	}
	return &cfg, nil
}
