package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	// PublicBaseURL is the absolute prefix for the links embedded in
	// verification and reset emails.
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`

	// StoreDriver selects the account store engine: mongo or postgres.
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`

	// BcryptCost is the fixed password-hash work factor. 0 selects the
	// library default.
	BcryptCost int `env:"BCRYPT_COST, default=0"`

	// ResetEnabled switches the whole password-reset flow. When false the
	// reset endpoints answer 404.
	ResetEnabled bool `env:"RESET_ENABLED, default=true"`

	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Throttle ThrottleConfig
	SMTP     SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=account_service"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=postgres://localhost:5432/account_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ThrottleConfig bounds how often the email-sending endpoints (resend
// verification, reset request) may run per username. Limit 0 disables
// throttling entirely, which matches the historical behavior.
type ThrottleConfig struct {
	Limit  int           `env:"THROTTLE_LIMIT,  default=0"`
	Window time.Duration `env:"THROTTLE_WINDOW, default=1h"`
}

// SMTPConfig configures outbound mail. An empty Host selects the log-only
// sender, useful in development.
type SMTPConfig struct {
	Host string `env:"SMTP_HOST"`
	Port string `env:"SMTP_PORT, default=587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	From string `env:"SMTP_FROM, default=no-reply@localhost"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
