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
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Issuer  IssuerConfig
	Payment PaymentConfig
	Admin   AdminConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IssuerConfig points at the remote key-issuing endpoint. Timeout=0 leaves
// the HTTP client without a deadline; a hung issuance call then blocks the
// purchase until the transport gives up.
type IssuerConfig struct {
	URL     string        `env:"ISSUER_URL, default=http://localhost:9090/issue"`
	Timeout time.Duration `env:"ISSUER_TIMEOUT, default=0"`
}

// PaymentConfig holds the static top-up redirect. No parameters are passed
// and no callback exists; crediting balances stays a manual admin action.
type PaymentConfig struct {
	TopUpURL string `env:"PAYMENT_TOPUP_URL, default=https://pay.example.com/topup"`
}

// AdminConfig seeds the bootstrap admin account on first start when no
// account with that username exists yet.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
