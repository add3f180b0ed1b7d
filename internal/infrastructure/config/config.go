package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string        `env:"PORT,         default=8080"`
	Env         string        `env:"ENV,          default=development"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`
	TokenSecret string        `env:"TOKEN_SECRET, required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=1h"`

	Lockout LockoutConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// LockoutConfig tunes the brute-force protection.
type LockoutConfig struct {
	MaxAttempts   int           `env:"LOCKOUT_MAX_ATTEMPTS,   default=5"`
	BlockDuration time.Duration `env:"LOCKOUT_BLOCK_DURATION, default=5m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
