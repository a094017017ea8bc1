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

	// DeviceID identifies this physical station; it scopes the registration
	// cooldown and owns the device vault.
	DeviceID             string        `env:"DEVICE_ID,             default=station-1"`
	VaultPath            string        `env:"DEVICE_VAULT_PATH,     default=stairstreak-vault.db"`
	RegistrationCooldown time.Duration `env:"REGISTRATION_COOLDOWN, default=3s"`
	TokenTTL             time.Duration `env:"TOKEN_TTL,             default=24h"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=stairstreak"`
}

type RedisConfig struct {
	// Addr left empty selects the in-process cooldown gate instead of Redis.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
