// Package config loads application configuration from environment variables.
//
// A .env file in the working directory is read first when it exists; values
// already present in the process environment take precedence over it.  All
// variables are parsed with caarlos0/env, so every field below documents its
// variable name and default in its struct tag.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  The nested structs group
// settings for the game rules, the response cache, the rate limiter, Redis
// and the message broker.
type Config struct {
	Env          string `env:"APP_ENV" envDefault:"dev"`             // application environment (dev, test, prod)
	Port         string `env:"APP_PORT" envDefault:"8000"`           // HTTP port to listen on
	DBUser       string `env:"DB_USER,required,notEmpty"`            // database username
	DBPass       string `env:"DB_PASS"`                              // database password (empty allowed)
	DBHost       string `env:"DB_HOST,required,notEmpty"`            // database host address
	DBPort       string `env:"DB_PORT" envDefault:"3306"`            // database port number
	DBName       string `env:"DB_NAME,required,notEmpty"`            // database name
	JWTSecret    string `env:"JWT_SECRET,required,notEmpty"`         // secret used to sign JWTs
	AccessTTLMin int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"30"` // access token time-to-live in minutes
	BcryptCost   int    `env:"BCRYPT_COST" envDefault:"10"`          // bcrypt cost for password hashing
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`          // logrus level name
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`         // text or json

	Game      GameConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Broker    BrokerConfig
}

// Load reads the optional .env file and parses the environment into a
// Config.  Missing required variables and malformed values are reported
// as a single error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.RateLimit.normalize()
	cfg.Game.normalize()
	return cfg, nil
}
