package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environments recognised by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port int
	Env  string

	MongoURI      string
	MongoDatabase string

	JWTAccessSecret  string
	JWTAccessTTL     time.Duration
	JWTRefreshSecret string
	JWTRefreshTTL    time.Duration
	BcryptCost       int

	FrontendURL string
	BodyLimit   string
}

// IsDevelopment reports whether diagnostic output may be sent to clients.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads configuration from an optional .env file and the environment,
// and validates required fields. Variables already set in the environment
// take precedence over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	port, err := getEnvInt("PORT", 4242)
	if err != nil {
		return Config{}, fmt.Errorf("parse PORT: %w", err)
	}

	accessTTL, err := getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse JWT_ACCESS_TTL: %w", err)
	}

	refreshTTL, err := getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("parse JWT_REFRESH_TTL: %w", err)
	}

	cost, err := getEnvInt("BCRYPT_COST", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse BCRYPT_COST: %w", err)
	}

	cfg := Config{
		Port:             port,
		Env:              getEnv("APP_ENV", EnvProduction),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGO_DATABASE", "bicycle-boulevard"),
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		JWTAccessTTL:     accessTTL,
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTRefreshTTL:    refreshTTL,
		BcryptCost:       cost,
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		BodyLimit:        getEnv("BODY_LIMIT", "1M"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}
