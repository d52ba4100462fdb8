package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingEnv = errors.New("required environment variable not set")
	ErrInvalidEnv = errors.New("invalid environment variable")
)

type Config struct {
	Port    string
	GinMode string

	DBDriver          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret  string
	JWTIssuer  string
	JWTTTL     time.Duration
	BcryptCost int

	RedisURL                string
	RevocationPurgeSchedule string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	AuthRateEvery     time.Duration
	AuthRateBurst     int

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads the environment, optionally seeded from a .env file. JWT_SECRET
// and DATABASE_URL have no defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	getEnvInt := func(key string, def int) int {
		n, err := parseEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}
	getEnvDuration := func(key string, def time.Duration) time.Duration {
		d, err := parseEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTIssuer:  getEnv("JWT_ISSUER", "clipper-lms"),
		JWTTTL:     getEnvDuration("JWT_TTL", 24*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),

		RedisURL:                os.Getenv("REDIS_URL"),
		RevocationPurgeSchedule: getEnv("REVOCATION_PURGE_SCHEDULE", "@every 1h"),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 50),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Second),
		AuthRateEvery:     getEnvDuration("AUTH_RATE_EVERY", 12*time.Second),
		AuthRateBurst:     getEnvInt("AUTH_RATE_BURST", 5),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://127.0.0.1:5500"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET", ErrMissingEnv)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissingEnv)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidEnv, key, v)
	}
	return n, nil
}

// parseEnvDuration accepts Go durations ("90s", "24h") and "0". A bare
// number such as "24" is rejected rather than guessed.
func parseEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidEnv, key, v)
	}
	return d, nil
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
