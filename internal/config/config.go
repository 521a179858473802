// Package config reads process settings from the environment, after loading a
// .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        string
	StoreDriver string // postgres or memory
	DatabaseURL string
	DBMaxConns  int32

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	RedisAddr     string
	RedisPassword string

	EvidenceDir      string
	LoginRatePerMin  int
	StaffHandles     []string
	StaticDir        string
	MigrateOnStartup bool
}

// Production reports whether APP_ENV is production.
func (c Config) Production() bool {
	return c.Env == "production"
}

// LoadConfig loads .env files (if any) and then reads the environment.
// A missing .env is reported through loadedEnv, not as an error.
func LoadConfig(files ...string) (cfg Config, loadedEnv bool, err error) {
	loadedEnv = godotenv.Load(files...) == nil
	cfg, err = FromEnv()
	return cfg, loadedEnv, err
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("PORT", "8080"),
		StoreDriver:   getenv("STORE_DRIVER", "postgres"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		EvidenceDir:   getenv("EVIDENCE_DIR", "./media"),
		StaticDir:     os.Getenv("STATIC_DIR"),
	}
	var errs []error

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL: invalid duration %q", os.Getenv("SESSION_TTL")))
	}
	cfg.SessionTTL = ttl

	cfg.CookieSecure = os.Getenv("COOKIE_SECURE") == "1"
	cfg.MigrateOnStartup = getenv("MIGRATE", "1") == "1"

	rate, err := strconv.Atoi(getenv("LOGIN_RATE_PER_MIN", "20"))
	if err != nil || rate <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_PER_MIN: want a positive integer"))
	}
	cfg.LoginRatePerMin = rate

	conns, err := strconv.ParseInt(getenv("DB_MAX_CONNS", "10"), 10, 32)
	if err != nil || conns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS: want a positive integer"))
	}
	cfg.DBMaxConns = int32(conns)

	for _, h := range strings.Split(os.Getenv("STAFF_HANDLES"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			cfg.StaffHandles = append(cfg.StaffHandles, h)
		}
	}

	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	return cfg, errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
