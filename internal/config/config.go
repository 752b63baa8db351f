package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP          HTTPConfig
	DatabaseURL   string
	Auth          AuthConfig
	Session       SessionConfig
	ExitShutsDown bool
	LogLevel      string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	CredentialsFile     string
	SeedDemoCredentials bool
	ShowDemoCredentials bool
}

type SessionConfig struct {
	TTL           time.Duration
	PurgeInterval time.Duration
	StateFile     string
	CookieName   string
	CookieSecure bool
}

// LoadDotEnv loads the first .env file found among paths into the process
// environment. Variables already set are not overridden. Missing files are
// skipped.
func LoadDotEnv(paths ...string) (string, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}

func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 10)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 20)) * time.Second,
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Auth: AuthConfig{
			CredentialsFile:     getEnv("AUTH_CREDENTIALS_FILE", ""),
			SeedDemoCredentials: getEnvBool("AUTH_SEED_DEMO_CREDENTIALS", true),
			ShowDemoCredentials: getEnvBool("AUTH_SHOW_DEMO_CREDENTIALS", true),
		},
		Session: SessionConfig{
			TTL:           time.Duration(getEnvInt("SESSION_TTL_SEC", 3600)) * time.Second,
			PurgeInterval: time.Duration(getEnvInt("SESSION_PURGE_INTERVAL_SEC", 300)) * time.Second,
			StateFile:     getEnv("SESSION_STATE_FILE", ""),
			CookieName:    getEnv("SESSION_COOKIE_NAME", "secureentry_session"),
			CookieSecure:  getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		ExitShutsDown: getEnvBool("APP_EXIT_SHUTS_DOWN", false),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	if cfg.HTTP.Addr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT_SEC must be > 0")
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL_SEC must be > 0")
	}
	if cfg.Session.PurgeInterval <= 0 {
		return Config{}, fmt.Errorf("SESSION_PURGE_INTERVAL_SEC must be > 0")
	}
	if strings.ContainsAny(cfg.Session.CookieName, " ;,=\t") {
		return Config{}, fmt.Errorf("SESSION_COOKIE_NAME %q is not a valid cookie name", cfg.Session.CookieName)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
