// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const placeholderSecret = "secret_key_change_me"

type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL  string
	MaxOpenConns int
	MaxIdleConns int

	SessionSecret string
	JWTSecret     string
	TokenTTL      time.Duration

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	SMTP  SMTPConfig
	Admin AdminConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether every SMTP setting is present.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != "" && s.From != ""
}

// AdminConfig is used by the seed-admin command only.
type AdminConfig struct {
	Email    string
	Name     string
	Password string
}

// Load reads the environment. Outside production a .env file is loaded first
// when present.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			slog.Info("no .env file found, reading settings from the environment")
		}
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		DatabaseURL:  getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkpost port=5432 sslmode=disable TimeZone=UTC"),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		SessionSecret: getEnv("SESSION_SECRET", placeholderSecret),
		JWTSecret:     getEnv("JWT_SECRET", placeholderSecret),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 24*time.Hour),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if cfg.IsProduction() {
		if cfg.SessionSecret == placeholderSecret {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production")
		}
		if cfg.JWTSecret == placeholderSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
