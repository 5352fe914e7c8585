package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Signing secrets for the two token families. Deliberately no generated
	// fallback: issuing tokens without a configured secret must fail.
	AccessTokenSecret  string
	RefreshTokenSecret string

	CORSAllowedOrigins []string

	// Redis-backed login limiter. Empty RedisAddr disables it.
	RedisAddr         string
	LoginMaxAttempts  int
	LoginAttemptsOver time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

func Load() *Config {
	maxAttempts, _ := strconv.Atoi(getEnvOrDefault("LOGIN_MAX_ATTEMPTS", "5"))
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	window, err := time.ParseDuration(getEnvOrDefault("LOGIN_ATTEMPT_WINDOW", "1m"))
	if err != nil || window <= 0 {
		window = time.Minute
	}

	return &Config{
		ServerAddr:         getEnvOrDefault("SERVER_ADDR", ":5000"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		DBHost:             getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:             getEnvOrDefault("DB_PORT", "5432"),
		DBUser:             getEnvOrDefault("DB_USER", "crewdesk"),
		DBPassword:         getEnvOrDefault("DB_PASSWORD", "crewdesk_dev_password"),
		DBName:             getEnvOrDefault("DB_NAME", "crewdesk"),
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		LoginMaxAttempts:   maxAttempts,
		LoginAttemptsOver:  window,
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:           os.Getenv("SMTP_USER"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		MailFrom:           getEnvOrDefault("MAIL_FROM", os.Getenv("SMTP_USER")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
