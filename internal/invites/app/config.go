package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTSecret string // Required: shared HS256 secret for verifying bearer tokens
	Issuer    string // Issuer claim expected on bearer tokens (default: teamlink)
	AppOrigin string // Origin the redemption link is rendered against (default: http://localhost:3000)

	DatabaseFile string // Path to SQLite database file (default: ./invites.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)

	SMTPHost     string // SMTP relay host; empty disables outbound email
	SMTPPort     int    // SMTP relay port (default: 587)
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	InviteRateLimitMax    int           // Max invitations per inviter in the window (default: 5)
	InviteRateLimitWindow time.Duration // Trailing window for the issuance limit (default: 60s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		JWTSecret: os.Getenv("INVITES_JWT_SECRET"),
		Issuer:    getEnvOrDefault("INVITES_ISSUER", "teamlink"),
		AppOrigin: getEnvOrDefault("INVITES_APP_ORIGIN", "http://localhost:3000"),

		DatabaseFile: getEnvOrDefault("INVITES_DATABASE_FILE", "invites.db"),
		PepperFile:   getEnvOrDefault("INVITES_PEPPER_FILE", "pepper"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		InviteRateLimitMax:    getEnvIntOrDefault("INVITES_RATE_LIMIT_MAX", 5),
		InviteRateLimitWindow: getEnvDurationOrDefault("INVITES_RATE_LIMIT_WINDOW", 60*time.Second),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
