package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CHAPERONE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CHAPERONE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// RedisURL is optional; with no value the service falls back to the
// in-memory session store.
func RedisURL() string {
	return os.Getenv("REDIS_URL")
}

// APIKey is the single service key required on authenticated routes.
func APIKey() string {
	return os.Getenv("API_KEY")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// SessionTTL controls how long detector sessions live in Redis.
// Defaults to 72h, roughly the lifetime of a staffing negotiation thread.
func SessionTTL() time.Duration {
	return durationEnv("SESSION_TTL", 72*time.Hour)
}

// MessengerProvider returns the configured outbound messenger.
// Defaults to "mock" so a bare checkout never texts anyone.
// Valid values: gateway, mock
func MessengerProvider() string {
	p := os.Getenv("MESSENGER_PROVIDER")
	if p == "" {
		return "mock"
	}
	return p
}

func MessengerGatewayURL() string {
	return os.Getenv("MESSENGER_GATEWAY_URL")
}

func MessengerGatewayToken() string {
	return os.Getenv("MESSENGER_GATEWAY_TOKEN")
}

// NotifierWebhookURL is optional; with no value operator events are dropped.
func NotifierWebhookURL() string {
	return os.Getenv("NOTIFIER_WEBHOOK_URL")
}

// ConsoleURL is optional; with no value console mirroring is disabled.
func ConsoleURL() string {
	return os.Getenv("CONSOLE_URL")
}

func ConsoleToken() string {
	return os.Getenv("CONSOLE_TOKEN")
}

// ReminderInterval is how often the pending-handoff sweeper runs.
// Defaults to 15m.
func ReminderInterval() time.Duration {
	return durationEnv("REMINDER_INTERVAL", 15*time.Minute)
}

// ReminderMaxAge is how long a handoff may sit pending before operators get
// nudged. Defaults to 30m.
func ReminderMaxAge() time.Duration {
	return durationEnv("REMINDER_MAX_AGE", 30*time.Minute)
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func durationEnv(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
