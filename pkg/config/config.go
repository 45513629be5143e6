package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret string

	// Payment gateway
	IntaSendBaseURL   string
	IntaSendPublicKey string
	IntaSendSecretKey string
	GatewayTimeout    time.Duration

	// Wallet
	Currency    string
	CountryCode string

	// Settlement tuning
	SettlementDispatchAttempts int
	SettlementDispatchBackoff  time.Duration
	SettlementBackoffCap       time.Duration
	SettlementPollInterval     time.Duration
	SettlementPollBudget       time.Duration

	// Background workers
	WorkerCount     int
	WorkerQueueSize int

	// Public webhook rate limit (requests per minute per IP)
	WebhookRateLimit int64

	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("INTASEND_BASE_URL", "https://sandbox.intasend.com")
	viper.SetDefault("INTASEND_PUBLIC_KEY", "")
	viper.SetDefault("INTASEND_SECRET_KEY", "")
	viper.SetDefault("GATEWAY_TIMEOUT", "15s")
	viper.SetDefault("WALLET_CURRENCY", "KES")
	viper.SetDefault("WALLET_COUNTRY_CODE", "254")
	viper.SetDefault("SETTLEMENT_DISPATCH_ATTEMPTS", 4)
	viper.SetDefault("SETTLEMENT_DISPATCH_BACKOFF", "500ms")
	viper.SetDefault("SETTLEMENT_BACKOFF_CAP", "5s")
	viper.SetDefault("SETTLEMENT_POLL_INTERVAL", "3s")
	viper.SetDefault("SETTLEMENT_POLL_BUDGET", "90s")
	viper.SetDefault("WORKER_COUNT", 4)
	viper.SetDefault("WORKER_QUEUE_SIZE", 1024)
	viper.SetDefault("WEBHOOK_RATE_LIMIT_PER_MINUTE", 120)
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.IntaSendBaseURL = viper.GetString("INTASEND_BASE_URL")
	cfg.IntaSendPublicKey = viper.GetString("INTASEND_PUBLIC_KEY")
	cfg.IntaSendSecretKey = viper.GetString("INTASEND_SECRET_KEY")
	if cfg.IntaSendSecretKey == "" {
		log.Println("Warning: INTASEND_SECRET_KEY environment variable not set. Gateway calls will be rejected.")
	}
	cfg.GatewayTimeout = viper.GetDuration("GATEWAY_TIMEOUT")

	cfg.Currency = viper.GetString("WALLET_CURRENCY")
	cfg.CountryCode = viper.GetString("WALLET_COUNTRY_CODE")

	cfg.SettlementDispatchAttempts = viper.GetInt("SETTLEMENT_DISPATCH_ATTEMPTS")
	cfg.SettlementDispatchBackoff = viper.GetDuration("SETTLEMENT_DISPATCH_BACKOFF")
	cfg.SettlementBackoffCap = viper.GetDuration("SETTLEMENT_BACKOFF_CAP")
	cfg.SettlementPollInterval = viper.GetDuration("SETTLEMENT_POLL_INTERVAL")
	cfg.SettlementPollBudget = viper.GetDuration("SETTLEMENT_POLL_BUDGET")

	cfg.WorkerCount = viper.GetInt("WORKER_COUNT")
	cfg.WorkerQueueSize = viper.GetInt("WORKER_QUEUE_SIZE")
	cfg.WebhookRateLimit = viper.GetInt64("WEBHOOK_RATE_LIMIT_PER_MINUTE")

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}
