package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"dicehall/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string // Registers commands in one guild for instant updates, empty registers globally
	DevUserID      string // Discord ID allowed to run developer-only admin commands

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Economy configuration
	StartingBalance int64

	// Redis configuration
	RedisAddr string

	// NATS configuration
	NATSServers     string // NATS server addresses (comma-separated), empty disables NATS
	PaymentsSubject string // Subject carrying bank transactions for topup reconciliation

	// Ops surface
	OpsHTTPPort    int
	GRPCHealthPort int

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Bank transfer topup configuration
	VietQRBank    string
	VietQRAccount string
	VietQRName    string

	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// TopupEnabled reports whether bank transfer details are configured
func (c *Config) TopupEnabled() bool {
	return c.VietQRBank != "" && c.VietQRAccount != "" && c.VietQRName != ""
}

// NATSEnabled reports whether a NATS server list was provided
func (c *Config) NATSEnabled() bool {
	return strings.TrimSpace(c.NATSServers) != ""
}

// IsDeveloper reports whether the given Discord ID matches the configured developer
func (c *Config) IsDeveloper(discordID string) bool {
	return c.DevUserID != "" && c.DevUserID == discordID
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		DevUserID:      os.Getenv("DEV_USER_ID"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		StartingBalance: 10000,

		RedisAddr: getEnvWithDefault("REDIS_ADDR", "redis:6379"),

		NATSServers:     os.Getenv("NATS_SERVERS"),
		PaymentsSubject: getEnvWithDefault("PAYMENTS_SUBJECT", "payments.bank.transactions"),

		OpsHTTPPort:    getEnvIntWithDefault("OPS_HTTP_PORT", 8899),
		GRPCHealthPort: getEnvIntWithDefault("GRPC_HEALTH_PORT", 9090),

		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "dicehall"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: getEnvIntWithDefault("OTEL_EXPORT_INTERVAL_MS", 15000),

		VietQRBank:    os.Getenv("VIETQR_BANK"),
		VietQRAccount: os.Getenv("VIETQR_ACCOUNT"),
		VietQRName:    os.Getenv("VIETQR_NAME"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	config.OTelEnabled = config.OTelExporterType != "none"

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		if config.StartingBalance < 0 {
			return nil, fmt.Errorf("STARTING_BALANCE cannot be negative")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		DiscordToken:     "test-token",
		StartingBalance:  10000,
		PaymentsSubject:  "payments.bank.transactions",
		OTelExporterType: "none",
		LogLevel:         "info",
	}
}
