package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"dailybet/database"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Database configuration
	DatabaseURL  string `yaml:"database_url"`
	DatabaseName string `yaml:"database_name"`

	// Auth
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	LoginRateLimit  int           `yaml:"login_rate_limit"` // attempts per LoginRateWindow
	LoginRateWindow time.Duration `yaml:"login_rate_window"`

	// Deposits
	PlatformWallet   string        `yaml:"platform_wallet"`
	EtherscanAPIKey  string        `yaml:"etherscan_api_key"`
	EtherscanBaseURL string        `yaml:"etherscan_base_url"`
	EtherscanTimeout time.Duration `yaml:"etherscan_timeout"`

	// Event broker: "none", "nats" or "kafka"
	EventBroker  string   `yaml:"event_broker"`
	NATSServers  string   `yaml:"nats_servers"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	// Discord announcements for line updates, optional
	DiscordToken             string `yaml:"discord_token"`
	DiscordAnnounceChannelID string `yaml:"discord_announce_channel_id"`

	// Observability
	MetricsExporter string `yaml:"metrics_exporter"` // none, console, otlp
	OTLPEndpoint    string `yaml:"otlp_endpoint"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`

	// Environment
	Environment string `yaml:"environment"` // "development", "production" or "test"
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
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
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

// IsOriginAllowed reports whether origin may call the API. An empty list allows everything.
func (c *Config) IsOriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func defaults() *Config {
	return &Config{
		Port:             "5000",
		TokenTTL:         7 * 24 * time.Hour,
		LoginRateLimit:   10,
		LoginRateWindow:  15 * time.Minute,
		EtherscanBaseURL: "https://api.etherscan.io/api",
		EtherscanTimeout: 10 * time.Second,
		EventBroker:      "none",
		NATSServers:      "nats://nats:4222",
		KafkaTopic:       "dailybet.events",
		MetricsExporter:  "none",
		LogLevel:         "info",
		LogFormat:        "text",
		Environment:      "development",
	}
}

// load builds the config from defaults, then an optional YAML file, then the environment
func load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	config := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadFile overlays a YAML config file on top of config
func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(config *Config) {
	config.Port = getEnvWithDefault("PORT", config.Port)
	config.DatabaseURL = getEnvWithDefault("DATABASE_URL", config.DatabaseURL)
	config.DatabaseName = getEnvWithDefault("DATABASE_NAME", config.DatabaseName)
	config.JWTSecret = getEnvWithDefault("JWT_SECRET", config.JWTSecret)
	config.PlatformWallet = getEnvWithDefault("PLATFORM_WALLET", config.PlatformWallet)
	config.EtherscanAPIKey = getEnvWithDefault("ETHERSCAN_API_KEY", config.EtherscanAPIKey)
	config.EtherscanBaseURL = getEnvWithDefault("ETHERSCAN_BASE_URL", config.EtherscanBaseURL)
	config.EventBroker = strings.ToLower(getEnvWithDefault("EVENT_BROKER", config.EventBroker))
	config.NATSServers = getEnvWithDefault("NATS_SERVERS", config.NATSServers)
	config.KafkaTopic = getEnvWithDefault("KAFKA_TOPIC", config.KafkaTopic)
	config.DiscordToken = getEnvWithDefault("DISCORD_TOKEN", config.DiscordToken)
	config.DiscordAnnounceChannelID = getEnvWithDefault("DISCORD_ANNOUNCE_CHANNEL_ID", config.DiscordAnnounceChannelID)
	config.MetricsExporter = strings.ToLower(getEnvWithDefault("METRICS_EXPORTER", config.MetricsExporter))
	config.OTLPEndpoint = getEnvWithDefault("OTLP_ENDPOINT", config.OTLPEndpoint)
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", config.LogLevel)
	config.LogFormat = getEnvWithDefault("LOG_FORMAT", config.LogFormat)
	config.Environment = getEnvWithDefault("ENVIRONMENT", config.Environment)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = splitList(origins)
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		config.KafkaBrokers = splitList(brokers)
	}
	if limit := os.Getenv("LOGIN_RATE_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			config.LoginRateLimit = parsed
		}
	}
	if timeout := os.Getenv("ETHERSCAN_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			config.EtherscanTimeout = parsed
		}
	}
}

func (c *Config) validate() error {
	switch c.EventBroker {
	case "none", "nats", "kafka":
	default:
		return fmt.Errorf("EVENT_BROKER must be one of none, nats, kafka (got %q)", c.EventBroker)
	}

	if c.Environment == "test" {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.PlatformWallet == "" {
		return fmt.Errorf("PLATFORM_WALLET is required")
	}
	if c.EventBroker == "kafka" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENT_BROKER=kafka")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
	config := defaults()
	config.Environment = "test"
	config.JWTSecret = "test-secret"
	config.PlatformWallet = "0x1111111111111111111111111111111111111111"
	config.EtherscanBaseURL = "http://127.0.0.1:0"
	return config
}
