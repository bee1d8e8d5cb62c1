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
	"gopkg.in/yaml.v3"

	"github.com/feirinha-uesb/storefront/pkg/database"
)

// BackendConfig holds the marketplace backend settings
type BackendConfig struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	CatalogCacheTTL time.Duration `yaml:"catalog_cache_ttl"`
	DefaultTentCode int           `yaml:"default_tent_code"`
}

// RedisConfig holds the Redis connection. An empty address keeps sessions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SessionConfig holds the session token settings
type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// KafkaConfig holds the sale event settings. No brokers disables events.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
	Topic   string   `yaml:"topic"`
}

// Config is the storefront configuration
type Config struct {
	HTTPPort           string          `yaml:"http_port"`
	GRPCPort           string          `yaml:"grpc_port"`
	Environment        string          `yaml:"environment"`
	LogLevel           string          `yaml:"log_level"`
	ServiceName        string          `yaml:"service_name"`
	JaegerEndpoint     string          `yaml:"jaeger_endpoint"`
	TraceSampleRatio   float64         `yaml:"trace_sample_ratio"`
	Backend            BackendConfig   `yaml:"backend"`
	Redis              RedisConfig     `yaml:"redis"`
	Session            SessionConfig   `yaml:"session"`
	HistoryProvider    string          `yaml:"history_provider"`
	Database           database.Config `yaml:"database"`
	Kafka              KafkaConfig     `yaml:"kafka"`
	GridColumns        int             `yaml:"grid_columns"`
	RateLimitPerMinute int             `yaml:"rate_limit_per_minute"`
	CORSAllowedOrigins []string        `yaml:"cors_allowed_origins"`
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		HTTPPort:         "8084",
		GRPCPort:         "9094",
		Environment:      "development",
		LogLevel:         "info",
		ServiceName:      "storefront-service",
		JaegerEndpoint:   "http://localhost:14268/api/traces",
		TraceSampleRatio: 1,
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8080/crud/api",
			Timeout:         10 * time.Second,
			CatalogCacheTTL: time.Minute,
			DefaultTentCode: 1,
		},
		Session: SessionConfig{
			Secret: "feirinha-dev-secret",
			TTL:    7 * 24 * time.Hour,
		},
		HistoryProvider: "local",
		Database: database.Config{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "storefrontdb",
			SSLMode:  "disable",
		},
		Kafka: KafkaConfig{
			GroupID: "storefront-service",
			Topic:   "sale-created",
		},
		GridColumns:        3,
		RateLimitPerMinute: 120,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load builds the configuration: defaults, then the optional .env file,
// then the optional YAML file named by CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.GRPCPort = getEnv("GRPC_PORT", c.GRPCPort)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.ServiceName = getEnv("OTEL_SERVICE_NAME", c.ServiceName)
	c.JaegerEndpoint = getEnv("OTEL_EXPORTER_JAEGER_ENDPOINT", c.JaegerEndpoint)

	c.Backend.BaseURL = getEnv("BACKEND_BASE_URL", c.Backend.BaseURL)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.HistoryProvider = getEnv("HISTORY_PROVIDER", c.HistoryProvider)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	c.Kafka.Brokers = getEnvList("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", c.Kafka.GroupID)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)
	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)

	var err error
	if c.Backend.Timeout, err = getEnvDuration("BACKEND_TIMEOUT", c.Backend.Timeout); err != nil {
		return err
	}
	if c.Backend.CatalogCacheTTL, err = getEnvDuration("CATALOG_CACHE_TTL", c.Backend.CatalogCacheTTL); err != nil {
		return err
	}
	if c.Session.TTL, err = getEnvDuration("SESSION_TTL", c.Session.TTL); err != nil {
		return err
	}
	if c.Backend.DefaultTentCode, err = getEnvInt("DEFAULT_TENT_CODE", c.Backend.DefaultTentCode); err != nil {
		return err
	}
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.GridColumns, err = getEnvInt("GRID_COLUMNS", c.GridColumns); err != nil {
		return err
	}
	if c.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute); err != nil {
		return err
	}
	if c.TraceSampleRatio, err = getEnvFloat("OTEL_TRACES_SAMPLER_ARG", c.TraceSampleRatio); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.HistoryProvider {
	case "local", "api", "postgres":
	default:
		return fmt.Errorf("invalid HISTORY_PROVIDER %q: expected local, api or postgres", c.HistoryProvider)
	}
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.GridColumns <= 0 {
		return fmt.Errorf("GRID_COLUMNS must be positive, got %d", c.GridColumns)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", c.Backend.Timeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
