package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	MongoDB       MongoDBConfig
	JWT           JWTConfig
	Redis         RedisConfig
	Lock          LockConfig
	Push          PushConfig
	Dispatch      DispatchConfig
	Retry         RetryConfig
	Scheduler     SchedulerConfig
	Reprogramming ReprogrammingConfig
	LogLevel      string `validate:"oneof=debug info warn error"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string `validate:"required"`
	AllowedHosts    []string
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `validate:"oneof=mongo memory"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration `validate:"gt=0"`
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string `validate:"required"`
	ExpiresIn time.Duration
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LockConfig selects how campaign and reservation locks are held
type LockConfig struct {
	Driver string        `validate:"oneof=memory redis"`
	TTL    time.Duration `validate:"gt=0"`
	Wait   time.Duration `validate:"gt=0"`
}

// PushConfig holds push gateway configuration
type PushConfig struct {
	Mock  bool
	HTTP  PushHTTPConfig
	Kafka PushKafkaConfig
}

// PushHTTPConfig configures the REST push provider; disabled when BaseURL is empty
type PushHTTPConfig struct {
	BaseURL   string
	APISecret string
	Timeout   time.Duration
}

// PushKafkaConfig configures the Kafka push gateway; disabled when Brokers is empty
type PushKafkaConfig struct {
	Brokers []string
	Topic   string
}

// DispatchConfig bounds campaign fan-out
type DispatchConfig struct {
	Concurrency int `validate:"gte=1"`
}

// RetryConfig controls delivery status polling
type RetryConfig struct {
	StatusPollAttempts uint `validate:"gte=1"`
	InitialInterval    time.Duration
	MaxInterval        time.Duration
}

// SchedulerConfig controls the scheduled campaign sweep
type SchedulerConfig struct {
	Interval time.Duration `validate:"gt=0"`
}

// ReprogrammingConfig holds reservation rule settings
type ReprogrammingConfig struct {
	// TimeZone decides which calendar day a reservation start falls on
	TimeZone string
}

// Location returns the configured reprogramming time zone
func (c ReprogrammingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// Load loads configuration from .env, an optional config.yaml and environment
// variables. SERVER_PORT overrides Server.Port and so on.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and cross-field requirements
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Store.Driver == "mongo" && (c.MongoDB.URI == "" || c.MongoDB.Database == "") {
		return errors.New("invalid configuration: MongoDB.URI and MongoDB.Database are required for the mongo store")
	}
	if c.Lock.Driver == "redis" && c.Redis.Addr == "" {
		return errors.New("invalid configuration: Redis.Addr is required for the redis lock")
	}
	if c.Push.Kafka.Topic == "" && len(c.Push.Kafka.Brokers) > 0 {
		return errors.New("invalid configuration: Push.Kafka.Topic is required when brokers are set")
	}
	if _, err := c.Reprogramming.Location(); err != nil {
		return fmt.Errorf("invalid configuration: Reprogramming.TimeZone: %w", err)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("Server.ShutdownTimeout", 10*time.Second)
	v.SetDefault("Store.Driver", "mongo")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "tourbook")
	v.SetDefault("MongoDB.ConnectTimeout", 10*time.Second)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 24*time.Hour)
	v.SetDefault("Redis.Addr", "")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Lock.Driver", "memory")
	v.SetDefault("Lock.TTL", 30*time.Second)
	v.SetDefault("Lock.Wait", 5*time.Second)
	v.SetDefault("Push.Mock", true)
	v.SetDefault("Push.HTTP.BaseURL", "")
	v.SetDefault("Push.HTTP.APISecret", "")
	v.SetDefault("Push.HTTP.Timeout", 5*time.Second)
	v.SetDefault("Push.Kafka.Brokers", []string{})
	v.SetDefault("Push.Kafka.Topic", "push-notifications")
	v.SetDefault("Dispatch.Concurrency", 16)
	v.SetDefault("Retry.StatusPollAttempts", 5)
	v.SetDefault("Retry.InitialInterval", 200*time.Millisecond)
	v.SetDefault("Retry.MaxInterval", 2*time.Second)
	v.SetDefault("Scheduler.Interval", time.Minute)
	v.SetDefault("Reprogramming.TimeZone", "America/Lima")
	v.SetDefault("LogLevel", "info")
}
