package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("DISPATCH_CONCURRENCY", "4")
	t.Setenv("SCHEDULER_INTERVAL", "30s")
	t.Setenv("PUSH_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 4, cfg.Dispatch.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Push.Kafka.Brokers)
	assert.Equal(t, "memory", cfg.Lock.Driver)
	assert.Equal(t, uint(5), cfg.Retry.StatusPollAttempts)
	assert.Equal(t, "info", cfg.LogLevel)

	loc, err := cfg.Reprogramming.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Lima", loc.String())
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "Secret")
}

func TestValidate_CrossFieldRules(t *testing.T) {
	base := func() Config {
		return Config{
			Server:        ServerConfig{Port: "4000", ShutdownTimeout: time.Second},
			Store:         StoreConfig{Driver: "memory"},
			MongoDB:       MongoDBConfig{ConnectTimeout: time.Second},
			JWT:           JWTConfig{Secret: "s"},
			Lock:          LockConfig{Driver: "memory", TTL: time.Second, Wait: time.Second},
			Dispatch:      DispatchConfig{Concurrency: 1},
			Retry:         RetryConfig{StatusPollAttempts: 1},
			Scheduler:     SchedulerConfig{Interval: time.Second},
			Reprogramming: ReprogrammingConfig{TimeZone: "UTC"},
			LogLevel:      "debug",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "mongo needs uri", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: "MongoDB.URI"},
		{name: "redis lock needs addr", mutate: func(c *Config) { c.Lock.Driver = "redis" }, wantErr: "Redis.Addr"},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Driver = "postgres" }, wantErr: "Driver"},
		{name: "bad time zone", mutate: func(c *Config) { c.Reprogramming.TimeZone = "Mars/Olympus" }, wantErr: "TimeZone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
