package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Pool struct {
		// Source is "file" or "postgres".
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
	} `yaml:"pool"`

	Gateway struct {
		SendBufferSize int   `yaml:"send_buffer_size"`
		MaxMessageSize int64 `yaml:"max_message_size"`
	} `yaml:"gateway"`

	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
		PublishTicks  bool   `yaml:"publish_ticks"`
	} `yaml:"nats"`

	Archive struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
		MaxRetries int  `yaml:"max_retries"`
	} `yaml:"archive"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

func defaultConfig() *Config {
	var c Config
	c.Server.Port = "8080"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.IdleTimeout = 120 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.AllowedOrigins = []string{"*"}
	c.Pool.Source = "file"
	c.Pool.Path = "go/internal/assets/players.json"
	c.Gateway.SendBufferSize = 256
	c.Gateway.MaxMessageSize = 4096
	c.NATS.URL = "nats://localhost:4222"
	c.NATS.StreamName = "AUCTION_EVENTS"
	c.NATS.SubjectPrefix = "auction.events"
	c.Archive.BufferSize = 256
	c.Archive.MaxRetries = 3
	c.Log.Level = "info"
	c.Log.Pretty = true
	return &c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads path over the defaults and then applies environment
// overrides. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyEnv()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Pool.Source = strings.ToLower(strings.TrimSpace(getEnv("POOL_SOURCE", c.Pool.Source)))
	c.Pool.Path = getEnv("POOL_PATH", c.Pool.Path)
	c.Gateway.SendBufferSize = getEnvAsInt("GATEWAY_SEND_BUFFER", c.Gateway.SendBufferSize)
	c.NATS.Enabled = getEnvAsBool("NATS_ENABLED", c.NATS.Enabled)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.PublishTicks = getEnvAsBool("NATS_PUBLISH_TICKS", c.NATS.PublishTicks)
	c.Archive.Enabled = getEnvAsBool("ARCHIVE_ENABLED", c.Archive.Enabled)
	c.Archive.BufferSize = getEnvAsInt("ARCHIVE_BUFFER_SIZE", c.Archive.BufferSize)
	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))
	c.Log.Pretty = getEnvAsBool("LOG_PRETTY", c.Log.Pretty)
}

func (c *Config) validate() error {
	switch c.Pool.Source {
	case "file", "postgres":
	default:
		return fmt.Errorf("invalid pool source %q: must be file or postgres", c.Pool.Source)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}
