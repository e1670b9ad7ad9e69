// Package config loads server settings from the environment, an optional
// .env file and an optional config file named by SPLITLEDGER_CONFIG.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds server configuration.
type Config struct {
	Port        string
	MetricsPort string
	DBPath      string

	JWTSecret     string
	TokenDuration time.Duration

	LogLevel  string
	LogFormat string

	AMQPURL       string
	AMQPExchange  string
	NotifyTimeout time.Duration

	TxRetries int
}

const defaultJWTSecret = "dev-secret-change-in-production"

// Load reads .env (if present), then the config file, then the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("metrics_port", "9090")
	v.SetDefault("db_path", "splitledger.db")
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("token_duration", "24h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "splitledger.events")
	v.SetDefault("notify_timeout", "5s")
	v.SetDefault("tx_retries", 3)

	if path := os.Getenv("SPLITLEDGER_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.AutomaticEnv()

	return &Config{
		Port:          v.GetString("port"),
		MetricsPort:   v.GetString("metrics_port"),
		DBPath:        v.GetString("db_path"),
		JWTSecret:     v.GetString("jwt_secret"),
		TokenDuration: v.GetDuration("token_duration"),
		LogLevel:      v.GetString("log_level"),
		LogFormat:     v.GetString("log_format"),
		AMQPURL:       v.GetString("amqp_url"),
		AMQPExchange:  v.GetString("amqp_exchange"),
		NotifyTimeout: v.GetDuration("notify_timeout"),
		TxRetries:     v.GetInt("tx_retries"),
	}, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	for name, p := range map[string]string{"port": c.Port, "metrics port": c.MetricsPort} {
		if n, err := strconv.Atoi(p); err != nil {
			problems = append(problems, fmt.Sprintf("invalid %s '%s': must be a number", name, p))
		} else if n < 1 || n > 65535 {
			problems = append(problems, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, n))
		}
	}
	if c.Port == c.MetricsPort {
		problems = append(problems, "port and metrics port must differ")
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT secret cannot be empty")
	}
	if c.TokenDuration <= 0 {
		problems = append(problems, "token duration must be positive")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			problems = append(problems, "AMQP URL must use amqp:// or amqps://")
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange cannot be empty when AMQP URL is set")
		}
	}
	if c.NotifyTimeout <= 0 {
		problems = append(problems, "notify timeout must be positive")
	}
	if c.TxRetries < 1 {
		problems = append(problems, fmt.Sprintf("invalid tx retries %d: must be at least 1", c.TxRetries))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// UsesDefaultSecret reports whether the development JWT secret is in use.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}
