// Package config содержит логику чтения конфигурации витрины.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Допустимые значения SESSION_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config содержит параметры конфигурации витрины.
type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS"`
	BackendAddress string        `env:"BACKEND_ADDRESS"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	SessionStore string        `env:"SESSION_STORE"`
	DatabaseURI  string        `env:"DATABASE_URI"`
	RedisAddress string        `env:"REDIS_ADDRESS"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecret string        `env:"COOKIE_SECRET"`

	Mail MailConfig

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// MailConfig содержит параметры сервиса транзакционных писем.
type MailConfig struct {
	APIAddress      string  `env:"MAIL_API_ADDRESS" envDefault:"https://api.emailjs.com"`
	ServiceID       string  `env:"MAIL_SERVICE_ID"`
	TemplateID      string  `env:"MAIL_TEMPLATE_ID"`
	ReplyTemplateID string  `env:"MAIL_REPLY_TEMPLATE_ID"`
	SenderName      string  `env:"MAIL_SENDER_NAME" envDefault:"Support"`
	PublicKey       string  `env:"MAIL_PUBLIC_KEY"`
	PrivateKey      string  `env:"MAIL_PRIVATE_KEY"`
	RatePerSec      float64 `env:"MAIL_RATE_PER_SEC" envDefault:"1"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envBackendAddress := cfg.BackendAddress
	envSessionStore := cfg.SessionStore
	envDatabaseURI := cfg.DatabaseURI
	envRedisAddress := cfg.RedisAddress

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.BackendAddress, "b", "http://localhost:8081", "backend REST API address")
	flag.StringVar(&cfg.SessionStore, "s", StoreMemory, "session store: memory, redis or postgres")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddress, "r", "", "redis address")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envBackendAddress != "" {
		cfg.BackendAddress = envBackendAddress
	}
	if envSessionStore != "" {
		cfg.SessionStore = envSessionStore
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envRedisAddress != "" {
		cfg.RedisAddress = envRedisAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.SessionStore == "" {
		cfg.SessionStore = StoreMemory
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("session store %q requires redis address", c.SessionStore)
		}
	case StorePostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("session store %q requires database URI", c.SessionStore)
		}
	default:
		return fmt.Errorf("unknown session store %q", c.SessionStore)
	}
	return nil
}

// MailEnabled сообщает, заданы ли реквизиты почтового сервиса.
func (c *Config) MailEnabled() bool {
	return c.Mail.ServiceID != "" && c.Mail.TemplateID != "" && c.Mail.PublicKey != ""
}
