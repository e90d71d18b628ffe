package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/hostline/hostbot/core/config"
	coredatabase "github.com/hostline/hostbot/core/database"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// SessionConfig selects and sizes the conversation session store.
type SessionConfig struct {
	Backend    string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	TTLMinutes int    `yaml:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
	Max        int    `yaml:"max" envconfig:"SESSION_MAX"`
}

// RedisConfig is used only when the redis session backend is selected.
type RedisConfig struct {
	Host     string `yaml:"host" envconfig:"REDIS_HOST"`
	Port     int    `yaml:"port" envconfig:"REDIS_PORT"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// Addr renders host:port for the redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig wires the provisioning event hand-off. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" envconfig:"KAFKA_TOPIC"`
}

// BotConfig holds bot-level knobs that are not part of the core chassis.
type BotConfig struct {
	SupportURL   string `yaml:"support_url" envconfig:"BOT_SUPPORT_URL"`
	SeedDemoData bool   `yaml:"seed_demo_data" envconfig:"SEED_DEMO_DATA"`
}

// Config is the full application configuration: chassis sections inlined plus
// the hosting-specific ones.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Session  SessionConfig       `yaml:"session"`
	Redis    RedisConfig         `yaml:"redis"`
	Kafka    KafkaConfig         `yaml:"kafka"`
	Bot      BotConfig           `yaml:"bot"`
}

// CoreConfig exposes the embedded chassis configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads the YAML file, applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalizeApp(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeApp(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if backend == "" {
		backend = SessionBackendMemory
	}
	switch backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.Redis.Host) == "" {
			return fmt.Errorf("redis.host is required when session.backend is 'redis'")
		}
		if cfg.Redis.Port <= 0 {
			return fmt.Errorf("redis.port must be > 0 when session.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", cfg.Session.Backend)
	}
	cfg.Session.Backend = backend

	if cfg.Session.TTLMinutes < 0 {
		return fmt.Errorf("session.ttl_minutes must be >= 0")
	}
	if cfg.Session.Max < 0 {
		return fmt.Errorf("session.max must be >= 0")
	}

	if len(cfg.Kafka.Brokers) > 0 && strings.TrimSpace(cfg.Kafka.Topic) == "" {
		cfg.Kafka.Topic = "order.created"
	}

	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 10
	}
	return nil
}
