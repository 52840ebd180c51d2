package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/logging"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	JWT         JWTConfig      `mapstructure:"jwt"`
	Logging     logging.Config `mapstructure:"logging"`
	Webhook     WebhookConfig  `mapstructure:"webhook"`
	Reels       ReelsConfig    `mapstructure:"reels"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
}

// RedisConfig holds Redis connection configuration. An empty Addr disables
// the name list snapshot.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
}

// KafkaConfig holds Kafka configuration. No brokers means no events.
type KafkaConfig struct {
	Brokers       []string          `mapstructure:"brokers"`
	ConsumerGroup string            `mapstructure:"consumer_group"`
	Topics        map[string]string `mapstructure:"topics"`
}

// Topic names used by the module.
const (
	TopicReelEvents   = "reel_events"
	TopicNameCommands = "name_commands"
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// WebhookConfig holds the optional spin result webhook.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Events  []string      `mapstructure:"events"`
}

// ReelsConfig points at the reel definition file or directory.
type ReelsConfig struct {
	ConfigPath string  `mapstructure:"config_path"`
	TimeScale  float64 `mapstructure:"time_scale"`
	Buffer     int     `mapstructure:"stream_buffer"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Enable environment variable substitution
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load loads configuration from YAML file using Viper
func Load(filename string) (*Config, error) {
	cfg, _, err := LoadWithViper(filename)
	return cfg, err
}

// LoadByEnv loads config-{env}.yaml from configDir, env taken from ENV or APP_ENV.
func LoadByEnv(configDir string) (*Config, error) {
	v := newViper()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	env := v.GetString("ENV")
	if env == "" {
		env = v.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config-%s", env))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.setDefaults()

	return &config, nil
}

// LoadWithViper loads configuration and returns the viper instance for custom usage
func LoadWithViper(filename string) (*Config, *viper.Viper, error) {
	v := newViper()
	v.SetConfigFile(filename)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.setDefaults()

	return &config, v, nil
}

// Default returns a config with every default applied, for runs without a file.
func Default() *Config {
	var c Config
	c.setDefaults()
	return &c
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	// A spin at the default reel length takes over three seconds.
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "reel:names:"
	}
	if c.Kafka.Topics == nil {
		c.Kafka.Topics = map[string]string{}
	}
	if c.Kafka.Topics[TopicReelEvents] == "" {
		c.Kafka.Topics[TopicReelEvents] = "lucky-draw.reel-events"
	}
	if c.Kafka.Topics[TopicNameCommands] == "" {
		c.Kafka.Topics[TopicNameCommands] = "lucky-draw.name-commands"
	}
	if c.Kafka.ConsumerGroup == "" {
		c.Kafka.ConsumerGroup = "lucky-draw"
	}
	if c.JWT.Expiration == 0 {
		c.JWT.Expiration = 12 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 10 * time.Second
	}
	if c.Reels.ConfigPath == "" {
		c.Reels.ConfigPath = "configs/reels"
	}
	if c.Reels.TimeScale == 0 {
		c.Reels.TimeScale = 1
	}
	if c.Reels.Buffer == 0 {
		c.Reels.Buffer = 128
	}
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Enabled reports whether Kafka brokers are configured.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Topic returns the configured topic for key.
func (c *KafkaConfig) Topic(key string) string {
	return c.Topics[key]
}

// IsDevelopment returns true if environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
