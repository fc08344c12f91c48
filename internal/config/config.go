// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"matchday-bot/internal/game/matchday"
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Event bus backends.
const (
	EventsNone  = "none"
	EventsNATS  = "nats"
	EventsKafka = "kafka"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Players   []PlayerConfig  `mapstructure:"players"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Events    EventsConfig    `mapstructure:"events"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// PlayerConfig seeds one participant of the game.
type PlayerConfig struct {
	Handle string `mapstructure:"handle"`
	Name   string `mapstructure:"name"`
}

// RulesConfig holds the game rules.
type RulesConfig struct {
	MinOdds            string `mapstructure:"min_odds"`
	JollyQuota         int    `mapstructure:"jolly_quota"`
	JollyPenalty       int64  `mapstructure:"jolly_penalty"`
	LossCharge         int64  `mapstructure:"loss_charge"`
	AllowStartedWagers bool   `mapstructure:"allow_started_wagers"`
	MissingWagerLoss   bool   `mapstructure:"missing_wager_loss"`
	AbsentPlayer       string `mapstructure:"absent_player"`
}

// StoreConfig selects where the game document lives.
type StoreConfig struct {
	Kind string `mapstructure:"kind"`
	Path string `mapstructure:"path"`
	Key  string `mapstructure:"key"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// ScheduleConfig points at the league schedule file.
type ScheduleConfig struct {
	Path string `mapstructure:"path"`
}

// ProviderConfig configures the match outcome source.
type ProviderConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	StaticPath    string        `mapstructure:"static_path"`
}

// CacheConfig configures the Redis outcome cache. An empty address disables it.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// EventsConfig selects the event bus.
type EventsConfig struct {
	Kind    string   `mapstructure:"kind"`
	URL     string   `mapstructure:"url"`
	Subject string   `mapstructure:"subject"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MetricsConfig configures the metrics endpoint. An empty port disables it.
type MetricsConfig struct {
	Port string `mapstructure:"port"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// MinOddsDecimal parses the configured minimum odds.
func (r *RulesConfig) MinOddsDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(r.MinOdds)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rules.min_odds %q: %w", r.MinOdds, err)
	}
	return d, nil
}

// GameRules converts the rules section into the core rule set.
func (r *RulesConfig) GameRules() (matchday.Rules, error) {
	minOdds, err := r.MinOddsDecimal()
	if err != nil {
		return matchday.Rules{}, err
	}
	return matchday.Rules{
		MinOdds:            minOdds,
		JollyQuota:         r.JollyQuota,
		JollyPenalty:       r.JollyPenalty,
		LossCharge:         r.LossCharge,
		AllowStartedWagers: r.AllowStartedWagers,
	}, nil
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, STORE_KIND, RULES_MIN_ODDS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not found is OK - env vars can provide all config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_timeout", "10s")
	v.SetDefault("bot.lock_timeout", "5s")

	v.SetDefault("rules.min_odds", "1.50")
	v.SetDefault("rules.jolly_quota", 3)
	v.SetDefault("rules.jolly_penalty", 20)
	v.SetDefault("rules.loss_charge", 5)
	v.SetDefault("rules.allow_started_wagers", false)
	v.SetDefault("rules.missing_wager_loss", false)
	v.SetDefault("rules.absent_player", "unresolvable")

	v.SetDefault("store.kind", StoreFile)
	v.SetDefault("store.path", "data/game.json")
	v.SetDefault("store.key", "default")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "matchday")
	v.SetDefault("database.name", "matchday")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("schedule.path", "data/schedule.json")

	v.SetDefault("provider.timeout", "10s")
	v.SetDefault("provider.rate_per_second", 2)
	v.SetDefault("provider.burst", 2)

	v.SetDefault("cache.ttl", "6h")

	v.SetDefault("events.kind", EventsNone)
	v.SetDefault("events.subject", "matchday")
	v.SetDefault("events.topic", "matchday-events")
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := c.Rules.MinOddsDecimal(); err != nil {
		return err
	}
	if c.Rules.JollyQuota < 1 {
		return fmt.Errorf("rules.jolly_quota must be at least 1, got %d", c.Rules.JollyQuota)
	}
	switch c.Rules.AbsentPlayer {
	case "unresolvable", "lost":
	default:
		return fmt.Errorf("rules.absent_player must be unresolvable or lost, got %q", c.Rules.AbsentPlayer)
	}
	switch c.Store.Kind {
	case StoreFile, StorePostgres:
	default:
		return fmt.Errorf("unknown store.kind %q", c.Store.Kind)
	}
	switch c.Events.Kind {
	case EventsNone, EventsNATS, EventsKafka:
	default:
		return fmt.Errorf("unknown events.kind %q", c.Events.Kind)
	}
	seen := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if !strings.HasPrefix(p.Handle, "@") {
			return fmt.Errorf("player handle %q must start with @", p.Handle)
		}
		if seen[p.Handle] {
			return fmt.Errorf("duplicate player handle %q", p.Handle)
		}
		seen[p.Handle] = true
	}
	return nil
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
