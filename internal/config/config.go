// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Timezone  string          `mapstructure:"timezone"`
	Economy   EconomyConfig   `mapstructure:"economy"`
	Cooldown  CooldownConfig  `mapstructure:"cooldown"`
	Daily     DailyConfig     `mapstructure:"daily"`
	Quest     QuestConfig     `mapstructure:"quest"`
	Games     GamesConfig     `mapstructure:"games"`
	Shop      ShopConfig      `mapstructure:"shop"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	// Driver selects the balance store: "postgres" or "memory".
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds the Redis connection used by the redis cooldown backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPConfig holds the ops HTTP server configuration. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// EconomyConfig holds account defaults.
type EconomyConfig struct {
	InitialCoins int64 `mapstructure:"initial_coins"`
}

// CooldownConfig selects the cooldown backend: "memory" or "redis".
type CooldownConfig struct {
	Backend string `mapstructure:"backend"`
}

// DailyConfig holds the /daily check-in reward.
type DailyConfig struct {
	XP    int64 `mapstructure:"xp"`
	Coins int64 `mapstructure:"coins"`
}

// QuestConfig holds the /claimdaily quest reward.
type QuestConfig struct {
	RequiredDayXP int64 `mapstructure:"required_day_xp"`
	BonusXP       int64 `mapstructure:"bonus_xp"`
	BonusCoins    int64 `mapstructure:"bonus_coins"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Quiz   QuizConfig   `mapstructure:"quiz"`
	Duel   DuelConfig   `mapstructure:"duel"`
	TaiXiu TaiXiuConfig `mapstructure:"taixiu"`
	Steal  StealConfig  `mapstructure:"steal"`
	Hunt   HuntConfig   `mapstructure:"hunt"`
	Race   RaceConfig   `mapstructure:"race"`
}

// QuizConfig holds the arithmetic quiz configuration.
type QuizConfig struct {
	DailyCap     int64         `mapstructure:"daily_cap"`
	GainXP       int64         `mapstructure:"gain_xp"`
	PenaltyXP    int64         `mapstructure:"penalty_xp"`
	PenaltyCoins int64         `mapstructure:"penalty_coins"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Grace        time.Duration `mapstructure:"grace"`
}

// DuelConfig holds duel configuration. A zero Timeout disables expiry.
type DuelConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// TaiXiuConfig holds tai-xiu configuration.
type TaiXiuConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	Multiplier string        `mapstructure:"multiplier"`
}

// StealConfig holds steal configuration.
type StealConfig struct {
	Cooldown      time.Duration `mapstructure:"cooldown"`
	SuccessChance float64       `mapstructure:"success_chance"`
}

// HuntConfig holds hunt configuration.
type HuntConfig struct {
	WinChance      float64 `mapstructure:"win_chance"`
	WinMultiplier  string  `mapstructure:"win_multiplier"`
	LossMultiplier string  `mapstructure:"loss_multiplier"`
}

// RaceConfig holds race configuration.
type RaceConfig struct {
	WinChance float64 `mapstructure:"win_chance"`
}

// ShopConfig holds the shop catalog.
type ShopConfig struct {
	Items         []ShopItemConfig     `mapstructure:"items"`
	RandomRewards []RandomRewardConfig `mapstructure:"random_rewards"`
}

// ShopItemConfig is one purchasable item. Items of type "box" draw a
// random reward instead of granting Type itself.
type ShopItemConfig struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Price int64  `mapstructure:"price"`
	Type  string `mapstructure:"type"`
}

// RandomRewardConfig is one bucket of the box draw. Chances are percentages.
type RandomRewardConfig struct {
	Type   string  `mapstructure:"type"`
	Chance float64 `mapstructure:"chance"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
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

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, GAMES_QUIZ_DAILY_CAP
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gamebot")
	v.SetDefault("database.name", "gamebot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("economy.initial_coins", 100)
	v.SetDefault("cooldown.backend", "memory")

	v.SetDefault("daily.xp", 10)
	v.SetDefault("daily.coins", 20)
	v.SetDefault("quest.required_day_xp", 40)
	v.SetDefault("quest.bonus_xp", 30)
	v.SetDefault("quest.bonus_coins", 30)

	v.SetDefault("games.quiz.daily_cap", 200)
	v.SetDefault("games.quiz.gain_xp", 10)
	v.SetDefault("games.quiz.penalty_xp", 5)
	v.SetDefault("games.quiz.penalty_coins", 5)
	v.SetDefault("games.quiz.timeout", "30s")
	v.SetDefault("games.quiz.grace", "500ms")
	v.SetDefault("games.duel.timeout", "5m")
	v.SetDefault("games.taixiu.timeout", "2m")
	v.SetDefault("games.taixiu.multiplier", "1.8")
	v.SetDefault("games.steal.cooldown", "1h")
	v.SetDefault("games.steal.success_chance", 0.3)
	v.SetDefault("games.hunt.win_chance", 0.6)
	v.SetDefault("games.hunt.win_multiplier", "1.5")
	v.SetDefault("games.hunt.loss_multiplier", "0.5")
	v.SetDefault("games.race.win_chance", 0.5)

	v.SetDefault("shop.items", []map[string]any{
		{"id": "box", "name": "Random box", "price": 50, "type": "box"},
		{"id": "vip", "name": "VIP title (7 days)", "price": 500, "type": "vip"},
	})
	v.SetDefault("shop.random_rewards", []map[string]any{
		{"type": "coin_bonus", "chance": 30},
		{"type": "xp_bonus", "chance": 20},
		{"type": "vip", "chance": 5},
	})
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Cooldown.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cooldown backend %q", c.Cooldown.Backend)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Games.Quiz.Timeout <= 0 {
		return fmt.Errorf("games.quiz.timeout must be positive")
	}
	var total float64
	for _, r := range c.Shop.RandomRewards {
		total += r.Chance
	}
	if total > 100 {
		return fmt.Errorf("shop.random_rewards chances sum to %.1f, above 100", total)
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.Admin.IDs, userID)
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	return slices.Contains(c.Whitelist.Chats, chatID)
}
