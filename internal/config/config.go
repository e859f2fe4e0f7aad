// Package config provides Viper-based configuration loading for the dice bot.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ConsoleConfig holds the line-oriented chat console listener settings.
type ConsoleConfig struct {
	// Host is the bind address for the console listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the console listener.
	Port int `mapstructure:"port"`
	// ReadTimeout bounds how long a connection may stay silent.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Channel is the channel every new connection joins.
	Channel string `mapstructure:"channel"`
	// Guild is the guild id console channels belong to. Empty makes every
	// console channel behave like a direct message channel.
	Guild string `mapstructure:"guild"`
	// MaxSessions caps concurrent connections; 0 means no cap.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (c ConsoleConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BotConfig holds command dispatch and dice engine settings.
type BotConfig struct {
	// DefaultPrefix is the command prefix used when no guild or channel prefix is stored.
	DefaultPrefix string `mapstructure:"default_prefix"`
	// OwnerPasswordHash is the bcrypt hash checked by the owner command.
	// Empty disables owner authentication.
	OwnerPasswordHash string `mapstructure:"owner_password_hash"`
	// MaxDice caps the dice in a single dice term.
	MaxDice int `mapstructure:"max_dice"`
	// MaxRepeat caps the repeat clause of an expression.
	MaxRepeat int `mapstructure:"max_repeat"`
	// Storage selects the keyword/prefix/character store: "postgres" or "memory".
	Storage string `mapstructure:"storage"`
	// RerollStore selects the reroll cache: "memory" or "bolt".
	RerollStore string `mapstructure:"reroll_store"`
	// RerollPath is the bbolt file used when RerollStore is "bolt".
	RerollPath string `mapstructure:"reroll_path"`
	// RerollCapacity bounds the number of cached rerollable replies.
	RerollCapacity int `mapstructure:"reroll_capacity"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Console  ConsoleConfig  `mapstructure:"console"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Bot      BotConfig      `mapstructure:"bot"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Bot.Storage == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateConsole(c.Console); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBot(c.Bot); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateConsole(c ConsoleConfig) error {
	var errs []string
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("console.port must be 1-65535, got %d", c.Port))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, "console.read_timeout must not be negative")
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, "console.write_timeout must not be negative")
	}
	if c.Channel == "" {
		errs = append(errs, "console.channel must not be empty")
	}
	if c.MaxSessions < 0 {
		errs = append(errs, fmt.Sprintf("console.max_sessions must not be negative, got %d", c.MaxSessions))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBot(b BotConfig) error {
	var errs []string
	if strings.TrimSpace(b.DefaultPrefix) == "" {
		errs = append(errs, "bot.default_prefix must not be empty")
	}
	if b.MaxDice < 1 {
		errs = append(errs, fmt.Sprintf("bot.max_dice must be >= 1, got %d", b.MaxDice))
	}
	if b.MaxRepeat < 1 {
		errs = append(errs, fmt.Sprintf("bot.max_repeat must be >= 1, got %d", b.MaxRepeat))
	}
	validStorage := map[string]bool{"postgres": true, "memory": true}
	if !validStorage[b.Storage] {
		errs = append(errs, fmt.Sprintf("bot.storage must be one of [postgres, memory], got %q", b.Storage))
	}
	switch b.RerollStore {
	case "memory":
	case "bolt":
		if b.RerollPath == "" {
			errs = append(errs, "bot.reroll_path must not be empty when bot.reroll_store is bolt")
		}
	default:
		errs = append(errs, fmt.Sprintf("bot.reroll_store must be one of [memory, bolt], got %q", b.RerollStore))
	}
	if b.RerollCapacity < 1 {
		errs = append(errs, fmt.Sprintf("bot.reroll_capacity must be >= 1, got %d", b.RerollCapacity))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DICEBOT_ prefix
	v.SetEnvPrefix("DICEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dicebot")
	v.SetDefault("database.password", "dicebot")
	v.SetDefault("database.name", "dicebot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("console.host", "0.0.0.0")
	v.SetDefault("console.port", 4000)
	v.SetDefault("console.read_timeout", "30m")
	v.SetDefault("console.write_timeout", "30s")
	v.SetDefault("console.channel", "lobby")
	v.SetDefault("console.guild", "console")
	v.SetDefault("console.max_sessions", 64)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("bot.default_prefix", "!")
	v.SetDefault("bot.owner_password_hash", "")
	v.SetDefault("bot.max_dice", 1000)
	v.SetDefault("bot.max_repeat", 20)
	v.SetDefault("bot.storage", "postgres")
	v.SetDefault("bot.reroll_store", "memory")
	v.SetDefault("bot.reroll_path", "rerolls.db")
	v.SetDefault("bot.reroll_capacity", 512)
}
