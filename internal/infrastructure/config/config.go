package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
	Beacon   BeaconConfig   `yaml:"beacon"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig holds persistence storage settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory", "sqlite", "mysql", or "firebase"
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Firebase FirebaseConfig `yaml:"firebase"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"` // Database file path, use ":memory:" for in-memory
}

// MySQLConfig holds MySQL-specific settings.
type MySQLConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	Database  string          `yaml:"database"`
	Username  string          `yaml:"username"`
	Password  string          `yaml:"password"`
	Pool      MySQLPoolConfig `yaml:"pool"`
	Timeout   time.Duration   `yaml:"timeout"`
	ParseTime bool            `yaml:"parse_time"`
	Charset   string          `yaml:"charset"`
}

// MySQLPoolConfig holds MySQL connection pool settings.
type MySQLPoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// FirebaseConfig holds Firebase Realtime Database REST settings.
type FirebaseConfig struct {
	DatabaseURL string        `yaml:"database_url"`
	AuthToken   string        `yaml:"auth_token"`
	Timeout     time.Duration `yaml:"timeout"`
}

// TelegramConfig holds inbound webhook settings.
type TelegramConfig struct {
	// WebhookSecret, when set, must match the X-Telegram-Bot-Api-Secret-Token
	// header on every delivery. Empty disables the check.
	WebhookSecret string `yaml:"webhook_secret"`
}

// BeaconConfig holds beacon behavior settings.
type BeaconConfig struct {
	// DefaultDuration is how long the beacon stays on when a message carries
	// no explicit duration.
	DefaultDuration time.Duration `yaml:"default_duration"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from file and environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			// Expand environment variables in YAML
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// overrideFromEnv overrides config values from environment variables.
func (c *Config) overrideFromEnv() {
	// Server
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}

	// Telegram
	if v := os.Getenv("TELEGRAM_WEBHOOK_SECRET"); v != "" {
		c.Telegram.WebhookSecret = v
	}

	// Beacon. BEACON_SECONDS is the historical name carried over from the
	// first deployment of this service.
	if v := os.Getenv("BEACON_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Beacon.DefaultDuration = time.Duration(secs) * time.Second
		}
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	// Storage
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("SQLITE_DATABASE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := os.Getenv("FIREBASE_DATABASE_URL"); v != "" {
		c.Storage.Firebase.DatabaseURL = v
	}
	if v := os.Getenv("FIREBASE_AUTH_TOKEN"); v != "" {
		c.Storage.Firebase.AuthToken = v
	}

	// MySQL
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		c.Storage.MySQL.Host = v
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Port = port
		}
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		c.Storage.MySQL.Database = v
	}
	if v := os.Getenv("MYSQL_USERNAME"); v != "" {
		c.Storage.MySQL.Username = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Storage.MySQL.Password = v
	}
}

// applyDefaults sets default values for unset config options.
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	// Beacon defaults. The 1s floor mirrors the duration parser's minimum.
	if c.Beacon.DefaultDuration == 0 {
		c.Beacon.DefaultDuration = 30 * time.Second
	}
	if c.Beacon.DefaultDuration < time.Second {
		c.Beacon.DefaultDuration = time.Second
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// Storage defaults
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "./data/beacon-bridge.db"
	}
	if c.Storage.Firebase.Timeout == 0 {
		c.Storage.Firebase.Timeout = 10 * time.Second
	}

	// MySQL defaults
	if c.Storage.MySQL.Port == 0 {
		c.Storage.MySQL.Port = 3306
	}
	if c.Storage.MySQL.Pool.MaxOpenConns == 0 {
		c.Storage.MySQL.Pool.MaxOpenConns = 25
	}
	if c.Storage.MySQL.Pool.MaxIdleConns == 0 {
		c.Storage.MySQL.Pool.MaxIdleConns = 5
	}
	if c.Storage.MySQL.Pool.ConnMaxLifetime == 0 {
		c.Storage.MySQL.Pool.ConnMaxLifetime = 3 * time.Minute
	}
	if c.Storage.MySQL.Pool.ConnMaxIdleTime == 0 {
		c.Storage.MySQL.Pool.ConnMaxIdleTime = 1 * time.Minute
	}
	if c.Storage.MySQL.Timeout == 0 {
		c.Storage.MySQL.Timeout = 5 * time.Second
	}
	if !c.Storage.MySQL.ParseTime {
		c.Storage.MySQL.ParseTime = true
	}
	if c.Storage.MySQL.Charset == "" {
		c.Storage.MySQL.Charset = "utf8mb4"
	}
}

// validate checks that required configuration is present.
func (c *Config) validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	validStorageTypes := map[string]bool{"memory": true, "sqlite": true, "mysql": true, "firebase": true}
	if !validStorageTypes[strings.ToLower(c.Storage.Type)] {
		return fmt.Errorf("invalid storage type: %s (must be memory, sqlite, mysql, or firebase)", c.Storage.Type)
	}

	switch strings.ToLower(c.Storage.Type) {
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required when storage type is sqlite")
		}
	case "mysql":
		if c.Storage.MySQL.Host == "" {
			return fmt.Errorf("storage.mysql.host is required when storage type is mysql")
		}
		if c.Storage.MySQL.Database == "" {
			return fmt.Errorf("storage.mysql.database is required when storage type is mysql")
		}
		if c.Storage.MySQL.Username == "" {
			return fmt.Errorf("storage.mysql.username is required when storage type is mysql")
		}
	case "firebase":
		if c.Storage.Firebase.DatabaseURL == "" {
			return fmt.Errorf("storage.firebase.database_url is required when storage type is firebase")
		}
	}

	return nil
}
