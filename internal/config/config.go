package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/trogers1052/eod-connector/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultSymbols is the symbol list used when neither the file nor the environment supplies one
var DefaultSymbols = []string{"AAPL", "TSLA"}

// Config holds all application configuration
type Config struct {
	APIKey            string         `json:"apikey" yaml:"apikey"`
	Symbols           []string       `json:"symbols" yaml:"symbols"`
	BaseURL           string         `json:"base_url" yaml:"base_url"`
	StartDate         string         `json:"start_date" yaml:"start_date"`
	RequestTimeoutSec int            `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	RequestsPerMinute int            `json:"requests_per_minute" yaml:"requests_per_minute"` // 0 = unpaced
	UserAgent         string         `json:"user_agent" yaml:"user_agent"`
	Proxy             string         `json:"proxy" yaml:"proxy"`
	Database          DatabaseConfig `json:"database" yaml:"database"`
	State             StateConfig    `json:"state" yaml:"state"`
	Kafka             KafkaConfig    `json:"kafka" yaml:"kafka"`
	Server            ServerConfig   `json:"server" yaml:"server"`
	Schedule          ScheduleConfig `json:"schedule" yaml:"schedule"`
	Log               LogConfig      `json:"log" yaml:"log"`
}

// DatabaseConfig holds warehouse configuration
type DatabaseConfig struct {
	Driver     string `json:"driver" yaml:"driver"` // postgres or sqlite
	Host       string `json:"host" yaml:"host"`
	Port       string `json:"port" yaml:"port"`
	User       string `json:"user" yaml:"user"`
	Password   string `json:"password" yaml:"password"`
	DBName     string `json:"dbname" yaml:"dbname"`
	SSLMode    string `json:"sslmode" yaml:"sslmode"`
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`
}

// StateConfig selects where watermarks are persisted
type StateConfig struct {
	Backend     string `json:"backend" yaml:"backend"` // table, file or redis
	File        string `json:"file" yaml:"file"`
	RedisURL    string `json:"redis_url" yaml:"redis_url"`
	RedisPrefix string `json:"redis_prefix" yaml:"redis_prefix"`
}

// KafkaConfig holds Kafka configuration. Publishing is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `json:"port" yaml:"port"`
	Host string `json:"host" yaml:"host"`
}

// ScheduleConfig holds the cron expression for periodic syncs
type ScheduleConfig struct {
	Cron string `json:"cron" yaml:"cron"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // json or console
}

// Load reads configuration from a JSON or YAML file, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if len(data) > 0 {
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.Symbols = normalizeSymbols(cfg.Symbols)

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	overrideString(&c.APIKey, "FMP_API_KEY")
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = splitCSV(v)
	}
	overrideString(&c.BaseURL, "FMP_BASE_URL")
	overrideString(&c.StartDate, "START_DATE")
	overrideString(&c.UserAgent, "FMP_USER_AGENT")
	overrideString(&c.Proxy, "FMP_PROXY")
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestTimeoutSec = n
		}
	}

	if v := os.Getenv("FMP_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestsPerMinute = n
		}
	}

	overrideString(&c.Database.Driver, "DB_DRIVER")
	overrideString(&c.Database.Host, "DB_HOST")
	overrideString(&c.Database.Port, "DB_PORT")
	overrideString(&c.Database.User, "DB_USER")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Database.DBName, "DB_NAME")
	overrideString(&c.Database.SSLMode, "DB_SSLMODE")
	overrideString(&c.Database.SQLitePath, "SQLITE_PATH")

	overrideString(&c.State.Backend, "STATE_BACKEND")
	overrideString(&c.State.File, "STATE_FILE")
	overrideString(&c.State.RedisURL, "REDIS_URL")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitCSV(v)
	}
	overrideString(&c.Kafka.Topic, "KAFKA_TOPIC")

	overrideString(&c.Server.Host, "SERVER_HOST")
	overrideString(&c.Server.Port, "SERVER_PORT")
	overrideString(&c.Schedule.Cron, "SYNC_CRON")
	overrideString(&c.Log.Level, "LOG_LEVEL")
	overrideString(&c.Log.Format, "LOG_FORMAT")
}

func (c *Config) applyDefaults() {
	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), DefaultSymbols...)
	}
	setDefault(&c.BaseURL, "https://financialmodelingprep.com")
	if c.RequestTimeoutSec == 0 {
		c.RequestTimeoutSec = 30
	}

	setDefault(&c.Database.Driver, "postgres")
	setDefault(&c.Database.Host, "localhost")
	setDefault(&c.Database.Port, "5432")
	setDefault(&c.Database.User, "postgres")
	setDefault(&c.Database.Password, "postgres")
	setDefault(&c.Database.DBName, "warehouse")
	setDefault(&c.Database.SSLMode, "disable")
	setDefault(&c.Database.SQLitePath, "files/warehouse.db")

	setDefault(&c.State.Backend, "table")
	setDefault(&c.State.File, "files/state.json")
	setDefault(&c.State.RedisPrefix, "eod")

	setDefault(&c.Kafka.Topic, "eod-sync-events")
	setDefault(&c.Server.Host, "0.0.0.0")
	setDefault(&c.Server.Port, "8080")
	setDefault(&c.Log.Level, "info")
	setDefault(&c.Log.Format, "json")
}

// Validate checks that all required fields are set
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("apikey is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if c.StartDate != "" {
		if _, err := models.ParseDate(c.StartDate); err != nil {
			return fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
		}
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.State.Backend {
	case "table", "file":
	case "redis":
		if c.State.RedisURL == "" {
			return fmt.Errorf("state.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported state backend: %s", c.State.Backend)
	}
	return nil
}

// RequestTimeout returns the upstream request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// normalizeSymbols upper-cases symbols and removes blanks and duplicates, keeping order
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func overrideString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setDefault(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
