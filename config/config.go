package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete ledger service configuration
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// ServerConfig contains HTTP listener parameters
type ServerConfig struct {
	Addr         string `json:"addr" yaml:"addr"`
	ReadTimeout  string `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"`   // e.g. "5s"
	WriteTimeout string `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"` // e.g. "10s"
}

// Timeouts parses the read and write timeouts. Empty values mean no timeout.
func (s ServerConfig) Timeouts() (read, write time.Duration, err error) {
	if s.ReadTimeout != "" {
		if read, err = time.ParseDuration(s.ReadTimeout); err != nil {
			return 0, 0, fmt.Errorf("server.read_timeout: %w", err)
		}
	}
	if s.WriteTimeout != "" {
		if write, err = time.ParseDuration(s.WriteTimeout); err != nil {
			return 0, 0, fmt.Errorf("server.write_timeout: %w", err)
		}
	}
	return read, write, nil
}

// EngineConfig contains ledger engine parameters
type EngineConfig struct {
	Workers           int  `json:"workers" yaml:"workers"`
	DeadlockDetection bool `json:"deadlock_detection" yaml:"deadlock_detection"`
}

// JournalConfig contains audit journal parameters
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	BalancesFile     string `json:"balances_file,omitempty" yaml:"balances_file,omitempty"`
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig contains logger parameters
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json or console
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
// and applies environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads a .env file from the working directory when one exists and
// applies LEDGER_* overrides. Variables already set in the environment win
// over the .env file.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v := os.Getenv("LEDGER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LEDGER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEDGER_WORKERS: %w", err)
		}
		c.Engine.Workers = n
	}
	if v := os.Getenv("LEDGER_JOURNAL_TYPE"); v != "" {
		c.Journal.Type = v
	}
	if v := os.Getenv("LEDGER_JOURNAL_DB"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("LEDGER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, _, err := c.Server.Timeouts(); err != nil {
		return err
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive")
	}
	switch c.Journal.Type {
	case "none", "":
	case "csv":
		if c.Journal.TransactionsFile == "" || c.Journal.BalancesFile == "" {
			return fmt.Errorf("journal transactions_file and balances_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  "5s",
			WriteTimeout: "10s",
		},
		Engine: EngineConfig{
			Workers: 64,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
