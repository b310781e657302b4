package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config represents the roster configuration. Every field can be
// overridden from the environment.
type Config struct {
	DataFile string  `yaml:"data_file" env:"ROSTER_DATA_FILE"`
	Schema   string  `yaml:"schema" env:"ROSTER_SCHEMA"`
	Store    Store   `yaml:"store"`
	Stats    Stats   `yaml:"stats"`
	Archive  Archive `yaml:"archive"`
	Metrics  Metrics `yaml:"metrics"`
	Logging  Logging `yaml:"logging"`
}

// Store contains record store sizing
type Store struct {
	InitialCapacity int `yaml:"initial_capacity" env:"ROSTER_STORE_INITIAL_CAPACITY"`
	MaxRecords      int `yaml:"max_records" env:"ROSTER_STORE_MAX_RECORDS"`
}

// Stats contains thresholds for the report commands
type Stats struct {
	PassMark            float64 `yaml:"pass_mark" env:"ROSTER_PASS_MARK"`
	AttendanceThreshold uint32  `yaml:"attendance_threshold" env:"ROSTER_ATTENDANCE_THRESHOLD"`
}

// Archive contains snapshot archive settings
type Archive struct {
	Dir string `yaml:"dir" env:"ROSTER_ARCHIVE_DIR"`
}

// Metrics contains metrics export settings. An empty path disables export.
type Metrics struct {
	TextfilePath string `yaml:"textfile_path" env:"ROSTER_METRICS_TEXTFILE"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level" env:"ROSTER_LOG_LEVEL"`
	Format string `yaml:"format" env:"ROSTER_LOG_FORMAT"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataFile: "students.txt",
		Schema:   "base",
		Store: Store{
			InitialCapacity: 10,
		},
		Stats: Stats{
			PassMark:            60,
			AttendanceThreshold: 20,
		},
		Archive: Archive{
			Dir: "./archive",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from the specified path on top of the
// defaults, then applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	config := DefaultConfig()
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadFromEnv returns the defaults with environment overrides applied
func LoadFromEnv() (*Config, error) {
	config := DefaultConfig()
	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration pointing at dataFile
func BootstrapConfig(configPath string, dataFile string) (*Config, error) {
	config := DefaultConfig()
	if dataFile != "" {
		config.DataFile = dataFile
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// Validate checks values that cannot be expressed in the YAML schema
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file cannot be empty")
	}
	switch strings.ToLower(c.Schema) {
	case "base", "extended":
	default:
		return fmt.Errorf("unknown schema %q: want base or extended", c.Schema)
	}
	if c.Store.InitialCapacity < 0 || c.Store.MaxRecords < 0 {
		return fmt.Errorf("store sizes cannot be negative")
	}
	if c.Stats.PassMark < 0 {
		return fmt.Errorf("pass_mark cannot be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./roster.yaml"
	}

	// For Linux/macOS, use ~/.config/roster/config.yaml
	return filepath.Join(homeDir, ".config", "roster", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
