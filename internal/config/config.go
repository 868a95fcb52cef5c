package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/yiblet/freewrite/internal/appfs"
	"github.com/yiblet/freewrite/internal/logging"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimerMinutes is the length of a writing session
	DefaultTimerMinutes = 15
	// MaxTimerMinutes bounds the configurable session length
	MaxTimerMinutes = 180
)

// Keys lists the configuration keys accepted by Get and Update
var Keys = []string{"data_dir", "log_level", "timer_minutes"}

// Config represents the freewrite configuration
type Config struct {
	TimerMinutes int    `yaml:"timer_minutes" env:"FREEWRITE_TIMER_MINUTES"`
	DataDir      string `yaml:"data_dir,omitempty" env:"FREEWRITE_DATA_DIR"`
	LogLevel     string `yaml:"log_level" env:"FREEWRITE_LOG_LEVEL"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TimerMinutes: DefaultTimerMinutes,
		LogLevel:     logging.DefaultLevel,
	}
}

// TimerDuration returns the session length as a duration
func (c *Config) TimerDuration() time.Duration {
	return time.Duration(c.TimerMinutes) * time.Minute
}

// Validate checks every field and fills in defaults for missing ones
func (c *Config) Validate() error {
	if c.TimerMinutes == 0 {
		c.TimerMinutes = DefaultTimerMinutes
	}
	if c.TimerMinutes < 1 || c.TimerMinutes > MaxTimerMinutes {
		return fmt.Errorf("timer_minutes must be between 1 and %d", MaxTimerMinutes)
	}

	if c.LogLevel == "" {
		c.LogLevel = logging.DefaultLevel
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
	environ    map[string]string
}

// NewConfigManager creates a manager for ~/.config/freewrite/config.yaml
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	return NewConfigManagerWithPath(filepath.Join(homeDir, appfs.ConfigDir, "config.yaml")), nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// WithEnvironment replaces the process environment used by Effective
func (cm *ConfigManager) WithEnvironment(environ map[string]string) *ConfigManager {
	cm.environ = environ
	return cm
}

// Load reads the configuration file, or returns the defaults if it doesn't exist.
// Environment overrides are not applied.
func (cm *ConfigManager) Load() (*Config, error) {
	data, err := os.ReadFile(cm.configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Effective loads the file configuration and applies FREEWRITE_* environment overrides
func (cm *ConfigManager) Effective() (*Config, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}

	opts := env.Options{}
	if cm.environ != nil {
		opts.Environment = cm.environ
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cm.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value in the file
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "timer_minutes":
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for timer_minutes: %s", value)
		}
		if minutes == 0 {
			return fmt.Errorf("timer_minutes must be between 1 and %d", MaxTimerMinutes)
		}
		config.TimerMinutes = minutes
	case "data_dir":
		config.DataDir = value
	case "log_level":
		config.LogLevel = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the effective value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	values, err := cm.List()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all effective configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Effective()
	if err != nil {
		return nil, err
	}

	result := map[string]string{
		"timer_minutes": strconv.Itoa(config.TimerMinutes),
		"data_dir":      config.DataDir,
		"log_level":     config.LogLevel,
	}

	if result["data_dir"] == "" {
		result["data_dir"] = "[default]"
	}

	return result, nil
}

// SortedKeys returns the keys of values in a stable order
func SortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
