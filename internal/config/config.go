package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yiblet/replkit/internal/history"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSession     = "r"
	DefaultEndpoint    = "ws://127.0.0.1:8765/comm"
	DefaultCallTimeout = 10 * time.Second
)

// Config represents the replkit configuration
type Config struct {
	HistoryLimit    int           `yaml:"history_limit"`
	HistoryLocation string        `yaml:"history_location,omitempty"`
	Session         string        `yaml:"session"`
	Endpoint        string        `yaml:"endpoint"`
	CallTimeout     time.Duration `yaml:"call_timeout"`
	Catalog         string        `yaml:"catalog,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit: history.DefaultCapacity,
		Session:      DefaultSession,
		Endpoint:     DefaultEndpoint,
		CallTimeout:  DefaultCallTimeout,
	}
}

// Keys lists the configuration keys accepted by Get and Update, in display order.
var Keys = []string{"history-limit", "history-location", "session", "endpoint", "call-timeout", "catalog"}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "replkit")
	configPath := filepath.Join(configDir, "config.yaml")

	return &ConfigManager{
		configPath: configPath,
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration from file, or returns default if file doesn't exist
func (cm *ConfigManager) Load() (*Config, error) {
	// If config file doesn't exist, return default config
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate and set defaults for missing fields
	if err := cm.validateAndSetDefaults(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	// Validate configuration before saving
	if err := cm.validateAndSetDefaults(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
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

// validateAndSetDefaults validates configuration and sets defaults for missing fields
func (cm *ConfigManager) validateAndSetDefaults(config *Config) error {
	if config.HistoryLimit == 0 {
		config.HistoryLimit = history.DefaultCapacity
	}
	if config.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must be greater than 0")
	}
	if config.HistoryLimit > history.MaxCapacity {
		return fmt.Errorf("history_limit cannot exceed %d items", history.MaxCapacity)
	}

	if config.Session == "" {
		config.Session = DefaultSession
	}

	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	u, err := url.Parse(config.Endpoint)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("endpoint must be a ws:// or wss:// URL")
	}

	if config.CallTimeout == 0 {
		config.CallTimeout = DefaultCallTimeout
	}
	if config.CallTimeout < 0 {
		return fmt.Errorf("call_timeout must be greater than 0")
	}

	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Load()
	if err != nil {
		return err
	}

	switch key {
	case "history-limit":
		historyLimit, err := strconv.Atoi(value)
		if err != nil || historyLimit <= 0 {
			return fmt.Errorf("invalid positive integer value for history-limit: %s", value)
		}
		config.HistoryLimit = historyLimit
	case "history-location":
		config.HistoryLocation = value
	case "session":
		if value == "" {
			return fmt.Errorf("session must not be empty")
		}
		config.Session = value
	case "endpoint":
		config.Endpoint = value
	case "call-timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid duration value for call-timeout: %s (e.g. 5s)", value)
		}
		config.CallTimeout = d
	case "catalog":
		config.Catalog = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	config, err := cm.Load()
	if err != nil {
		return "", err
	}

	value, ok := config.values()[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}
	return config.values(), nil
}

func (c *Config) values() map[string]string {
	result := map[string]string{
		"history-limit":    strconv.Itoa(c.HistoryLimit),
		"history-location": c.HistoryLocation,
		"session":          c.Session,
		"endpoint":         c.Endpoint,
		"call-timeout":     c.CallTimeout.String(),
		"catalog":          c.Catalog,
	}

	if result["history-location"] == "" {
		result["history-location"] = "[default]"
	}
	if result["catalog"] == "" {
		result["catalog"] = "[none]"
	}

	return result
}
