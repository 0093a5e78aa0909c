// Package config provides configuration management for the markup translator.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"markup-translator/internal/logger"
	"markup-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "markup-translator-config.json"
	// EnvEngineEndpoint is the environment variable name for the engine endpoint
	EnvEngineEndpoint = "MT_ENGINE_ENDPOINT"
	// EnvEngineAPIKey is the environment variable name for the engine API key
	EnvEngineAPIKey = "MT_ENGINE_API_KEY"
	// DefaultStrategy is the default markup reinsertion strategy
	DefaultStrategy = string(types.StrategyImproved)
	// DefaultMaxGapSize is the default maximum unaligned gap bridged by
	// neighbor tag interpolation in the complete-mapping strategy
	DefaultMaxGapSize = 1
	// DefaultScoreThreshold is the default minimum score for a soft
	// alignment link to be considered
	DefaultScoreThreshold = 0.4
	// DefaultLeadingTokens is the default number of synthetic tokens the
	// engine prepends to the source, e.g. a target language marker
	DefaultLeadingTokens = 0
	// DefaultConcurrency is the default sentence-level concurrency
	DefaultConcurrency = 3
)

// ConfigManager manages application configuration
type ConfigManager struct {
	configPath string
	config     *types.Config
}

// NewConfigManager creates a new ConfigManager with the specified config path.
// If configPath is empty, it uses the default path in user's home directory.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "markup-translator", DefaultConfigFileName)
	}

	logger.Info("ConfigManager initialized", logger.String("configPath", configPath))
	return &ConfigManager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		Strategy:       DefaultStrategy,
		MaxGapSize:     DefaultMaxGapSize,
		ScoreThreshold: DefaultScoreThreshold,
		LeadingTokens:  DefaultLeadingTokens,
		Concurrency:    DefaultConcurrency,
		LogLevel:       "info",
	}
}

// Load loads configuration from the config file.
// If the file doesn't exist, it uses default values.
func (m *ConfigManager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded successfully",
				logger.String("path", m.configPath),
				logger.String("strategy", config.Strategy),
				logger.Int("maxGapSize", config.MaxGapSize))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.Strategy == "" {
		m.config.Strategy = DefaultStrategy
	}
	if m.config.MaxGapSize <= 0 {
		m.config.MaxGapSize = DefaultMaxGapSize
	}
	if m.config.ScoreThreshold <= 0 {
		m.config.ScoreThreshold = DefaultScoreThreshold
	}
	if m.config.Concurrency <= 0 {
		m.config.Concurrency = DefaultConcurrency
	}
	if m.config.LogLevel == "" {
		m.config.LogLevel = "info"
	}

	// Engine connection falls back to the environment when the file does
	// not set it
	if m.config.EngineEndpoint == "" {
		m.config.EngineEndpoint = os.Getenv(EnvEngineEndpoint)
	}
	if m.config.EngineAPIKey == "" {
		m.config.EngineAPIKey = os.Getenv(EnvEngineAPIKey)
	}

	// The strategy string must be valid even when it came from a file
	if _, err := types.ParseStrategy(m.config.Strategy); err != nil {
		logger.Warn("unknown strategy in config, using default",
			logger.String("strategy", m.config.Strategy))
		m.config.Strategy = DefaultStrategy
	}

	return nil
}

// Save saves the current configuration to the config file.
func (m *ConfigManager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *ConfigManager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}

// GetStrategy returns the configured reinsertion strategy.
func (m *ConfigManager) GetStrategy() types.Strategy {
	if m.config != nil {
		if s, err := types.ParseStrategy(m.config.Strategy); err == nil {
			return s
		}
	}
	return types.Strategy(DefaultStrategy)
}

// GetMaxGapSize returns the maximum unaligned gap for neighbor interpolation.
func (m *ConfigManager) GetMaxGapSize() int {
	if m.config != nil && m.config.MaxGapSize > 0 {
		return m.config.MaxGapSize
	}
	return DefaultMaxGapSize
}

// GetConcurrency returns the sentence-level concurrency.
func (m *ConfigManager) GetConcurrency() int {
	if m.config != nil && m.config.Concurrency > 0 {
		return m.config.Concurrency
	}
	return DefaultConcurrency
}

// GetWorkDirectory returns the work directory.
func (m *ConfigManager) GetWorkDirectory() string {
	if m.config != nil {
		return m.config.WorkDirectory
	}
	return ""
}
