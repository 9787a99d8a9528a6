package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable pointing at the YAML config file.
const EnvConfigFile = "RADARWATCH_CONFIG"

// FileManager handles loading settings from an optional YAML file.
// Priority: file > environment variables > defaults.
type FileManager struct {
	logger *zap.Logger
	path   string
}

// NewFileManager creates a new FileManager for the given path.
// An empty path disables file loading.
func NewFileManager(logger *zap.Logger, path string) *FileManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileManager{
		logger: logger,
		path:   path,
	}
}

// IsEnabled returns true if a config file path is configured.
func (fm *FileManager) IsEnabled() bool {
	return fm != nil && fm.path != ""
}

// Path returns the configured file path.
func (fm *FileManager) Path() string {
	if fm == nil {
		return ""
	}
	return fm.path
}

// LoadSettings merges the YAML file on top of envConfig (itself merged over
// defaults by Load). A missing or unreadable file is not fatal; the env-merged
// config is returned so startup can proceed.
func (fm *FileManager) LoadSettings(envConfig *Config) (*Config, error) {
	base := envConfig
	if base == nil {
		base = Defaults()
	}
	base = base.Clone()

	if !fm.IsEnabled() {
		return base, nil
	}

	merged, err := fm.mergeFile(base)
	if err != nil {
		fm.logger.Warn("failed to load config file, using env/defaults",
			zap.String("path", fm.path),
			zap.Error(err),
		)
		return base, nil
	}

	fm.logger.Info("loaded config file", zap.String("path", fm.path))
	return merged, nil
}

// Reload re-reads the file and applies the result to live. Used for SIGHUP
// driven hot-reload; unlike LoadSettings, read errors are reported so the
// operator sees why the reload did not take.
func (fm *FileManager) Reload(envConfig *Config, live *LiveConfig) error {
	if !fm.IsEnabled() {
		return fmt.Errorf("no config file configured")
	}

	base := envConfig
	if base == nil {
		base = Defaults()
	}

	merged, err := fm.mergeFile(base.Clone())
	if err != nil {
		return fmt.Errorf("reload config file: %w", err)
	}

	if err := live.Update(merged); err != nil {
		return fmt.Errorf("apply reloaded config: %w", err)
	}

	fm.logger.Info("config reloaded", zap.String("path", fm.path))
	return nil
}

// mergeFile unmarshals the YAML file into a clone of base, so only keys
// present in the file override it.
func (fm *FileManager) mergeFile(base *Config) (*Config, error) {
	data, err := os.ReadFile(fm.path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}
