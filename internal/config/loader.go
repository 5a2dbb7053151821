package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (xcmd.toml), when it exists
// 3. Environment variables (XCMD_ prefix)
func LoadConfig(paths ConfigPaths) (*Config, error) {
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)

	// 2. Load main configuration file
	if err := loadMainConfig(v, paths.Main); err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	// 3. Set up environment variable support
	v.SetEnvPrefix("XCMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal main config into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Resolve the registry path relative to the main config
	config.configPath = paths.Main
	config.registryPath = resolveRegistryPath(paths, config.Registry.File)

	// 6. Validate the complete configuration
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadMainConfig loads the main configuration file. A missing file at the
// default location leaves the defaults in place.
func loadMainConfig(v *viper.Viper, configPath string) error {
	if configPath == "" {
		return fmt.Errorf("config path cannot be empty")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if configPath == DefaultConfigPaths().Main {
			return nil
		}
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return nil
}

func resolveRegistryPath(paths ConfigPaths, registryFile string) string {
	if paths.Registry != "" {
		return paths.Registry
	}
	if filepath.IsAbs(registryFile) {
		return registryFile
	}
	// Relative registry files live next to the main config
	return filepath.Join(filepath.Dir(paths.Main), registryFile)
}

// LoadConfigFromDir loads configuration from a directory containing both files
func LoadConfigFromDir(configDir string) (*Config, error) {
	return LoadConfig(ConfigPathsFromDir(configDir))
}

// LoadDefaultConfig loads configuration from default locations
func LoadDefaultConfig() (*Config, error) {
	return LoadConfig(DefaultConfigPaths())
}

// LoadRegistry reads a registry file (toml, yaml or json) and builds the
// registry it describes.
func LoadRegistry(path string) (*registry.Registry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("registry file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}

	var file registry.File
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry file: %w", err)
	}

	reg, err := registry.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("invalid registry file %s: %w", path, err)
	}
	return reg, nil
}

// SaveExampleConfig saves an example configuration file
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}
