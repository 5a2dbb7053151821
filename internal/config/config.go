package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/LeJamon/goXCM/internal/xcm"
)

// Config represents the complete xcmd configuration
type Config struct {
	// Chain, currency and location tables
	Registry RegistryConfig `toml:"registry" mapstructure:"registry"`

	// XCM encoding
	XCM XCMConfig `toml:"xcm" mapstructure:"xcm"`

	// Fee convergence
	Fees FeesConfig `toml:"fees" mapstructure:"fees"`

	// Node connections
	Transport TransportConfig `toml:"transport" mapstructure:"transport"`

	// Transfer call selection
	Transfer TransferConfig `toml:"transfer" mapstructure:"transfer"`

	// Persistent metadata store
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`

	// Internal fields for configuration management
	configPath   string `toml:"-" mapstructure:"-"`
	registryPath string `toml:"-" mapstructure:"-"`
}

// RegistryConfig points at the registry file
type RegistryConfig struct {
	File string `toml:"file" mapstructure:"file"`
}

// XCMConfig holds XCM encoding settings
type XCMConfig struct {
	// DefaultVersion is used for chains that do not pin a version
	DefaultVersion string `toml:"default_version" mapstructure:"default_version"`
}

// FeesConfig holds fee convergence settings
type FeesConfig struct {
	MaxIterations int  `toml:"max_iterations" mapstructure:"max_iterations"`
	FinalDryRun   bool `toml:"final_dry_run" mapstructure:"final_dry_run"`
}

// TransportConfig holds node connection settings
type TransportConfig struct {
	RequestTimeout    time.Duration `toml:"request_timeout" mapstructure:"request_timeout"`
	MetadataCacheSize int           `toml:"metadata_cache_size" mapstructure:"metadata_cache_size"`
}

// TransferConfig lists the pallets checked for transfer calls, in order
type TransferConfig struct {
	PrimaryPallets []string `toml:"primary_pallets" mapstructure:"primary_pallets"`
	TokenPallets   []string `toml:"token_pallets" mapstructure:"token_pallets"`
}

// StorageConfig enables the on-disk metadata store. An empty MetadataDir
// keeps metadata in memory only.
type StorageConfig struct {
	MetadataDir string `toml:"metadata_dir" mapstructure:"metadata_dir"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// ConfigPaths holds the paths to configuration files
type ConfigPaths struct {
	Main     string // Path to main config file (xcmd.toml)
	Registry string // Path to registry file, overrides registry.file
}

// DefaultConfigPaths returns the default configuration file paths
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{
		Main: "xcmd.toml",
	}
}

// ConfigPathsFromDir returns configuration paths for a specific directory
func ConfigPathsFromDir(configDir string) ConfigPaths {
	return ConfigPaths{
		Main:     filepath.Join(configDir, "xcmd.toml"),
		Registry: filepath.Join(configDir, "registry.toml"),
	}
}

// GetConfigPath returns the path to the main configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetRegistryPath returns the resolved path of the registry file
func (c *Config) GetRegistryPath() string {
	return c.registryPath
}

// GetDefaultVersion returns the parsed default XCM version
func (c *Config) GetDefaultVersion() (xcm.Version, error) {
	v, err := xcm.ParseVersion(c.XCM.DefaultVersion)
	if err != nil {
		return 0, fmt.Errorf("xcm.default_version: %w", err)
	}
	return v, nil
}
