package config

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goXCM/internal/storage/metastore"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if strings.TrimSpace(config.Registry.File) == "" && config.registryPath == "" {
		return fmt.Errorf("registry.file must be set")
	}

	if _, err := config.GetDefaultVersion(); err != nil {
		return err
	}

	if err := config.Fees.Validate(); err != nil {
		return fmt.Errorf("fees validation failed: %w", err)
	}

	if err := config.Transport.Validate(); err != nil {
		return fmt.Errorf("transport validation failed: %w", err)
	}

	if err := config.Transfer.Validate(); err != nil {
		return fmt.Errorf("transfer validation failed: %w", err)
	}

	if _, err := metastore.GetCompressor(config.Storage.Compression); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}

	return nil
}

// Validate checks the fee convergence settings
func (f *FeesConfig) Validate() error {
	if f.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", f.MaxIterations)
	}
	return nil
}

// Validate checks the node connection settings
func (t *TransportConfig) Validate() error {
	if t.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout cannot be negative")
	}
	if t.MetadataCacheSize < 1 {
		return fmt.Errorf("metadata_cache_size must be at least 1, got %d", t.MetadataCacheSize)
	}
	return nil
}

// Validate checks the pallet lists
func (t *TransferConfig) Validate() error {
	if len(t.PrimaryPallets) == 0 && len(t.TokenPallets) == 0 {
		return fmt.Errorf("at least one of primary_pallets and token_pallets must be set")
	}
	for _, name := range append(append([]string(nil), t.PrimaryPallets...), t.TokenPallets...) {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("empty pallet name")
		}
	}
	return nil
}
