package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("registry.file", "registry.toml")

	v.SetDefault("xcm.default_version", "V4")

	v.SetDefault("fees.max_iterations", 16)
	v.SetDefault("fees.final_dry_run", true)

	v.SetDefault("transport.request_timeout", 30*time.Second)
	v.SetDefault("transport.metadata_cache_size", 32)

	v.SetDefault("transfer.primary_pallets", []string{"PolkadotXcm", "XcmPallet"})
	v.SetDefault("transfer.token_pallets", []string{"XTokens", "xTokens", "Xtokens"})

	v.SetDefault("storage.metadata_dir", "")
	v.SetDefault("storage.compression", "lz4")
}
