package registry

import (
	"fmt"

	"github.com/LeJamon/goXCM/internal/xcm"
)

// File is the on-disk shape of a registry, with every location in text form.
type File struct {
	Chains     []ChainEntry      `mapstructure:"chains"`
	Currencies []CurrencyEntry   `mapstructure:"currencies"`
	Locations  map[string]string `mapstructure:"locations"`
}

type ChainEntry struct {
	ID                string            `mapstructure:"id"`
	Name              string            `mapstructure:"name"`
	UniversalLocation string            `mapstructure:"universal_location"`
	Endpoints         []string          `mapstructure:"endpoints"`
	XcmVersion        string            `mapstructure:"xcm_version"`
	TransferPallet    string            `mapstructure:"transfer_pallet"`
	Locations         map[string]string `mapstructure:"locations"`
}

type CurrencyEntry struct {
	Symbol            string `mapstructure:"symbol"`
	Decimals          uint8  `mapstructure:"decimals"`
	UniversalLocation string `mapstructure:"universal_location"`
}

// FromFile parses the text locations of f and builds a Registry.
func FromFile(f File) (*Registry, error) {
	chains := make([]*ChainInfo, 0, len(f.Chains))
	for _, entry := range f.Chains {
		universal, err := xcm.ParseInterior(entry.UniversalLocation)
		if err != nil {
			return nil, fmt.Errorf("chain %s universal_location: %w", entry.ID, err)
		}
		relative := make(map[string]xcm.Location, len(entry.Locations))
		for name, text := range entry.Locations {
			loc, err := xcm.ParseLocation(text)
			if err != nil {
				return nil, fmt.Errorf("chain %s location %q: %w", entry.ID, name, err)
			}
			relative[name] = loc
		}
		chain, err := NewChainInfo(entry.ID, entry.Name, universal, entry.Endpoints, relative)
		if err != nil {
			return nil, err
		}
		if entry.XcmVersion != "" {
			if chain.XcmVersion, err = xcm.ParseVersion(entry.XcmVersion); err != nil {
				return nil, fmt.Errorf("chain %s xcm_version: %w", entry.ID, err)
			}
		}
		chain.TransferPallet = entry.TransferPallet
		chains = append(chains, chain)
	}

	currencies := make([]CurrencyInfo, 0, len(f.Currencies))
	for _, entry := range f.Currencies {
		universal, err := xcm.ParseInterior(entry.UniversalLocation)
		if err != nil {
			return nil, fmt.Errorf("currency %s universal_location: %w", entry.Symbol, err)
		}
		currencies = append(currencies, CurrencyInfo{
			Symbol:            entry.Symbol,
			Decimals:          entry.Decimals,
			UniversalLocation: universal,
		})
	}

	named := make(map[string]xcm.Interior, len(f.Locations))
	for name, text := range f.Locations {
		interior, err := xcm.ParseInterior(text)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", name, err)
		}
		named[name] = interior
	}
	return New(chains, currencies, named)
}
