// Package registry holds the read-only tables of known chains, currencies
// and named locations.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/LeJamon/goXCM/internal/xcm"
)

var (
	ErrUnknownChain      = errors.New("unknown chain")
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrDuplicateChain    = errors.New("duplicate chain")
	ErrDuplicateCurrency = errors.New("duplicate currency")
	ErrDuplicateName     = errors.New("duplicate location name")
)

// CurrencyInfo describes a fungible currency.
type CurrencyInfo struct {
	Symbol            string
	Decimals          uint8
	UniversalLocation xcm.Interior
}

// ChainInfo describes a consensus system the transfer can start from.
type ChainInfo struct {
	ID                string
	Name              string
	UniversalLocation xcm.Interior
	Endpoints         []string
	// XcmVersion pins the version used on this chain; zero means query the chain.
	XcmVersion xcm.Version
	// TransferPallet overrides the primary pallet name when set.
	TransferPallet    string
	relativeLocations map[string]xcm.Location
}

// NewChainInfo builds a ChainInfo with its chain-relative named locations.
func NewChainInfo(id, name string, universal xcm.Interior, endpoints []string, relative map[string]xcm.Location) (*ChainInfo, error) {
	universal, err := xcm.SanitizeInterior(universal)
	if err != nil {
		return nil, fmt.Errorf("chain %s: %w", id, err)
	}
	c := &ChainInfo{
		ID:                id,
		Name:              name,
		UniversalLocation: universal,
		Endpoints:         append([]string(nil), endpoints...),
		relativeLocations: make(map[string]xcm.Location, len(relative)),
	}
	for key, loc := range relative {
		loc, err := xcm.SanitizeLocation(loc)
		if err != nil {
			return nil, fmt.Errorf("chain %s location %q: %w", id, key, err)
		}
		norm := normalize(key)
		if _, ok := c.relativeLocations[norm]; ok {
			return nil, fmt.Errorf("%w: chain %s %q", ErrDuplicateName, id, key)
		}
		c.relativeLocations[norm] = loc
	}
	return c, nil
}

// RelativeLocation returns a location this chain knows by name.
func (c *ChainInfo) RelativeLocation(name string) (xcm.Location, bool) {
	loc, ok := c.relativeLocations[normalize(name)]
	return loc, ok
}

// RelativeLocationNames lists the chain's named locations, sorted.
func (c *ChainInfo) RelativeLocationNames() []string {
	names := make([]string, 0, len(c.relativeLocations))
	for name := range c.relativeLocations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *ChainInfo) String() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Registry indexes chains, currencies and universal named locations. It is
// never modified after New and is safe for concurrent reads.
type Registry struct {
	chains               map[string]*ChainInfo
	chainsByLocation     map[string]*ChainInfo
	chainsByName         map[string]*ChainInfo
	currencies           map[string]*CurrencyInfo
	currenciesByLocation map[string]*CurrencyInfo
	named                map[string]xcm.Interior
}

// New indexes the given tables. Keys are matched case-insensitively.
func New(chains []*ChainInfo, currencies []CurrencyInfo, named map[string]xcm.Interior) (*Registry, error) {
	r := &Registry{
		chains:               make(map[string]*ChainInfo, len(chains)),
		chainsByLocation:     make(map[string]*ChainInfo, len(chains)),
		chainsByName:         make(map[string]*ChainInfo, len(chains)),
		currencies:           make(map[string]*CurrencyInfo, len(currencies)),
		currenciesByLocation: make(map[string]*CurrencyInfo, len(currencies)),
		named:                make(map[string]xcm.Interior, len(named)),
	}

	for _, c := range chains {
		id := normalize(c.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: empty chain id", ErrUnknownChain)
		}
		if _, ok := r.chains[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateChain, c.ID)
		}
		r.chains[id] = c
		if key := c.UniversalLocation.String(); r.chainsByLocation[key] == nil {
			r.chainsByLocation[key] = c
		}
		if name := normalize(c.Name); name != "" && r.chainsByName[name] == nil {
			r.chainsByName[name] = c
		}
	}

	for i := range currencies {
		cur := currencies[i]
		universal, err := xcm.SanitizeInterior(cur.UniversalLocation)
		if err != nil {
			return nil, fmt.Errorf("currency %s: %w", cur.Symbol, err)
		}
		cur.UniversalLocation = universal
		sym := normalize(cur.Symbol)
		if _, ok := r.currencies[sym]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCurrency, cur.Symbol)
		}
		r.currencies[sym] = &cur
		r.currenciesByLocation[universal.String()] = &cur
	}

	for name, interior := range named {
		interior, err := xcm.SanitizeInterior(interior)
		if err != nil {
			return nil, fmt.Errorf("location %q: %w", name, err)
		}
		key := normalize(name)
		if _, ok := r.named[key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		r.named[key] = interior
	}
	return r, nil
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ChainInfoByID looks a chain up by its id.
func (r *Registry) ChainInfoByID(id string) (*ChainInfo, error) {
	if c, ok := r.chains[normalize(id)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownChain, id)
}

// ChainInfoByUniversalLocation finds the chain living at a universal location.
func (r *Registry) ChainInfoByUniversalLocation(loc xcm.Interior) (*ChainInfo, error) {
	if c, ok := r.chainsByLocation[loc.String()]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: at %s", ErrUnknownChain, loc)
}

// CurrencyInfoBySymbol looks a currency up by symbol.
func (r *Registry) CurrencyInfoBySymbol(symbol string) (*CurrencyInfo, error) {
	if c, ok := r.currencies[normalize(symbol)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, symbol)
}

// CurrencyInfoByUniversalLocation finds the currency identified by loc.
func (r *Registry) CurrencyInfoByUniversalLocation(loc xcm.Interior) (*CurrencyInfo, error) {
	if c, ok := r.currenciesByLocation[loc.String()]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: at %s", ErrUnknownCurrency, loc)
}

// UniversalLocation resolves a name to a universal location. Explicit named
// locations win over chain ids and names.
func (r *Registry) UniversalLocation(name string) (xcm.Interior, bool) {
	key := normalize(name)
	if loc, ok := r.named[key]; ok {
		return loc, true
	}
	if c, ok := r.chains[key]; ok {
		return c.UniversalLocation, true
	}
	if c, ok := r.chainsByName[key]; ok {
		return c.UniversalLocation, true
	}
	return nil, false
}

// Chains returns every chain ordered by id.
func (r *Registry) Chains() []*ChainInfo {
	out := make([]*ChainInfo, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
