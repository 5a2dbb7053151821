// Package resolver turns location lookups into concrete locations as seen
// from one chain.
package resolver

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/LeJamon/goXCM/internal/xcm"
)

var (
	ErrUnknownNamedLocation = errors.New("unknown named location")
	ErrAscendsAboveRoot     = errors.New("location ascends above the universal root")
)

// Resolver resolves lookups in the context of a single chain.
type Resolver struct {
	reg   *registry.Registry
	chain *registry.ChainInfo
}

// New returns a resolver for chain.
func New(reg *registry.Registry, chain *registry.ChainInfo) *Resolver {
	return &Resolver{reg: reg, chain: chain}
}

// Chain returns the chain the resolver works for.
func (r *Resolver) Chain() *registry.ChainInfo { return r.chain }

// Registry returns the backing registry.
func (r *Resolver) Registry() *registry.Registry { return r.reg }

// ForChain returns a resolver for another chain sharing the same registry.
func (r *Resolver) ForChain(chain *registry.ChainInfo) *Resolver {
	return New(r.reg, chain)
}

// ResolveRelativeLocation resolves lookup to a location relative to the
// chain.
func (r *Resolver) ResolveRelativeLocation(lookup xcm.LocationLookup) (xcm.Location, error) {
	lookup, err := xcm.SanitizeLookup(lookup)
	if err != nil {
		return xcm.Location{}, err
	}
	switch l := lookup.(type) {
	case xcm.NamedLocation:
		if universal, ok := r.reg.UniversalLocation(string(l)); ok {
			return LocationRelativeToPrefix(universal, r.chain.UniversalLocation), nil
		}
		if rel, ok := r.chain.RelativeLocation(string(l)); ok {
			return rel, nil
		}
		return xcm.Location{}, fmt.Errorf("%w: %s", ErrUnknownNamedLocation, string(l))
	case xcm.RelativeLookup:
		return l.Location, nil
	case xcm.InteriorLookup:
		return LocationRelativeToPrefix(l.Interior, r.chain.UniversalLocation), nil
	}
	return xcm.Location{}, fmt.Errorf("%w: unexpected lookup %T", xcm.ErrInvalidLookup, lookup)
}

// ResolveUniversalLocation resolves lookup to a universal interior path.
func (r *Resolver) ResolveUniversalLocation(lookup xcm.LocationLookup) (xcm.Interior, error) {
	lookup, err := xcm.SanitizeLookup(lookup)
	if err != nil {
		return nil, err
	}
	switch l := lookup.(type) {
	case xcm.NamedLocation:
		if universal, ok := r.reg.UniversalLocation(string(l)); ok {
			return universal, nil
		}
		if rel, ok := r.chain.RelativeLocation(string(l)); ok {
			return RelativeLocationToUniversal(rel, r.chain.UniversalLocation)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownNamedLocation, string(l))
	case xcm.RelativeLookup:
		return RelativeLocationToUniversal(l.Location, r.chain.UniversalLocation)
	case xcm.InteriorLookup:
		return l.Interior, nil
	}
	return nil, fmt.Errorf("%w: unexpected lookup %T", xcm.ErrInvalidLookup, lookup)
}

// LocationRelativeToPrefix expresses the universal location abs as seen from
// prefix: ascend to the longest common leading path, then descend.
func LocationRelativeToPrefix(abs, prefix xcm.Interior) xcm.Location {
	common := 0
	for common < len(abs) && common < len(prefix) && xcm.CompareJunction(abs[common], prefix[common]) == 0 {
		common++
	}
	return xcm.Location{
		Parents:  uint8(len(prefix) - common),
		Interior: xcm.NewInterior(abs[common:]...),
	}
}

// RelativeLocationToUniversal is the inverse of LocationRelativeToPrefix: it
// drops Parents junctions from context and appends the interior.
func RelativeLocationToUniversal(rel xcm.Location, context xcm.Interior) (xcm.Interior, error) {
	if int(rel.Parents) > len(context) {
		return nil, fmt.Errorf("%w: %s from %s", ErrAscendsAboveRoot, rel, context)
	}
	out := context.Prefix(len(context) - int(rel.Parents)).Concat(rel.Interior)
	if len(out) > xcm.MaxJunctions {
		return nil, fmt.Errorf("%w: %s from %s", xcm.ErrTooManyJunctions, rel, context)
	}
	return out, nil
}
