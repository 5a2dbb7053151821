package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goXCM/internal/amount"
	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/LeJamon/goXCM/internal/resolver"
	"github.com/LeJamon/goXCM/internal/transport"
	"github.com/LeJamon/goXCM/internal/xcm"
)

// PrepareTransferParams validates req, resolves every lookup on the chain of
// cc and canonicalizes the asset vector. The fee asset must be one of the
// transferred assets.
func PrepareTransferParams(ctx context.Context, cc ChainContext, req TransferParams) (*PreparedTransferParams, error) {
	if _, err := xcm.CheckVersion(cc.Version); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	origin, err := resolveOrigin(ctx, cc, req.Origin)
	if err != nil {
		return nil, err
	}

	res := cc.Resolver
	dest, err := res.ResolveRelativeLocation(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	beneficiary, err := resolveBeneficiary(res, dest, req.Beneficiary)
	if err != nil {
		return nil, fmt.Errorf("beneficiary: %w", err)
	}
	feeID, _, err := resolveAssetID(res, req.FeeAsset)
	if err != nil {
		return nil, fmt.Errorf("fee asset: %w", err)
	}

	assets := make([]xcm.Asset, 0, len(req.Assets))
	for i, lookup := range req.Assets {
		asset, err := resolveAsset(res, lookup)
		if err != nil {
			return nil, fmt.Errorf("asset %d (%s): %w", i, lookup.ID, err)
		}
		assets = append(assets, asset)
	}

	encoded, err := xcm.PrepareAssetsForEncoding(cc.Version, assets)
	if err != nil {
		return nil, err
	}
	canonical := encoded.Assets()

	feeIndex := encoded.Index(feeID)
	if feeIndex < 0 {
		return nil, fmt.Errorf("%w: %s", ErrFeeAssetNotInTransfer, feeID)
	}
	if !canonical[feeIndex].Fun.IsFungible() {
		return nil, fmt.Errorf("%w: %s", ErrFeeAssetNotFungible, feeID)
	}

	p := &PreparedTransferParams{
		Origin:      origin,
		Version:     cc.Version,
		Destination: dest,
		Beneficiary: beneficiary,
		FeeAssetID:  feeID,
		WeightLimit: req.WeightLimit,
		assets:      canonical,
		feeIndex:    feeIndex,
	}
	if _, err := p.VersionedDestination(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if _, err := p.VersionedBeneficiary(); err != nil {
		return nil, fmt.Errorf("beneficiary: %w", err)
	}
	return p, nil
}

func resolveOrigin(ctx context.Context, cc ChainContext, o Origin) (extrinsic.AccountID, error) {
	lo, ok := o.(LocationOrigin)
	if !ok {
		return o.(AccountOrigin).ID, nil
	}
	loc, err := cc.Resolver.ResolveRelativeLocation(lo.Lookup)
	if err != nil {
		return extrinsic.AccountID{}, fmt.Errorf("origin: %w", err)
	}
	vl, err := xcm.ConvertLocationVersion(cc.Version, loc)
	if err != nil {
		return extrinsic.AccountID{}, fmt.Errorf("origin: %w", err)
	}
	if cc.Runtime == nil {
		return extrinsic.AccountID{}, fmt.Errorf("%w: no runtime to convert origin %s", ErrCapabilityUnsupported, loc)
	}
	account, err := cc.Runtime.LocationToAccount(ctx, vl)
	if errors.Is(err, transport.ErrFeatureNotSupported) {
		return extrinsic.AccountID{}, fmt.Errorf("%w: %s cannot convert locations to accounts: %w", ErrCapabilityUnsupported, cc.Runtime.ChainName(), err)
	}
	if err != nil {
		return extrinsic.AccountID{}, fmt.Errorf("origin %s: %w", loc, err)
	}
	return account, nil
}

// resolveBeneficiary resolves lookup as seen from the destination dest.
func resolveBeneficiary(res *resolver.Resolver, dest xcm.Location, lookup xcm.LocationLookup) (xcm.Location, error) {
	if rel, ok := lookup.(xcm.RelativeLookup); ok {
		return res.ResolveRelativeLocation(rel)
	}
	destUniversal, err := resolver.RelativeLocationToUniversal(dest, res.Chain().UniversalLocation)
	if err != nil {
		return xcm.Location{}, err
	}
	destChain, err := res.Registry().ChainInfoByUniversalLocation(destUniversal)
	if err != nil {
		if destChain, err = registry.NewChainInfo("", "", destUniversal, nil, nil); err != nil {
			return xcm.Location{}, err
		}
	}
	return res.ForChain(destChain).ResolveRelativeLocation(lookup)
}

// resolveAssetID returns the asset id relative to the chain and the
// currency it belongs to, when known.
func resolveAssetID(res *resolver.Resolver, lookup AssetIDLookup) (xcm.AssetID, *registry.CurrencyInfo, error) {
	reg := res.Registry()
	if lookup.Symbol != "" {
		cur, err := reg.CurrencyInfoBySymbol(lookup.Symbol)
		if err != nil {
			return xcm.AssetID{}, nil, err
		}
		rel := resolver.LocationRelativeToPrefix(cur.UniversalLocation, res.Chain().UniversalLocation)
		return xcm.NewAssetID(rel), cur, nil
	}

	rel, err := res.ResolveRelativeLocation(lookup.Location)
	if err != nil {
		return xcm.AssetID{}, nil, err
	}
	universal, err := resolver.RelativeLocationToUniversal(rel, res.Chain().UniversalLocation)
	if err != nil {
		return xcm.AssetID{}, nil, err
	}
	cur, _ := reg.CurrencyInfoByUniversalLocation(universal)
	return xcm.NewAssetID(rel), cur, nil
}

func resolveAsset(res *resolver.Resolver, lookup AssetLookup) (xcm.Asset, error) {
	id, cur, err := resolveAssetID(res, lookup.ID)
	if err != nil {
		return xcm.Asset{}, err
	}
	switch {
	case lookup.Instance != nil:
		return xcm.NewNonFungible(id.Location, *lookup.Instance), nil
	case lookup.Raw != nil:
		return xcm.NewFungible(id.Location, *lookup.Raw), nil
	}
	if cur == nil {
		return xcm.Asset{}, fmt.Errorf("%w: %s is not a known currency", ErrUnknownAssetDecimals, id)
	}
	v, err := amount.Parse(lookup.Amount, cur.Decimals)
	if err != nil {
		return xcm.Asset{}, err
	}
	return xcm.NewFungible(id.Location, v), nil
}
