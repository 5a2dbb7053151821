package xcm

import (
	"fmt"
	"slices"

	"github.com/holiman/uint256"
)

// SortAndDeduplicateAssets returns a new slice holding the assets in
// canonical order with entries sharing an id merged:
//   - fungible amounts are summed,
//   - fungible and non-fungible entries under one id fail with
//     ErrConflictingFungibility,
//   - non-fungible instances under one id are ordered by instance and exact
//     duplicates dropped.
//
// The input slice is left untouched.
func SortAndDeduplicateAssets(assets []Asset) ([]Asset, error) {
	return sortAndDeduplicate(MaxVersion, assets)
}

// sortAndDeduplicate canonicalizes in the order version v's runtime checks.
func sortAndDeduplicate(v Version, assets []Asset) ([]Asset, error) {
	for i, a := range assets {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
	}

	sorted := make([]Asset, len(assets))
	for i, a := range assets {
		sorted[i] = a.wireForm(v)
	}
	slices.SortStableFunc(sorted, func(a, b Asset) int { return compareAsset(v, a, b) })

	out := make([]Asset, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && compareAsset(v, sorted[start], sorted[end]) == 0 {
			end++
		}
		merged, err := mergeSameID(sorted[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, merged...)
		start = end
	}
	return out, nil
}

func mergeSameID(run []Asset) ([]Asset, error) {
	if len(run) == 1 {
		return run, nil
	}

	fungible := run[0].Fun.IsFungible()
	for _, a := range run[1:] {
		if a.Fun.IsFungible() != fungible {
			return nil, fmt.Errorf("%w: asset %s is both fungible and non-fungible", ErrConflictingFungibility, a.ID)
		}
	}

	if fungible {
		var total uint256.Int
		for _, a := range run {
			amount, _ := a.Amount()
			if _, overflow := total.AddOverflow(&total, &amount); overflow || !fitsU128(&total) {
				return nil, fmt.Errorf("%w: summing %s", ErrAmountOverflow, a.ID)
			}
		}
		return []Asset{run[0].WithAmount(total)}, nil
	}

	instances := slices.Clone(run)
	slices.SortStableFunc(instances, func(a, b Asset) int {
		return CompareAssetInstance(a.Fun.(NonFungible).Instance, b.Fun.(NonFungible).Instance)
	})
	return slices.CompactFunc(instances, func(a, b Asset) bool {
		return CompareAssetInstance(a.Fun.(NonFungible).Instance, b.Fun.(NonFungible).Instance) == 0
	}), nil
}

// SortAndDeduplicateVersionedAssets canonicalizes a list of versioned assets
// that must all share one version. The result is tagged with that version.
func SortAndDeduplicateVersionedAssets(assets []VersionedAsset) (VersionedAssets, error) {
	if len(assets) == 0 {
		return VersionedAssets{}, fmt.Errorf("%w: empty asset list", ErrInvalidAsset)
	}
	version := assets[0].Version()
	plain := make([]Asset, len(assets))
	for i, a := range assets {
		if a.Version() != version {
			return VersionedAssets{}, fmt.Errorf("%w: asset %d is %s, expected %s", ErrMixedVersions, i, a.Version(), version)
		}
		plain[i] = a.Asset()
	}
	sorted, err := sortAndDeduplicate(version, plain)
	if err != nil {
		return VersionedAssets{}, err
	}
	return VersionedAssets{version: version, assets: sorted}, nil
}
