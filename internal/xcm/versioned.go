package xcm

import (
	"fmt"
	"slices"
)

// VersionedLocation is a location tagged with the protocol version it has
// been validated for. Build it with ConvertLocationVersion.
type VersionedLocation struct {
	version  Version
	location Location
}

// VersionedAssetID is an asset id tagged with a protocol version.
type VersionedAssetID struct {
	version Version
	id      AssetID
}

// VersionedAsset is an asset tagged with a protocol version.
type VersionedAsset struct {
	version Version
	asset   Asset
}

// VersionedAssets is a canonical asset vector tagged with a protocol version.
type VersionedAssets struct {
	version Version
	assets  []Asset
}

func (v VersionedLocation) Version() Version { return v.version }
func (v VersionedAssetID) Version() Version  { return v.version }
func (v VersionedAsset) Version() Version    { return v.version }
func (v VersionedAssets) Version() Version   { return v.version }

// Location lifts the value back to the unversioned model.
func (v VersionedLocation) Location() Location { return v.location }

// AssetID lifts the value back to the unversioned model.
func (v VersionedAssetID) AssetID() AssetID { return v.id }

// Asset lifts the value back to the unversioned model.
func (v VersionedAsset) Asset() Asset { return v.asset }

// Assets returns a copy of the canonical vector.
func (v VersionedAssets) Assets() []Asset { return slices.Clone(v.assets) }

// Len returns the number of assets.
func (v VersionedAssets) Len() int { return len(v.assets) }

func (v VersionedLocation) String() string {
	return fmt.Sprintf("%s(%s)", v.version, v.location)
}

// ConvertLocationVersion projects a resolved location into version v. It
// fails with an *UnsupportedError when the location uses a feature that v
// cannot express.
func ConvertLocationVersion(v Version, l Location) (VersionedLocation, error) {
	if _, err := CheckVersion(v); err != nil {
		return VersionedLocation{}, err
	}
	l, err := SanitizeLocation(l)
	if err != nil {
		return VersionedLocation{}, err
	}
	if err := l.Interior.checkVersion(v); err != nil {
		return VersionedLocation{}, fmt.Errorf("location %s: %w", l, err)
	}
	return VersionedLocation{version: v, location: l}, nil
}

// ConvertAssetIDVersion projects an asset id into version v.
func ConvertAssetIDVersion(v Version, id AssetID) (VersionedAssetID, error) {
	vl, err := ConvertLocationVersion(v, id.Location)
	if err != nil {
		return VersionedAssetID{}, fmt.Errorf("asset id: %w", err)
	}
	return VersionedAssetID{version: v, id: AssetID{Location: vl.location}}, nil
}

// ConvertAssetVersion projects an asset into version v.
func ConvertAssetVersion(v Version, a Asset) (VersionedAsset, error) {
	if _, err := CheckVersion(v); err != nil {
		return VersionedAsset{}, err
	}
	if err := a.Validate(); err != nil {
		return VersionedAsset{}, err
	}
	if err := a.checkVersion(v); err != nil {
		return VersionedAsset{}, fmt.Errorf("asset %s: %w", a.ID, err)
	}
	return VersionedAsset{version: v, asset: Asset{ID: NewAssetID(Location{
		Parents:  a.ID.Location.Parents,
		Interior: NewInterior(a.ID.Location.Interior...),
	}), Fun: a.Fun}}, nil
}

// ConvertLocation re-tags an already versioned location.
func (v VersionedLocation) ConvertLocation(to Version) (VersionedLocation, error) {
	return ConvertLocationVersion(to, v.location)
}

// PrepareAssetsForEncoding canonicalizes assets and projects every element
// into version v.
func PrepareAssetsForEncoding(v Version, assets []Asset) (VersionedAssets, error) {
	if _, err := CheckVersion(v); err != nil {
		return VersionedAssets{}, err
	}
	sorted, err := sortAndDeduplicate(v, assets)
	if err != nil {
		return VersionedAssets{}, err
	}
	for _, a := range sorted {
		if err := a.checkVersion(v); err != nil {
			return VersionedAssets{}, fmt.Errorf("asset %s: %w", a.ID, err)
		}
	}
	return VersionedAssets{version: v, assets: sorted}, nil
}

// Index returns the position of the asset with the given id, or -1.
func (v VersionedAssets) Index(id AssetID) int {
	loc := id.Location.wireForm(v.version)
	for i, a := range v.assets {
		if compareLocation(v.version, a.ID.Location, loc) == 0 {
			return i
		}
	}
	return -1
}

// WeightLimit bounds the execution weight purchased on the destination.
type WeightLimit struct {
	Limited   bool
	RefTime   uint64
	ProofSize uint64
}

// Unlimited lets the destination charge whatever weight it needs.
func Unlimited() WeightLimit { return WeightLimit{} }
