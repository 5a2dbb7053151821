package transfer

import (
	"fmt"
	"slices"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/holiman/uint256"
)

// PreparedTransferParams is a resolved transfer. It owns the canonical asset
// vector; the only mutation allowed is growing the fee asset's amount.
type PreparedTransferParams struct {
	Origin      extrinsic.AccountID
	Version     xcm.Version
	Destination xcm.Location
	Beneficiary xcm.Location
	FeeAssetID  xcm.AssetID
	WeightLimit xcm.WeightLimit

	assets   []xcm.Asset
	feeIndex int
}

// Assets returns a copy of the canonical asset vector.
func (p *PreparedTransferParams) Assets() []xcm.Asset { return slices.Clone(p.assets) }

// FeeAssetIndex is the position of the fee asset in Assets.
func (p *PreparedTransferParams) FeeAssetIndex() int { return p.feeIndex }

// FeeAmount returns the amount currently reserved in the fee asset.
func (p *PreparedTransferParams) FeeAmount() uint256.Int {
	amount, _ := p.assets[p.feeIndex].Amount()
	return amount
}

// AddFeeAmount grows the fee asset's amount in place. The id is untouched so
// the vector stays canonical.
func (p *PreparedTransferParams) AddFeeAmount(delta uint256.Int) error {
	current := p.FeeAmount()
	var next uint256.Int
	if _, overflow := next.AddOverflow(&current, &delta); overflow || next.Gt(ptr(xcm.MaxU128())) {
		return fmt.Errorf("%w: fee asset %s", xcm.ErrAmountOverflow, p.FeeAssetID)
	}
	p.assets[p.feeIndex] = p.assets[p.feeIndex].WithAmount(next)
	return nil
}

func ptr(v uint256.Int) *uint256.Int { return &v }

// VersionedAssets encodes the asset vector at the prepared version.
func (p *PreparedTransferParams) VersionedAssets() (xcm.VersionedAssets, error) {
	return xcm.PrepareAssetsForEncoding(p.Version, p.assets)
}

func (p *PreparedTransferParams) VersionedDestination() (xcm.VersionedLocation, error) {
	return xcm.ConvertLocationVersion(p.Version, p.Destination)
}

func (p *PreparedTransferParams) VersionedBeneficiary() (xcm.VersionedLocation, error) {
	return xcm.ConvertLocationVersion(p.Version, p.Beneficiary)
}

func (p *PreparedTransferParams) VersionedFeeAssetID() (xcm.VersionedAssetID, error) {
	return xcm.ConvertAssetIDVersion(p.Version, p.FeeAssetID)
}
