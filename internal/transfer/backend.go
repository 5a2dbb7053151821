package transfer

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

const (
	TransferAssetsMethod      = "transfer_assets"
	TransferMultiassetsMethod = "transfer_multiassets"
)

var (
	DefaultPrimaryPallets = []string{"PolkadotXcm", "XcmPallet"}
	DefaultTokenPallets   = []string{"XTokens", "xTokens", "Xtokens"}
)

// Backend turns prepared params into the pallet call that performs the
// transfer.
type Backend interface {
	Name() string
	// Check rejects params the backend cannot express.
	Check(p *PreparedTransferParams) error
	BuildCall(p *PreparedTransferParams) (extrinsic.Call, error)
}

// PalletBackend calls transfer_assets on the XCM pallet.
type PalletBackend struct {
	Pallet string
}

func (b PalletBackend) Name() string { return b.Pallet + "." + TransferAssetsMethod }

func (b PalletBackend) Check(*PreparedTransferParams) error { return nil }

func (b PalletBackend) BuildCall(p *PreparedTransferParams) (extrinsic.Call, error) {
	dest, err := p.VersionedDestination()
	if err != nil {
		return extrinsic.Call{}, err
	}
	beneficiary, err := p.VersionedBeneficiary()
	if err != nil {
		return extrinsic.Call{}, err
	}
	assets, err := p.VersionedAssets()
	if err != nil {
		return extrinsic.Call{}, err
	}
	return extrinsic.Call{
		Pallet: b.Pallet,
		Method: TransferAssetsMethod,
		Args:   []any{dest, beneficiary, assets, types.NewU32(uint32(p.FeeAssetIndex())), p.WeightLimit},
	}, nil
}

// TokensBackend calls transfer_multiassets on a token pallet. The pallet
// takes a single destination, so the beneficiary is appended to it.
type TokensBackend struct {
	Pallet string
}

func (b TokensBackend) Name() string { return b.Pallet + "." + TransferMultiassetsMethod }

func (b TokensBackend) Check(p *PreparedTransferParams) error {
	if p.Beneficiary.Parents != 0 {
		return fmt.Errorf("%w: %s has %d parents, %s needs 0", ErrBeneficiaryNotInterior, p.Beneficiary, p.Beneficiary.Parents, b.Name())
	}
	_, err := b.destination(p)
	return err
}

func (b TokensBackend) destination(p *PreparedTransferParams) (xcm.VersionedLocation, error) {
	combined := xcm.Location{
		Parents:  p.Destination.Parents,
		Interior: p.Destination.Interior.Concat(p.Beneficiary.Interior),
	}
	return xcm.ConvertLocationVersion(p.Version, combined)
}

func (b TokensBackend) BuildCall(p *PreparedTransferParams) (extrinsic.Call, error) {
	if err := b.Check(p); err != nil {
		return extrinsic.Call{}, err
	}
	assets, err := p.VersionedAssets()
	if err != nil {
		return extrinsic.Call{}, err
	}
	dest, err := b.destination(p)
	if err != nil {
		return extrinsic.Call{}, err
	}
	return extrinsic.Call{
		Pallet: b.Pallet,
		Method: TransferMultiassetsMethod,
		Args:   []any{assets, types.NewU32(uint32(p.FeeAssetIndex())), dest, p.WeightLimit},
	}, nil
}

// SelectBackend prefers a primary pallet exposing transfer_assets and falls
// back to the first token pallet the runtime declares.
func SelectBackend(ctx context.Context, rt Runtime, primary, tokens []string, logger *log.Logger) (Backend, error) {
	for _, pallet := range primary {
		ok, err := rt.HasCall(ctx, pallet, TransferAssetsMethod)
		if err != nil {
			return nil, err
		}
		if ok {
			return PalletBackend{Pallet: pallet}, nil
		}
	}

	pallets, err := rt.Pallets(ctx)
	if err != nil {
		return nil, err
	}
	for _, pallet := range tokens {
		if slices.Contains(pallets, pallet) {
			if logger != nil {
				logger.Printf("No %s call on %s, falling back to %s.%s", TransferAssetsMethod, rt.ChainName(), pallet, TransferMultiassetsMethod)
			}
			return TokensBackend{Pallet: pallet}, nil
		}
	}
	return nil, fmt.Errorf("%w on %s", ErrNoTransferBackend, rt.ChainName())
}
