package transfer

import (
	"fmt"

	"github.com/LeJamon/goXCM/internal/amount"
	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/holiman/uint256"
)

// Origin is who sends the transfer: an explicit account or a location the
// chain maps to an account.
type Origin interface {
	origin()
}

type AccountOrigin struct {
	ID extrinsic.AccountID
}

type LocationOrigin struct {
	Lookup xcm.LocationLookup
}

func (AccountOrigin) origin()  {}
func (LocationOrigin) origin() {}

// AssetIDLookup names an asset by currency symbol or by location. Exactly
// one of the two is set.
type AssetIDLookup struct {
	Symbol   string
	Location xcm.LocationLookup
}

func (l AssetIDLookup) String() string {
	if l.Symbol != "" {
		return l.Symbol
	}
	if l.Location != nil {
		return l.Location.String()
	}
	return "<empty>"
}

func (l AssetIDLookup) validate() error {
	switch {
	case l.Symbol != "" && l.Location != nil:
		return fmt.Errorf("%w: asset id has both a symbol and a location", ErrInvalidRequest)
	case l.Symbol == "" && l.Location == nil:
		return fmt.Errorf("%w: asset id needs a symbol or a location", ErrInvalidRequest)
	case l.Location != nil:
		_, err := xcm.SanitizeLookup(l.Location)
		return err
	}
	return nil
}

// AssetLookup is one asset of a transfer request. Amount is a decimal in
// whole currency units, Raw is already in base units, Instance selects a
// non-fungible item. Exactly one of the three is set.
type AssetLookup struct {
	ID       AssetIDLookup
	Amount   string
	Raw      *uint256.Int
	Instance *xcm.AssetInstance
}

func (l AssetLookup) validate() error {
	if err := l.ID.validate(); err != nil {
		return err
	}
	set := 0
	for _, ok := range []bool{l.Amount != "", l.Raw != nil, l.Instance != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: asset %s needs exactly one of amount, raw amount or instance", ErrInvalidRequest, l.ID)
	}
	if l.Amount != "" {
		return amount.Validate(l.Amount)
	}
	return nil
}

// TransferParams is a transfer request as a user states it.
type TransferParams struct {
	Origin      Origin
	Destination xcm.LocationLookup
	// Beneficiary is resolved as seen from the destination.
	Beneficiary xcm.LocationLookup
	Assets      []AssetLookup
	FeeAsset    AssetIDLookup
	WeightLimit xcm.WeightLimit
}

// Validate checks the request shape without resolving anything.
func (p TransferParams) Validate() error {
	switch o := p.Origin.(type) {
	case AccountOrigin:
	case LocationOrigin:
		if _, err := xcm.SanitizeLookup(o.Lookup); err != nil {
			return fmt.Errorf("origin: %w", err)
		}
	default:
		return fmt.Errorf("%w: missing origin", ErrInvalidRequest)
	}
	if len(p.Assets) == 0 {
		return fmt.Errorf("%w: no assets", ErrInvalidRequest)
	}
	if _, err := xcm.SanitizeLookup(p.Destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if _, err := xcm.SanitizeLookup(p.Beneficiary); err != nil {
		return fmt.Errorf("beneficiary: %w", err)
	}
	for i, a := range p.Assets {
		if err := a.validate(); err != nil {
			return fmt.Errorf("asset %d: %w", i, err)
		}
	}
	if err := p.FeeAsset.validate(); err != nil {
		return fmt.Errorf("fee asset: %w", err)
	}
	return nil
}
