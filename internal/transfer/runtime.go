package transfer

//go:generate mockgen -source=runtime.go -destination=mock_runtime_test.go -package=transfer

import (
	"context"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/resolver"
	"github.com/LeJamon/goXCM/internal/xcm"
)

// Runtime is the view of the origin chain's runtime a transfer needs.
type Runtime interface {
	ChainName() string
	// HasCall reports whether pallet exposes method.
	HasCall(ctx context.Context, pallet, method string) (bool, error)
	Pallets(ctx context.Context) ([]string, error)
	// LocationToAccount maps a location to the account it controls. Runtimes
	// without the conversion API fail with transport.ErrFeatureNotSupported.
	LocationToAccount(ctx context.Context, loc xcm.VersionedLocation) (extrinsic.AccountID, error)
}

// ChainContext is the origin chain a transfer is prepared on.
type ChainContext struct {
	Resolver *resolver.Resolver
	Runtime  Runtime
	Version  xcm.Version
}
