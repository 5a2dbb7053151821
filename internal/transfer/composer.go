package transfer

import (
	"context"
	"fmt"
	"log"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/fees"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Transaction is a composed transfer ready to be signed.
type Transaction struct {
	Call       extrinsic.Call
	Backend    string
	Params     *PreparedTransferParams
	Iterations int
}

// Build encodes the call against the chain's metadata.
func (t *Transaction) Build(meta *types.Metadata) (types.Call, error) {
	return t.Call.Build(meta)
}

// Composer prepares transfers and converges their fees.
type Composer struct {
	engine         *fees.Engine
	primaryPallets []string
	tokenPallets   []string
	logger         *log.Logger
}

type ComposerOption func(*Composer)

func WithPrimaryPallets(pallets ...string) ComposerOption {
	return func(c *Composer) {
		if len(pallets) > 0 {
			c.primaryPallets = pallets
		}
	}
}

func WithTokenPallets(pallets ...string) ComposerOption {
	return func(c *Composer) {
		if len(pallets) > 0 {
			c.tokenPallets = pallets
		}
	}
}

func WithLogger(l *log.Logger) ComposerOption {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComposer returns a composer converging fees with engine.
func NewComposer(engine *fees.Engine, opts ...ComposerOption) *Composer {
	c := &Composer{
		engine:         engine,
		primaryPallets: DefaultPrimaryPallets,
		tokenPallets:   DefaultTokenPallets,
		logger:         log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ComposeTransfer selects a backend, prepares params and grows the fee
// asset until the estimator accepts the call. A runtime that can dry-run
// calls runs the final one unless opts names another DryRunner.
func (c *Composer) ComposeTransfer(ctx context.Context, cc ChainContext, params TransferParams, opts fees.EstimateOptions) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if cc.Runtime == nil {
		return nil, fmt.Errorf("%w: no runtime to select a transfer backend", ErrCapabilityUnsupported)
	}
	if dr, ok := cc.Runtime.(fees.DryRunner); ok && opts.DryRunner == nil {
		opts.DryRunner = dr
	}
	backend, err := SelectBackend(ctx, cc.Runtime, c.primaryPallets, c.tokenPallets, c.logger)
	if err != nil {
		return nil, err
	}
	prepared, err := PrepareTransferParams(ctx, cc, params)
	if err != nil {
		return nil, err
	}
	if err := backend.Check(prepared); err != nil {
		return nil, err
	}
	feeID, err := prepared.VersionedFeeAssetID()
	if err != nil {
		return nil, err
	}

	out, err := c.engine.Converge(ctx, prepared, prepared.Origin, feeID, func() (extrinsic.Call, error) {
		return backend.BuildCall(prepared)
	}, opts)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Call:       out.Call,
		Backend:    backend.Name(),
		Params:     prepared,
		Iterations: out.Iterations,
	}, nil
}
