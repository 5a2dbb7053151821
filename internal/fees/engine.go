// Package fees drives fee estimation for a transfer until the reserved fee
// covers every hop.
package fees

import (
	"context"
	"fmt"
	"log"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/holiman/uint256"
)

// DefaultMaxIterations bounds the estimate loop.
const DefaultMaxIterations = 16

// Estimator dry-runs a candidate call and returns the fee it needs. When the
// reserved fee falls short it fails with a *TooExpensiveError or an
// *AggregateError of them, one per hop.
type Estimator interface {
	EstimateExtrinsicFees(ctx context.Context, origin extrinsic.AccountID, call extrinsic.Call, feeAsset xcm.VersionedAssetID, opts EstimateOptions) (uint256.Int, error)
}

// EstimatorResolver returns the estimator for a hop on another chain.
type EstimatorResolver func(ctx context.Context, chain *registry.ChainInfo) (Estimator, error)

type EstimateOptions struct {
	Resolver EstimatorResolver
	// DryRunner runs the final call on the origin chain. It takes precedence
	// over the engine's own.
	DryRunner DryRunner
}

// DryRunner runs the assembled call once without committing it.
type DryRunner interface {
	DryRun(ctx context.Context, origin extrinsic.AccountID, call extrinsic.Call) error
}

// FeeTarget owns the fee amount the engine grows.
type FeeTarget interface {
	FeeAmount() uint256.Int
	AddFeeAmount(delta uint256.Int) error
}

// BuildFunc builds the candidate call from the current fee amount.
type BuildFunc func() (extrinsic.Call, error)

// State is the position of the engine in the estimate loop.
type State int

const (
	StateEstimating State = iota
	StateTooExpensive
	StateConverged
)

func (s State) String() string {
	switch s {
	case StateEstimating:
		return "estimating"
	case StateTooExpensive:
		return "too expensive"
	case StateConverged:
		return "converged"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is the result of a converged loop.
type Outcome struct {
	Call       extrinsic.Call
	Iterations int
	// Added is the total amount added to the fee asset.
	Added uint256.Int
	State State
}

// Engine runs the estimate loop.
type Engine struct {
	estimator     Estimator
	dryRunner     DryRunner
	requireDryRun bool
	maxIterations int
	logger        *log.Logger
}

type Option func(*Engine)

func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

func WithDryRunner(d DryRunner) Option {
	return func(e *Engine) { e.dryRunner = d }
}

// WithRequiredDryRun makes Converge fail when no DryRunner is available for
// the final call.
func WithRequiredDryRun(required bool) Option {
	return func(e *Engine) { e.requireDryRun = required }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine around estimator.
func NewEngine(estimator Estimator, opts ...Option) *Engine {
	e := &Engine{
		estimator:     estimator,
		maxIterations: DefaultMaxIterations,
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Converge estimates the call built by build, growing target's fee amount
// by every reported shortfall until an estimate succeeds. A concrete fee is
// added once and ends the loop. Errors other than shortfalls are returned
// unchanged. The final call is dry-run once, by opts.DryRunner or the
// engine's own.
func (e *Engine) Converge(ctx context.Context, target FeeTarget, origin extrinsic.AccountID, feeAsset xcm.VersionedAssetID, build BuildFunc, opts EstimateOptions) (*Outcome, error) {
	out := &Outcome{State: StateEstimating}

	for out.State != StateConverged {
		if out.Iterations == e.maxIterations {
			return nil, fmt.Errorf("%w after %d estimates, added %s", ErrNotConverged, out.Iterations, out.Added.Dec())
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Iterations++

		call, err := build()
		if err != nil {
			return nil, err
		}
		fee, err := e.estimator.EstimateExtrinsicFees(ctx, origin, call, feeAsset, opts)
		if err != nil {
			missing, ok := Shortfall(err)
			if !ok {
				return nil, err
			}
			if missing.IsZero() {
				out.Call, out.State = call, StateConverged
				break
			}
			out.State = StateTooExpensive
			e.logger.Printf("Fee estimate for %s too expensive, adding %s (estimate %d)", call.Name(), missing.Dec(), out.Iterations)
			if err := e.add(target, out, missing); err != nil {
				return nil, err
			}
			continue
		}

		if err := e.add(target, out, fee); err != nil {
			return nil, err
		}
		if out.Call, err = build(); err != nil {
			return nil, err
		}
		out.State = StateConverged
	}

	runner := opts.DryRunner
	if runner == nil {
		runner = e.dryRunner
	}
	switch {
	case runner != nil:
		if err := runner.DryRun(ctx, origin, out.Call); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFinalDryRun, err)
		}
	case e.requireDryRun:
		return nil, fmt.Errorf("%w: no dry runner for %s", ErrFinalDryRun, out.Call.Name())
	}
	return out, nil
}

func (e *Engine) add(target FeeTarget, out *Outcome, delta uint256.Int) error {
	if err := target.AddFeeAmount(delta); err != nil {
		return err
	}
	out.Added.Add(&out.Added, &delta)
	return nil
}
