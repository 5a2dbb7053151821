package fees

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type amountTarget struct {
	amount uint256.Int
}

func (a *amountTarget) FeeAmount() uint256.Int { return a.amount }

func (a *amountTarget) AddFeeAmount(delta uint256.Int) error {
	a.amount.Add(&a.amount, &delta)
	return nil
}

type step struct {
	fee uint64
	err error
}

type scriptedEstimator struct {
	steps   []step
	calls   int
	amounts []uint64
	target  *amountTarget
}

func (s *scriptedEstimator) EstimateExtrinsicFees(_ context.Context, _ extrinsic.AccountID, call extrinsic.Call, _ xcm.VersionedAssetID, _ EstimateOptions) (uint256.Int, error) {
	s.amounts = append(s.amounts, call.Args[0].(uint64))
	st := s.steps[min(s.calls, len(s.steps)-1)]
	s.calls++
	return *uint256.NewInt(st.fee), st.err
}

type recordingDryRunner struct {
	calls []extrinsic.Call
	err   error
}

func (r *recordingDryRunner) DryRun(_ context.Context, _ extrinsic.AccountID, call extrinsic.Call) error {
	r.calls = append(r.calls, call)
	return r.err
}

func tooExpensive(chain string, missing uint64) error {
	return &TooExpensiveError{Chain: chain, Missing: *uint256.NewInt(missing)}
}

func feeAssetID(t *testing.T) xcm.VersionedAssetID {
	id, err := xcm.ConvertAssetIDVersion(xcm.V4, xcm.NewAssetID(xcm.ParentLocation()))
	require.NoError(t, err)
	return id
}

func setup(t *testing.T, steps ...step) (*amountTarget, *scriptedEstimator, BuildFunc) {
	target := &amountTarget{}
	est := &scriptedEstimator{steps: steps, target: target}
	build := func() (extrinsic.Call, error) {
		return extrinsic.Call{Pallet: "PolkadotXcm", Method: "transfer_assets", Args: []any{target.amount.Uint64()}}, nil
	}
	return target, est, build
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestConvergeSumsShortfalls(t *testing.T) {
	target, est, build := setup(t,
		step{err: tooExpensive("AssetHub", 3)},
		step{err: tooExpensive("AssetHub", 2)},
		step{err: tooExpensive("AssetHub", 0)},
	)
	dry := &recordingDryRunner{}
	engine := NewEngine(est, WithDryRunner(dry), WithLogger(quietLogger()))

	out, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.NoError(t, err)
	require.Equal(t, StateConverged, out.State)
	require.Equal(t, 3, out.Iterations)
	require.Equal(t, uint64(5), out.Added.Uint64())
	require.Equal(t, uint64(5), target.amount.Uint64())
	require.Equal(t, []uint64{0, 3, 5}, est.amounts)

	require.Len(t, dry.calls, 1)
	require.Equal(t, uint64(5), dry.calls[0].Args[0])
}

func TestConvergeConcreteFeeEndsLoop(t *testing.T) {
	target, est, build := setup(t,
		step{err: tooExpensive("AssetHub", 10)},
		step{fee: 7},
		step{err: errors.New("must not be called")},
	)
	engine := NewEngine(est, WithLogger(quietLogger()))

	out, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, out.Iterations)
	require.Equal(t, uint64(17), target.amount.Uint64())
	require.Equal(t, uint64(17), out.Call.Args[0])
	require.Equal(t, 2, est.calls)
}

func TestConvergeAggregateShortfall(t *testing.T) {
	target, est, build := setup(t,
		step{err: &AggregateError{Errs: []error{tooExpensive("AssetHub", 4), tooExpensive("Hydration", 6)}}},
		step{fee: 0},
	)
	engine := NewEngine(est, WithLogger(quietLogger()))

	out, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.NoError(t, err)
	require.Equal(t, uint64(10), out.Added.Uint64())
}

func TestConvergeFatalAggregate(t *testing.T) {
	fatal := errors.New("hop unreachable")
	agg := &AggregateError{Errs: []error{tooExpensive("AssetHub", 4), fatal}}
	target, est, build := setup(t, step{err: agg})
	engine := NewEngine(est, WithLogger(quietLogger()))

	_, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.Same(t, agg, err)
	require.ErrorIs(t, err, fatal)
	require.True(t, target.amount.IsZero())
}

func TestConvergeFatalErrorUnchanged(t *testing.T) {
	fatal := errors.New("runtime api missing")
	target, est, build := setup(t, step{err: fatal})
	engine := NewEngine(est, WithLogger(quietLogger()))

	_, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.Same(t, fatal, err)
}

func TestConvergeIterationBound(t *testing.T) {
	target, est, build := setup(t, step{err: tooExpensive("AssetHub", 1)})
	engine := NewEngine(est, WithMaxIterations(4), WithLogger(quietLogger()))

	_, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.ErrorIs(t, err, ErrNotConverged)
	require.Equal(t, 4, est.calls)
	require.Equal(t, uint64(4), target.amount.Uint64())
}

func TestConvergeFinalDryRunFailure(t *testing.T) {
	target, est, build := setup(t, step{fee: 1})
	boom := errors.New("execution failed")
	engine := NewEngine(est, WithDryRunner(&recordingDryRunner{err: boom}), WithLogger(quietLogger()))

	_, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.ErrorIs(t, err, ErrFinalDryRun)
	require.ErrorIs(t, err, boom)
}

func TestConvergeCancelled(t *testing.T) {
	target, est, build := setup(t, step{fee: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(est).Converge(ctx, target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, est.calls)
}

func TestShortfall(t *testing.T) {
	missing, ok := Shortfall(tooExpensive("a", 3))
	require.True(t, ok)
	require.Equal(t, uint64(3), missing.Uint64())

	nested := &AggregateError{Errs: []error{
		tooExpensive("a", 1),
		&AggregateError{Errs: []error{tooExpensive("b", 2), tooExpensive("c", 3)}},
	}}
	missing, ok = Shortfall(nested)
	require.True(t, ok)
	require.Equal(t, uint64(6), missing.Uint64())

	_, ok = Shortfall(&AggregateError{})
	require.False(t, ok)
	_, ok = Shortfall(errors.New("x"))
	require.False(t, ok)
	require.Contains(t, nested.Error(), "fee reservation too low on a: missing 1")
	require.Equal(t, "converged", StateConverged.String())
}

func TestShortfallJoinedErrors(t *testing.T) {
	fatal := errors.New("hop unreachable")

	_, ok := Shortfall(errors.Join(fatal, tooExpensive("a", 2)))
	require.False(t, ok)
	_, ok = Shortfall(fmt.Errorf("estimate: %w", &AggregateError{Errs: []error{tooExpensive("a", 1), fatal}}))
	require.False(t, ok)

	missing, ok := Shortfall(fmt.Errorf("hop a: %w", tooExpensive("a", 5)))
	require.True(t, ok)
	require.Equal(t, uint64(5), missing.Uint64())

	missing, ok = Shortfall(errors.Join(tooExpensive("a", 1), tooExpensive("b", 2)))
	require.True(t, ok)
	require.Equal(t, uint64(3), missing.Uint64())
}

func TestConvergeJoinedFatalError(t *testing.T) {
	fatal := errors.New("hop unreachable")
	joined := errors.Join(fatal, tooExpensive("AssetHub", 4))
	target, est, build := setup(t, step{err: joined})
	engine := NewEngine(est, WithLogger(quietLogger()))

	_, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.ErrorIs(t, err, fatal)
	require.Equal(t, 1, est.calls)
	require.True(t, target.amount.IsZero())
}

func TestConvergeDryRunnerFromOptions(t *testing.T) {
	target, est, build := setup(t, step{fee: 3})
	own := &recordingDryRunner{}
	perCall := &recordingDryRunner{}
	engine := NewEngine(est, WithDryRunner(own), WithRequiredDryRun(true), WithLogger(quietLogger()))

	_, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{DryRunner: perCall})
	require.NoError(t, err)
	require.Len(t, perCall.calls, 1)
	require.Empty(t, own.calls)
}

func TestConvergeRequiredDryRunMissing(t *testing.T) {
	target, est, build := setup(t, step{fee: 3})
	engine := NewEngine(est, WithRequiredDryRun(true), WithLogger(quietLogger()))

	_, err := engine.Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.ErrorIs(t, err, ErrFinalDryRun)

	out, err := NewEngine(est, WithLogger(quietLogger())).Converge(context.Background(), target, extrinsic.AccountID{}, feeAssetID(t), build, EstimateOptions{})
	require.NoError(t, err)
	require.Equal(t, StateConverged, out.State)
}
