package transfer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"testing"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/fees"
	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/LeJamon/goXCM/internal/resolver"
	"github.com/LeJamon/goXCM/internal/transport"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	polkadot    = xcm.GlobalConsensus{Network: xcm.Polkadot()}
	assetHubLoc = xcm.NewInterior(polkadot, xcm.Parachain(1000))
	hydraLoc    = xcm.NewInterior(polkadot, xcm.Parachain(2034))
	usdtLocal   = xcm.NewLocation(0, xcm.PalletInstance(50), xcm.NewGeneralIndex(1984))
	alice       = xcm.NewLocation(0, xcm.AccountID32{ID: [32]byte{0xa1}})
)

// ChainAPI is the node-backed Runtime and DryRunner.
var (
	_ Runtime        = (*transport.ChainAPI)(nil)
	_ fees.DryRunner = (*transport.ChainAPI)(nil)
)

func testResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	assetHub, err := registry.NewChainInfo("asset-hub-polkadot", "AssetHubPolkadot", assetHubLoc, nil, nil)
	require.NoError(t, err)
	hydration, err := registry.NewChainInfo("hydration", "Hydration", hydraLoc, nil, map[string]xcm.Location{
		"treasury": xcm.NewLocation(0, xcm.AccountID32{ID: [32]byte{0x07}}),
	})
	require.NoError(t, err)
	reg, err := registry.New([]*registry.ChainInfo{assetHub, hydration}, []registry.CurrencyInfo{
		{Symbol: "DOT", Decimals: 10, UniversalLocation: xcm.NewInterior(polkadot)},
		{Symbol: "USDT", Decimals: 6, UniversalLocation: assetHubLoc.Append(xcm.PalletInstance(50), xcm.NewGeneralIndex(1984))},
	}, map[string]xcm.Interior{"polkadot": xcm.NewInterior(polkadot)})
	require.NoError(t, err)
	return resolver.New(reg, assetHub)
}

func baseParams() TransferParams {
	return TransferParams{
		Origin:      AccountOrigin{ID: extrinsic.AccountID{1}},
		Destination: xcm.NamedLocation("hydration"),
		Beneficiary: xcm.RelativeLookup{Location: alice},
		Assets: []AssetLookup{
			{ID: AssetIDLookup{Symbol: "USDT"}, Amount: "1.5"},
			{ID: AssetIDLookup{Symbol: "DOT"}, Amount: "0.1"},
		},
		FeeAsset:    AssetIDLookup{Symbol: "DOT"},
		WeightLimit: xcm.Unlimited(),
	}
}

func chainContext(t *testing.T, rt Runtime) ChainContext {
	return ChainContext{Resolver: testResolver(t), Runtime: rt, Version: xcm.V4}
}

func TestPrepareTransferParams(t *testing.T) {
	p, err := PrepareTransferParams(context.Background(), chainContext(t, nil), baseParams())
	require.NoError(t, err)

	require.Equal(t, extrinsic.AccountID{1}, p.Origin)
	require.True(t, p.Destination.Equal(xcm.NewLocation(1, xcm.Parachain(2034))), p.Destination.String())
	require.True(t, p.Beneficiary.Equal(alice))
	require.True(t, p.FeeAssetID.Location.Equal(xcm.ParentLocation()))

	assets := p.Assets()
	require.Len(t, assets, 2)
	require.True(t, assets[0].ID.Location.Equal(usdtLocal))
	require.Equal(t, 1, p.FeeAssetIndex())

	usdt, _ := assets[0].Amount()
	require.Equal(t, uint64(1500000), usdt.Uint64())
	fee := p.FeeAmount()
	require.Equal(t, uint64(1000000000), fee.Uint64())
}

func TestPrepareMergesDuplicateAssets(t *testing.T) {
	params := baseParams()
	params.Assets = append(params.Assets,
		AssetLookup{ID: AssetIDLookup{Location: xcm.RelativeLookup{Location: xcm.ParentLocation()}}, Raw: uint256.NewInt(5)},
		AssetLookup{ID: AssetIDLookup{Location: xcm.NamedLocation("polkadot")}, Amount: "1"},
	)
	p, err := PrepareTransferParams(context.Background(), chainContext(t, nil), params)
	require.NoError(t, err)
	require.Len(t, p.Assets(), 2)
	fee := p.FeeAmount()
	require.Equal(t, uint64(1000000000+5+10000000000), fee.Uint64())
}

func TestPrepareFeeAssetNotInTransfer(t *testing.T) {
	params := baseParams()
	params.Assets = params.Assets[:1]
	_, err := PrepareTransferParams(context.Background(), chainContext(t, nil), params)
	require.ErrorIs(t, err, ErrFeeAssetNotInTransfer)
	require.Contains(t, err.Error(), "fee asset not part of the transfer")
}

func TestPrepareFeeAssetNonFungible(t *testing.T) {
	params := baseParams()
	inst := xcm.IndexInstance(1)
	params.Assets = []AssetLookup{{ID: AssetIDLookup{Symbol: "DOT"}, Instance: &inst}}
	_, err := PrepareTransferParams(context.Background(), chainContext(t, nil), params)
	require.ErrorIs(t, err, ErrFeeAssetNotFungible)
}

func TestPrepareValidationHappensFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)

	tests := []struct {
		name   string
		mutate func(p *TransferParams)
		err    error
	}{
		{"no assets", func(p *TransferParams) { p.Assets = nil }, ErrInvalidRequest},
		{"no origin", func(p *TransferParams) { p.Origin = nil }, ErrInvalidRequest},
		{"bad amount", func(p *TransferParams) { p.Assets[0].Amount = "023" }, nil},
		{"amount and raw", func(p *TransferParams) { p.Assets[0].Raw = uint256.NewInt(1) }, ErrInvalidRequest},
		{"empty fee asset", func(p *TransferParams) { p.FeeAsset = AssetIDLookup{} }, ErrInvalidRequest},
		{"nil destination", func(p *TransferParams) { p.Destination = nil }, xcm.ErrInvalidLookup},
		{"malformed beneficiary", func(p *TransferParams) {
			p.Beneficiary = xcm.InteriorLookup{Interior: xcm.Interior{xcm.GlobalConsensus{}}}
		}, xcm.ErrInvalidJunction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := baseParams()
			params.Origin = LocationOrigin{Lookup: xcm.NamedLocation("polkadot")}
			tc.mutate(&params)
			_, err := PrepareTransferParams(context.Background(), chainContext(t, rt), params)
			require.Error(t, err)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestPrepareLocationOrigin(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	rt.EXPECT().LocationToAccount(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, loc xcm.VersionedLocation) (extrinsic.AccountID, error) {
			require.Equal(t, xcm.V4, loc.Version())
			require.True(t, loc.Location().Equal(xcm.ParentLocation()))
			return extrinsic.AccountID{0xbb}, nil
		})

	params := baseParams()
	params.Origin = LocationOrigin{Lookup: xcm.NamedLocation("polkadot")}
	p, err := PrepareTransferParams(context.Background(), chainContext(t, rt), params)
	require.NoError(t, err)
	require.Equal(t, extrinsic.AccountID{0xbb}, p.Origin)
}

func TestPrepareLocationOriginUnsupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	rt.EXPECT().ChainName().Return("AssetHubPolkadot").AnyTimes()
	rt.EXPECT().LocationToAccount(gomock.Any(), gomock.Any()).
		Return(extrinsic.AccountID{}, fmt.Errorf("%w: LocationToAccountApi_convert_location", transport.ErrFeatureNotSupported))

	params := baseParams()
	params.Origin = LocationOrigin{Lookup: xcm.NamedLocation("polkadot")}
	_, err := PrepareTransferParams(context.Background(), chainContext(t, rt), params)
	require.ErrorIs(t, err, ErrCapabilityUnsupported)
	require.ErrorIs(t, err, transport.ErrFeatureNotSupported)
	require.Contains(t, err.Error(), "AssetHubPolkadot")
}

func TestPrepareBeneficiaryInDestinationContext(t *testing.T) {
	params := baseParams()
	params.Beneficiary = xcm.NamedLocation("treasury")
	p, err := PrepareTransferParams(context.Background(), chainContext(t, nil), params)
	require.NoError(t, err)
	require.True(t, p.Beneficiary.Equal(xcm.NewLocation(0, xcm.AccountID32{ID: [32]byte{0x07}})))

	params.Beneficiary = xcm.NamedLocation("nowhere")
	_, err = PrepareTransferParams(context.Background(), chainContext(t, nil), params)
	require.ErrorIs(t, err, resolver.ErrUnknownNamedLocation)
}

func TestAddFeeAmount(t *testing.T) {
	p, err := PrepareTransferParams(context.Background(), chainContext(t, nil), baseParams())
	require.NoError(t, err)
	before := p.Assets()

	require.NoError(t, p.AddFeeAmount(*uint256.NewInt(7)))
	after := p.Assets()
	require.Equal(t, 1, p.FeeAssetIndex())
	require.Equal(t, before[0], after[0])
	fee := p.FeeAmount()
	require.Equal(t, uint64(1000000007), fee.Uint64())

	err = p.AddFeeAmount(xcm.MaxU128())
	require.ErrorIs(t, err, xcm.ErrAmountOverflow)

	encoded, err := p.VersionedAssets()
	require.NoError(t, err)
	require.Equal(t, after, encoded.Assets())
}

func TestSelectBackend(t *testing.T) {
	logs := &bytes.Buffer{}
	logger := log.New(logs, "", 0)

	t.Run("primary", func(t *testing.T) {
		rt := NewMockRuntime(gomock.NewController(t))
		rt.EXPECT().HasCall(gomock.Any(), "PolkadotXcm", TransferAssetsMethod).Return(true, nil)
		b, err := SelectBackend(context.Background(), rt, DefaultPrimaryPallets, DefaultTokenPallets, logger)
		require.NoError(t, err)
		require.Equal(t, PalletBackend{Pallet: "PolkadotXcm"}, b)
	})

	t.Run("relay pallet", func(t *testing.T) {
		rt := NewMockRuntime(gomock.NewController(t))
		rt.EXPECT().HasCall(gomock.Any(), "PolkadotXcm", TransferAssetsMethod).Return(false, nil)
		rt.EXPECT().HasCall(gomock.Any(), "XcmPallet", TransferAssetsMethod).Return(true, nil)
		b, err := SelectBackend(context.Background(), rt, DefaultPrimaryPallets, DefaultTokenPallets, logger)
		require.NoError(t, err)
		require.Equal(t, "XcmPallet.transfer_assets", b.Name())
	})

	t.Run("token fallback", func(t *testing.T) {
		rt := NewMockRuntime(gomock.NewController(t))
		rt.EXPECT().HasCall(gomock.Any(), gomock.Any(), TransferAssetsMethod).Return(false, nil).Times(2)
		rt.EXPECT().Pallets(gomock.Any()).Return([]string{"System", "Balances", "XTokens"}, nil)
		rt.EXPECT().ChainName().Return("Acala").AnyTimes()
		b, err := SelectBackend(context.Background(), rt, DefaultPrimaryPallets, DefaultTokenPallets, logger)
		require.NoError(t, err)
		require.Equal(t, TokensBackend{Pallet: "XTokens"}, b)
		require.Contains(t, logs.String(), "falling back to XTokens.transfer_multiassets")
	})

	t.Run("none", func(t *testing.T) {
		rt := NewMockRuntime(gomock.NewController(t))
		rt.EXPECT().HasCall(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
		rt.EXPECT().Pallets(gomock.Any()).Return([]string{"System"}, nil)
		rt.EXPECT().ChainName().Return("Moonbeam").AnyTimes()
		_, err := SelectBackend(context.Background(), rt, DefaultPrimaryPallets, DefaultTokenPallets, logger)
		require.ErrorIs(t, err, ErrNoTransferBackend)
		require.Contains(t, err.Error(), "Moonbeam")
	})
}

func TestPalletBackendBuildCall(t *testing.T) {
	p, err := PrepareTransferParams(context.Background(), chainContext(t, nil), baseParams())
	require.NoError(t, err)

	call, err := PalletBackend{Pallet: "PolkadotXcm"}.BuildCall(p)
	require.NoError(t, err)
	require.Equal(t, "PolkadotXcm.transfer_assets", call.Name())
	require.Len(t, call.Args, 5)

	dest := call.Args[0].(xcm.VersionedLocation)
	require.True(t, dest.Location().Equal(p.Destination))
	assets := call.Args[2].(xcm.VersionedAssets)
	require.Equal(t, 2, assets.Len())
}

func TestTokensBackend(t *testing.T) {
	p, err := PrepareTransferParams(context.Background(), chainContext(t, nil), baseParams())
	require.NoError(t, err)

	b := TokensBackend{Pallet: "XTokens"}
	call, err := b.BuildCall(p)
	require.NoError(t, err)
	require.Equal(t, "XTokens.transfer_multiassets", call.Name())

	dest := call.Args[2].(xcm.VersionedLocation)
	want := xcm.NewLocation(1, xcm.Parachain(2034), xcm.AccountID32{ID: [32]byte{0xa1}})
	require.True(t, dest.Location().Equal(want), dest.Location().String())

	params := baseParams()
	params.Beneficiary = xcm.RelativeLookup{Location: xcm.NewLocation(1, xcm.AccountID32{ID: [32]byte{1}})}
	p, err = PrepareTransferParams(context.Background(), chainContext(t, nil), params)
	require.NoError(t, err)
	require.ErrorIs(t, b.Check(p), ErrBeneficiaryNotInterior)
	_, err = b.BuildCall(p)
	require.ErrorIs(t, err, ErrBeneficiaryNotInterior)
}

type shortfallEstimator struct {
	missing []uint64
	calls   int
}

func (s *shortfallEstimator) EstimateExtrinsicFees(context.Context, extrinsic.AccountID, extrinsic.Call, xcm.VersionedAssetID, fees.EstimateOptions) (uint256.Int, error) {
	m := s.missing[s.calls]
	s.calls++
	return uint256.Int{}, &fees.TooExpensiveError{Chain: "Hydration", Missing: *uint256.NewInt(m)}
}

func TestComposeTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	rt.EXPECT().HasCall(gomock.Any(), "PolkadotXcm", TransferAssetsMethod).Return(true, nil)

	est := &shortfallEstimator{missing: []uint64{3, 2, 0}}
	quiet := log.New(&bytes.Buffer{}, "", 0)
	composer := NewComposer(fees.NewEngine(est, fees.WithLogger(quiet)), WithLogger(quiet))

	tx, err := composer.ComposeTransfer(context.Background(), chainContext(t, rt), baseParams(), fees.EstimateOptions{})
	require.NoError(t, err)
	require.Equal(t, "PolkadotXcm.transfer_assets", tx.Backend)
	require.Equal(t, 3, tx.Iterations)
	fee := tx.Params.FeeAmount()
	require.Equal(t, uint64(1000000005), fee.Uint64())

	assets := tx.Call.Args[2].(xcm.VersionedAssets).Assets()
	amount, _ := assets[tx.Params.FeeAssetIndex()].Amount()
	require.Equal(t, uint64(1000000005), amount.Uint64())
}

func TestComposeTransferTokensBeneficiary(t *testing.T) {
	ctrl := gomock.NewController(t)
	rt := NewMockRuntime(ctrl)
	rt.EXPECT().HasCall(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
	rt.EXPECT().Pallets(gomock.Any()).Return([]string{"xTokens"}, nil)
	rt.EXPECT().ChainName().Return("Bifrost").AnyTimes()

	params := baseParams()
	params.Beneficiary = xcm.RelativeLookup{Location: xcm.NewLocation(1, xcm.AccountID32{ID: [32]byte{1}})}
	composer := NewComposer(fees.NewEngine(&shortfallEstimator{}), WithLogger(log.New(&bytes.Buffer{}, "", 0)))

	_, err := composer.ComposeTransfer(context.Background(), chainContext(t, rt), params, fees.EstimateOptions{})
	require.ErrorIs(t, err, ErrBeneficiaryNotInterior)
}

func TestComposeTransferWithoutRuntime(t *testing.T) {
	est := &shortfallEstimator{}
	composer := NewComposer(fees.NewEngine(est), WithLogger(log.New(&bytes.Buffer{}, "", 0)))

	_, err := composer.ComposeTransfer(context.Background(), chainContext(t, nil), baseParams(), fees.EstimateOptions{})
	require.ErrorIs(t, err, ErrCapabilityUnsupported)
	require.Zero(t, est.calls)
}

// dryRunRuntime is a Runtime that can also dry-run calls.
type dryRunRuntime struct {
	*MockRuntime
	dryRuns []extrinsic.Call
}

func (d *dryRunRuntime) DryRun(_ context.Context, _ extrinsic.AccountID, call extrinsic.Call) error {
	d.dryRuns = append(d.dryRuns, call)
	return nil
}

func TestComposeTransferDryRunsOnRuntime(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockRuntime(ctrl)
	mock.EXPECT().HasCall(gomock.Any(), "PolkadotXcm", TransferAssetsMethod).Return(true, nil).AnyTimes()
	quiet := log.New(&bytes.Buffer{}, "", 0)

	rt := &dryRunRuntime{MockRuntime: mock}
	engine := fees.NewEngine(&shortfallEstimator{missing: []uint64{0}}, fees.WithRequiredDryRun(true), fees.WithLogger(quiet))
	tx, err := NewComposer(engine, WithLogger(quiet)).ComposeTransfer(context.Background(), chainContext(t, rt), baseParams(), fees.EstimateOptions{})
	require.NoError(t, err)
	require.Len(t, rt.dryRuns, 1)
	require.Equal(t, tx.Call.Name(), rt.dryRuns[0].Name())

	// a runtime without dry runs cannot satisfy a required final dry run
	engine = fees.NewEngine(&shortfallEstimator{missing: []uint64{0}}, fees.WithRequiredDryRun(true), fees.WithLogger(quiet))
	_, err = NewComposer(engine, WithLogger(quiet)).ComposeTransfer(context.Background(), chainContext(t, mock), baseParams(), fees.EstimateOptions{})
	require.ErrorIs(t, err, fees.ErrFinalDryRun)
}
