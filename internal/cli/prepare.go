package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/LeJamon/goXCM/internal/amount"
	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/fees"
	"github.com/LeJamon/goXCM/internal/resolver"
	"github.com/LeJamon/goXCM/internal/transfer"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/spf13/cobra"
)

var (
	prepareFrom         string
	prepareFromLocation string
	prepareDest         string
	prepareBeneficiary  string
	prepareAssets       []string
	prepareFeeAsset     string
	prepareWeightLimit  string
	prepareVersion      string
	prepareRaw          bool
	prepareOnline       bool
	prepareCompose      bool
)

// prepareCmd represents the prepare command
var prepareCmd = &cobra.Command{
	Use:   "prepare <chain>",
	Short: "Prepare the parameters of a cross-chain transfer",
	Long: `Resolve every location of a transfer request on a chain, canonicalize the
assets and print the versioned parameters with their SCALE encodings.

Assets are given as SYMBOL=AMOUNT or LOCATION=AMOUNT, amounts in whole
currency units unless --raw is set. Non-fungible assets are given as
LOCATION#INSTANCE.

With --online the command connects to the chain, which is required for
--from-location, and reports the transfer call that would carry the
parameters. --compose also converges the fee reservation against the
chain's fee APIs and dry-runs the final call, as set in the [fees] section.

Examples:
    xcmd prepare hydration --from 0x... --dest assethub --beneficiary ./AccountId32(0x...) --asset USDT=10 --asset DOT=0.5 --fee-asset DOT
    xcmd prepare assethub --from-location ./PalletInstance(50) --dest hydration --beneficiary treasury --asset DOT=1 --fee-asset DOT --online
    xcmd prepare assethub --from 0x... --dest hydration --beneficiary treasury --asset DOT=1 --fee-asset DOT --online --compose`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().StringVar(&prepareFrom, "from", "", "origin account id (hex)")
	prepareCmd.Flags().StringVar(&prepareFromLocation, "from-location", "", "origin location lookup, converted to an account by the chain")
	prepareCmd.Flags().StringVar(&prepareDest, "dest", "", "destination location lookup")
	prepareCmd.Flags().StringVar(&prepareBeneficiary, "beneficiary", "", "beneficiary location lookup, as seen from the destination")
	prepareCmd.Flags().StringArrayVar(&prepareAssets, "asset", nil, "asset to transfer (repeatable)")
	prepareCmd.Flags().StringVar(&prepareFeeAsset, "fee-asset", "", "asset paying the fees, by symbol or location")
	prepareCmd.Flags().StringVar(&prepareWeightLimit, "weight-limit", "unlimited", `"unlimited" or "REF_TIME,PROOF_SIZE"`)
	prepareCmd.Flags().StringVar(&prepareVersion, "version", "", "XCM version (default: chain pin or xcm.default_version)")
	prepareCmd.Flags().BoolVar(&prepareRaw, "raw", false, "asset amounts are in base units")
	prepareCmd.Flags().BoolVar(&prepareOnline, "online", false, "connect to the chain")
	prepareCmd.Flags().BoolVar(&prepareCompose, "compose", false, "converge fees and compose the transfer call (requires --online)")

	prepareCmd.MarkFlagRequired("dest")
	prepareCmd.MarkFlagRequired("beneficiary")
	prepareCmd.MarkFlagRequired("fee-asset")
	prepareCmd.MarkFlagsMutuallyExclusive("from", "from-location")
	prepareCmd.MarkFlagsOneRequired("from", "from-location")
}

func runPrepare(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	chain, err := env.chain(args[0])
	if err != nil {
		return err
	}

	req, err := buildTransferParams()
	if err != nil {
		return err
	}

	version := chain.XcmVersion
	if prepareVersion != "" {
		if version, err = xcm.ParseVersion(prepareVersion); err != nil {
			return err
		}
	}
	if version == 0 {
		if version, err = env.cfg.GetDefaultVersion(); err != nil {
			return err
		}
	}

	cc := transfer.ChainContext{Resolver: resolver.New(env.reg, chain), Version: version}

	ctx, cancel := signalContext()
	defer cancel()

	if prepareCompose && !prepareOnline {
		return errors.New("--compose requires --online")
	}

	var backend transfer.Backend
	if prepareOnline {
		pool, err := env.newPool()
		if err != nil {
			return err
		}
		defer pool.Close()
		api, err := pool.Get(ctx, chain)
		if err != nil {
			return err
		}
		cc.Runtime = api
		if prepareCompose {
			composer := env.newComposer(chain, api)
			tx, err := composer.ComposeTransfer(ctx, cc, req, fees.EstimateOptions{Resolver: poolEstimators(pool)})
			if err != nil {
				return err
			}
			return printTransaction(cmd.OutOrStdout(), tx)
		}
		if backend, err = transfer.SelectBackend(ctx, api, env.primaryPallets(chain), env.cfg.Transfer.TokenPallets, env.logger); err != nil {
			return err
		}
	}

	prepared, err := transfer.PrepareTransferParams(ctx, cc, req)
	if err != nil {
		return err
	}
	if backend != nil {
		if err := backend.Check(prepared); err != nil {
			return err
		}
	}
	return printPrepared(cmd.OutOrStdout(), prepared, backend)
}

func printTransaction(out io.Writer, tx *transfer.Transaction) error {
	fee := tx.Params.Assets()[tx.Params.FeeAssetIndex()]
	fmt.Fprintf(out, "Call:        %s\n", tx.Backend)
	fmt.Fprintf(out, "Estimates:   %d\n", tx.Iterations)
	fmt.Fprintf(out, "Fee asset:   %s\n", fee)
	return printPrepared(out, tx.Params, nil)
}

func buildTransferParams() (transfer.TransferParams, error) {
	var req transfer.TransferParams
	var err error

	switch {
	case prepareFrom != "":
		id, err := extrinsic.ParseAccountID(prepareFrom)
		if err != nil {
			return req, err
		}
		req.Origin = transfer.AccountOrigin{ID: id}
	case prepareFromLocation != "":
		lookup, err := xcm.ParseLocationLookup(prepareFromLocation)
		if err != nil {
			return req, fmt.Errorf("--from-location: %w", err)
		}
		req.Origin = transfer.LocationOrigin{Lookup: lookup}
	}

	if req.Destination, err = xcm.ParseLocationLookup(prepareDest); err != nil {
		return req, fmt.Errorf("--dest: %w", err)
	}
	if req.Beneficiary, err = xcm.ParseLocationLookup(prepareBeneficiary); err != nil {
		return req, fmt.Errorf("--beneficiary: %w", err)
	}
	if req.FeeAsset, err = parseAssetIDLookup(prepareFeeAsset); err != nil {
		return req, fmt.Errorf("--fee-asset: %w", err)
	}
	for _, arg := range prepareAssets {
		asset, err := parseAssetLookup(arg, prepareRaw)
		if err != nil {
			return req, fmt.Errorf("--asset %s: %w", arg, err)
		}
		req.Assets = append(req.Assets, asset)
	}
	if req.WeightLimit, err = parseWeightLimit(prepareWeightLimit); err != nil {
		return req, fmt.Errorf("--weight-limit: %w", err)
	}
	return req, nil
}

// parseAssetIDLookup treats bare names as currency symbols and anything
// with location syntax as a location.
func parseAssetIDLookup(s string) (transfer.AssetIDLookup, error) {
	lookup, err := xcm.ParseLocationLookup(s)
	if err != nil {
		return transfer.AssetIDLookup{}, err
	}
	if name, ok := lookup.(xcm.NamedLocation); ok {
		return transfer.AssetIDLookup{Symbol: string(name)}, nil
	}
	return transfer.AssetIDLookup{Location: lookup}, nil
}

func parseAssetLookup(s string, raw bool) (transfer.AssetLookup, error) {
	if id, instance, ok := strings.Cut(s, "#"); ok {
		lookup, err := parseAssetIDLookup(id)
		if err != nil {
			return transfer.AssetLookup{}, err
		}
		inst, err := xcm.ParseAssetInstance(instance)
		if err != nil {
			return transfer.AssetLookup{}, err
		}
		return transfer.AssetLookup{ID: lookup, Instance: &inst}, nil
	}

	id, value, ok := strings.Cut(s, "=")
	if !ok {
		return transfer.AssetLookup{}, errors.New("expected ASSET=AMOUNT or ASSET#INSTANCE")
	}
	lookup, err := parseAssetIDLookup(id)
	if err != nil {
		return transfer.AssetLookup{}, err
	}
	if !raw {
		return transfer.AssetLookup{ID: lookup, Amount: value}, nil
	}
	v, err := amount.ParseRaw(value)
	if err != nil {
		return transfer.AssetLookup{}, err
	}
	return transfer.AssetLookup{ID: lookup, Raw: &v}, nil
}

func parseWeightLimit(s string) (xcm.WeightLimit, error) {
	if strings.EqualFold(s, "unlimited") || s == "" {
		return xcm.Unlimited(), nil
	}
	ref, proof, ok := strings.Cut(s, ",")
	if !ok {
		return xcm.WeightLimit{}, fmt.Errorf("invalid weight limit %q", s)
	}
	refTime, err := strconv.ParseUint(strings.TrimSpace(ref), 10, 64)
	if err != nil {
		return xcm.WeightLimit{}, fmt.Errorf("ref time: %w", err)
	}
	proofSize, err := strconv.ParseUint(strings.TrimSpace(proof), 10, 64)
	if err != nil {
		return xcm.WeightLimit{}, fmt.Errorf("proof size: %w", err)
	}
	return xcm.WeightLimit{Limited: true, RefTime: refTime, ProofSize: proofSize}, nil
}

func printPrepared(out io.Writer, p *transfer.PreparedTransferParams, backend transfer.Backend) error {
	dest, err := p.VersionedDestination()
	if err != nil {
		return err
	}
	beneficiary, err := p.VersionedBeneficiary()
	if err != nil {
		return err
	}
	assets, err := p.VersionedAssets()
	if err != nil {
		return err
	}
	feeID, err := p.VersionedFeeAssetID()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Origin:      %s\n", p.Origin)
	fmt.Fprintf(out, "Version:     %s\n", p.Version)
	fmt.Fprintf(out, "Destination: %s\n", p.Destination)
	fmt.Fprintf(out, "Beneficiary: %s\n", p.Beneficiary)
	for i, a := range p.Assets() {
		marker := ""
		if i == p.FeeAssetIndex() {
			marker = " (fee)"
		}
		fmt.Fprintf(out, "Asset %d:     %s%s\n", i, a, marker)
	}
	if backend != nil {
		fmt.Fprintf(out, "Call:        %s\n", backend.Name())
	}

	fmt.Fprintln(out, "SCALE:")
	for _, field := range []struct {
		name  string
		value any
	}{
		{"dest", dest},
		{"beneficiary", beneficiary},
		{"assets", assets},
		{"fee_asset_id", feeID},
		{"weight_limit", p.WeightLimit},
	} {
		encoded, err := codec.EncodeToHex(field.value)
		if errors.Is(err, xcm.ErrUnsupportedInVersion) {
			fmt.Fprintf(out, "  %-12s not encodable in %s\n", field.name, p.Version)
			continue
		}
		if err != nil {
			return fmt.Errorf("encode %s: %w", field.name, err)
		}
		fmt.Fprintf(out, "  %-12s %s\n", field.name, encoded)
	}
	return nil
}
