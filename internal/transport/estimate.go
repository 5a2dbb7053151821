package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/fees"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/holiman/uint256"
)

const (
	queryCallInfoAPI    = "TransactionPaymentCallApi_query_call_info"
	weightToAssetFeeAPI = "XcmPaymentApi_query_weight_to_asset_fee"
)

var ErrFeeNotComputable = errors.New("fee not computable")

// XcmPaymentApiError variants, by index.
var paymentAPIErrors = [...]string{
	"unimplemented",
	"versioned conversion failed",
	"weight not computable",
	"unhandled xcm version",
	"asset not found",
	"unroutable",
}

type weight struct {
	RefTime   types.UCompact
	ProofSize types.UCompact
}

// dispatchInfo is RuntimeDispatchInfo as returned by query_call_info.
type dispatchInfo struct {
	Weight     weight
	Class      types.U8
	PartialFee types.U128
}

// EstimateExtrinsicFees prices the execution of call on this chain in
// feeAsset. The call's weight comes from TransactionPaymentCallApi and is
// converted by XcmPaymentApi, so any asset the chain accepts for fees can
// pay. The result is a concrete fee, never a shortfall.
func (a *ChainAPI) EstimateExtrinsicFees(ctx context.Context, _ extrinsic.AccountID, call extrinsic.Call, feeAsset xcm.VersionedAssetID, _ fees.EstimateOptions) (uint256.Int, error) {
	meta, err := a.Metadata(ctx)
	if err != nil {
		return uint256.Int{}, err
	}
	encoded, err := call.Encode(meta)
	if err != nil {
		return uint256.Int{}, err
	}
	args := binary.LittleEndian.AppendUint32(slices.Clone(encoded), uint32(len(encoded)))
	out, err := a.StateCall(ctx, queryCallInfoAPI, args)
	if err != nil {
		return uint256.Int{}, err
	}
	var info dispatchInfo
	if err := codec.Decode(out, &info); err != nil {
		return uint256.Int{}, fmt.Errorf("decode dispatch info of %s: %w", call.Name(), err)
	}

	args, err = codec.Encode(info.Weight)
	if err != nil {
		return uint256.Int{}, err
	}
	asset, err := codec.Encode(feeAsset)
	if err != nil {
		return uint256.Int{}, err
	}
	out, err = a.StateCall(ctx, weightToAssetFeeAPI, append(args, asset...))
	if err != nil {
		return uint256.Int{}, err
	}
	fee, err := decodeAssetFeeResult(out)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%s on %s: %w", call.Name(), a.chain, err)
	}
	a.logger.Printf("Estimated %s on %s at %s", call.Name(), a.chain, fee.Dec())
	return fee, nil
}

func decodeAssetFeeResult(out []byte) (uint256.Int, error) {
	switch {
	case len(out) == 0:
		return uint256.Int{}, fmt.Errorf("%w: empty result", ErrFeeNotComputable)
	case out[0] == 1:
		reason := "unknown error"
		if len(out) > 1 && int(out[1]) < len(paymentAPIErrors) {
			reason = paymentAPIErrors[out[1]]
		}
		return uint256.Int{}, fmt.Errorf("%w: %s", ErrFeeNotComputable, reason)
	case out[0] != 0 || len(out) != 17:
		return uint256.Int{}, fmt.Errorf("%w: malformed result", ErrFeeNotComputable)
	}
	var fee types.U128
	if err := codec.Decode(out[1:], &fee); err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %w", ErrFeeNotComputable, err)
	}
	v, overflow := uint256.FromBig(fee.Int)
	if overflow {
		return uint256.Int{}, fmt.Errorf("%w: fee overflows", ErrFeeNotComputable)
	}
	return *v, nil
}
