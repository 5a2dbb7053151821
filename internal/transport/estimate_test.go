package transport

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/fees"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fees.Estimator = (*ChainAPI)(nil)

// decodedMetadata runs the fixture through the codec so call lookups work.
func decodedMetadata(t *testing.T) *types.Metadata {
	t.Helper()
	raw, err := codec.Encode(testMetadata())
	require.NoError(t, err)
	var meta types.Metadata
	require.NoError(t, codec.Decode(raw, &meta))
	return &meta
}

func feeResult(t *testing.T, fee int64) string {
	t.Helper()
	raw, err := codec.Encode(types.NewU128(*big.NewInt(fee)))
	require.NoError(t, err)
	return codec.HexEncodeToString(append([]byte{0}, raw...))
}

func TestChainAPIEstimateExtrinsicFees(t *testing.T) {
	info, err := codec.EncodeToHex(dispatchInfo{
		Weight:     weight{RefTime: types.NewUCompactFromUInt(1_000_000), ProofSize: types.NewUCompactFromUInt(4096)},
		PartialFee: types.NewU128(*big.NewInt(99)),
	})
	require.NoError(t, err)
	result := feeResult(t, 12345)

	var methods, feeArgs []string
	api := newTestChainAPI(t, map[string]rpcHandler{
		"state_call": func(params []json.RawMessage) (any, *RPCError) {
			var method, args string
			_ = json.Unmarshal(params[0], &method)
			_ = json.Unmarshal(params[1], &args)
			methods = append(methods, method)
			switch method {
			case queryCallInfoAPI:
				return info, nil
			case weightToAssetFeeAPI:
				feeArgs = append(feeArgs, args)
				return result, nil
			}
			return nil, &RPCError{Code: 1002, Message: "Execution failed", Data: json.RawMessage(`"method not found"`)}
		},
	}, decodedMetadata(t))

	feeAsset, err := xcm.ConvertAssetIDVersion(xcm.V4, xcm.NewAssetID(xcm.ParentLocation()))
	require.NoError(t, err)
	call := extrinsic.Call{Pallet: "PolkadotXcm", Method: "transfer_assets", Args: []any{types.U8(1)}}

	fee, err := api.EstimateExtrinsicFees(context.Background(), extrinsic.AccountID{}, call, feeAsset, fees.EstimateOptions{})
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), fee.Uint64())
	assert.Equal(t, []string{queryCallInfoAPI, weightToAssetFeeAPI}, methods)

	assetHex, err := codec.EncodeToHex(feeAsset)
	require.NoError(t, err)
	require.Len(t, feeArgs, 1)
	assert.True(t, strings.HasSuffix(feeArgs[0], strings.TrimPrefix(assetHex, "0x")), feeArgs[0])
}

func TestChainAPIEstimateUnknownAsset(t *testing.T) {
	info, err := codec.EncodeToHex(dispatchInfo{PartialFee: types.NewU128(*big.NewInt(1))})
	require.NoError(t, err)
	api := newTestChainAPI(t, map[string]rpcHandler{
		"state_call": func(params []json.RawMessage) (any, *RPCError) {
			var method string
			_ = json.Unmarshal(params[0], &method)
			if method == queryCallInfoAPI {
				return info, nil
			}
			return "0x0104", nil
		},
	}, decodedMetadata(t))

	feeAsset, err := xcm.ConvertAssetIDVersion(xcm.V4, xcm.NewAssetID(xcm.NewLocation(0, xcm.PalletInstance(50))))
	require.NoError(t, err)
	call := extrinsic.Call{Pallet: "PolkadotXcm", Method: "transfer_assets"}

	_, err = api.EstimateExtrinsicFees(context.Background(), extrinsic.AccountID{}, call, feeAsset, fees.EstimateOptions{})
	require.ErrorIs(t, err, ErrFeeNotComputable)
	assert.Contains(t, err.Error(), "asset not found")
	_, shortfall := fees.Shortfall(err)
	assert.False(t, shortfall)
}

func TestDecodeAssetFeeResult(t *testing.T) {
	raw, err := codec.HexDecodeString(feeResult(t, 7))
	require.NoError(t, err)
	fee, err := decodeAssetFeeResult(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), fee.Uint64())

	for name, out := range map[string][]byte{
		"empty":     nil,
		"short":     {0, 1, 2},
		"unknown":   {1, 42},
		"bad tag":   {2},
		"versioned": {1, 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeAssetFeeResult(out)
			require.ErrorIs(t, err, ErrFeeNotComputable)
		})
	}
}
