// Package extrinsic describes runtime calls independently of the metadata
// needed to encode them.
package extrinsic

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

var ErrInvalidAccountID = errors.New("invalid account id")

// AccountID is a 32 byte account, the origin of a transfer.
type AccountID [32]byte

// ParseAccountID decodes a 0x-prefixed 32 byte hex string.
func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidAccountID, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("%w: %d bytes", ErrInvalidAccountID, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (a AccountID) String() string { return "0x" + hex.EncodeToString(a[:]) }

// Call is a pallet call with SCALE encodable arguments.
type Call struct {
	Pallet string
	Method string
	Args   []any
}

// Name returns "Pallet.method", the form runtime metadata lookups use.
func (c Call) Name() string { return c.Pallet + "." + c.Method }

func (c Call) String() string { return c.Name() }

// Build resolves the call index from meta and encodes the arguments.
func (c Call) Build(meta *types.Metadata) (types.Call, error) {
	call, err := types.NewCall(meta, c.Name(), c.Args...)
	if err != nil {
		return types.Call{}, fmt.Errorf("build %s: %w", c.Name(), err)
	}
	return call, nil
}

// Encode returns the SCALE encoding of the built call.
func (c Call) Encode(meta *types.Metadata) ([]byte, error) {
	call, err := c.Build(meta)
	if err != nil {
		return nil, err
	}
	return codec.Encode(call)
}
