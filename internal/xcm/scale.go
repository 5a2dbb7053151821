package xcm

import (
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/holiman/uint256"
)

// SCALE encodings of the versioned wrappers. The variant byte of each
// wrapper is the version's wire index; the payload uses the layout of that
// version.

func compactUint(e scale.Encoder, v uint64) error {
	return e.EncodeUintCompact(*new(big.Int).SetUint64(v))
}

func compactU128(e scale.Encoder, v *uint256.Int) error {
	if !fitsU128(v) {
		return fmt.Errorf("%w: %s exceeds u128", ErrAmountOverflow, v.Dec())
	}
	return e.EncodeUintCompact(*v.ToBig())
}

func writeBytes(e scale.Encoder, b []byte) error {
	if err := compactUint(e, uint64(len(b))); err != nil {
		return err
	}
	return e.Write(b)
}

func encodeNetwork(e scale.Encoder, n NetworkID, v Version) error {
	if v == V2 {
		switch n.Kind {
		case NetworkAny:
			return e.PushByte(0)
		case NetworkNamed:
			if err := e.PushByte(1); err != nil {
				return err
			}
			return writeBytes(e, []byte(n.Name))
		case NetworkPolkadot:
			return e.PushByte(2)
		case NetworkKusama:
			return e.PushByte(3)
		}
		return unsupported("network "+n.Kind.String(), v)
	}
	switch n.Kind {
	case NetworkByGenesis:
		if err := e.PushByte(0); err != nil {
			return err
		}
		return e.Write(n.Hash[:])
	case NetworkByFork:
		if err := e.PushByte(1); err != nil {
			return err
		}
		if err := e.Encode(n.BlockNumber); err != nil {
			return err
		}
		return e.Write(n.Hash[:])
	case NetworkEthereum:
		if err := e.PushByte(7); err != nil {
			return err
		}
		return compactUint(e, n.ChainID)
	case NetworkAny, NetworkNamed:
		return unsupported("network "+n.Kind.String(), v)
	}
	// Polkadot=2 through PolkadotBulletin=10 follow the kind order.
	return e.PushByte(byte(n.Kind - NetworkPolkadot + 2))
}

// encodeOptionalNetwork writes the v3+ Option<NetworkId>, or the bare v2
// NetworkId where Any is itself a variant.
func encodeOptionalNetwork(e scale.Encoder, n NetworkID, v Version) error {
	if v == V2 {
		return encodeNetwork(e, n, v)
	}
	if n.IsAny() {
		return e.PushByte(0)
	}
	if err := e.PushByte(1); err != nil {
		return err
	}
	return encodeNetwork(e, n, v)
}

func encodeBody(e scale.Encoder, b BodyID, v Version) error {
	switch b.Kind {
	case BodyMoniker:
		if v == V2 {
			// V2 has no Moniker; a four byte name carries the same bytes.
			if err := e.PushByte(1); err != nil {
				return err
			}
			return writeBytes(e, b.Moniker[:])
		}
		if err := e.PushByte(1); err != nil {
			return err
		}
		return e.Write(b.Moniker[:])
	case BodyNamed:
		if v != V2 {
			return unsupported("body Named", v)
		}
		if err := e.PushByte(1); err != nil {
			return err
		}
		return writeBytes(e, []byte(b.Name))
	case BodyIndex:
		if err := e.PushByte(2); err != nil {
			return err
		}
		return compactUint(e, uint64(b.Index))
	}
	return e.PushByte(byte(b.Kind))
}

func encodeBodyPart(e scale.Encoder, p BodyPart) error {
	if err := e.PushByte(byte(p.Kind)); err != nil {
		return err
	}
	switch p.Kind {
	case PartMembers:
		return compactUint(e, uint64(p.Count))
	case PartFraction, PartAtLeastProportion, PartMoreThanProportion:
		if err := compactUint(e, uint64(p.Nom)); err != nil {
			return err
		}
		return compactUint(e, uint64(p.Denom))
	}
	return nil
}

func encodeJunction(e scale.Encoder, j Junction, v Version) error {
	if err := e.PushByte(byte(j.Kind())); err != nil {
		return err
	}
	switch j := j.(type) {
	case Parachain:
		return compactUint(e, uint64(j))
	case AccountID32:
		if err := encodeOptionalNetwork(e, j.Network, v); err != nil {
			return err
		}
		return e.Write(j.ID[:])
	case AccountIndex64:
		if err := encodeOptionalNetwork(e, j.Network, v); err != nil {
			return err
		}
		return compactUint(e, j.Index)
	case AccountKey20:
		if err := encodeOptionalNetwork(e, j.Network, v); err != nil {
			return err
		}
		return e.Write(j.Key[:])
	case PalletInstance:
		return e.PushByte(byte(j))
	case GeneralIndex:
		return compactU128(e, &j.Index)
	case GeneralKey:
		if v == V2 {
			return writeBytes(e, j.Bytes())
		}
		if err := e.PushByte(j.Length); err != nil {
			return err
		}
		return e.Write(j.Data[:])
	case OnlyChild:
		return nil
	case Plurality:
		if err := encodeBody(e, j.ID, v); err != nil {
			return err
		}
		return encodeBodyPart(e, j.Part)
	case GlobalConsensus:
		return encodeNetwork(e, j.Network, v)
	}
	return fmt.Errorf("%w: unexpected junction %T", ErrInvalidJunction, j)
}

func encodeLocation(e scale.Encoder, l Location, v Version) error {
	if err := e.PushByte(l.Parents); err != nil {
		return err
	}
	if err := e.PushByte(byte(len(l.Interior))); err != nil {
		return err
	}
	for _, j := range l.Interior {
		if err := encodeJunction(e, j, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeAssetID(e scale.Encoder, id AssetID, v Version) error {
	if v < V4 {
		// Concrete
		if err := e.PushByte(0); err != nil {
			return err
		}
	}
	return encodeLocation(e, id.Location, v)
}

func encodeInstance(e scale.Encoder, a AssetInstance) error {
	if err := e.PushByte(byte(a.Kind)); err != nil {
		return err
	}
	switch a.Kind {
	case InstanceIndex:
		return compactU128(e, &a.Index)
	case InstanceArray4, InstanceArray8, InstanceArray16, InstanceArray32:
		return e.Write(a.Data[:a.Kind.arrayLen()])
	case InstanceBlob:
		return writeBytes(e, []byte(a.Blob))
	}
	return nil
}

func encodeAsset(e scale.Encoder, a Asset, v Version) error {
	if err := encodeAssetID(e, a.ID, v); err != nil {
		return err
	}
	switch f := a.Fun.(type) {
	case Fungible:
		if err := e.PushByte(0); err != nil {
			return err
		}
		return compactU128(e, &f.Amount)
	case NonFungible:
		if err := e.PushByte(1); err != nil {
			return err
		}
		return encodeInstance(e, f.Instance)
	}
	return fmt.Errorf("%w: missing fungibility", ErrInvalidAsset)
}

// Encode implements scale.Encodeable.
func (v VersionedLocation) Encode(e scale.Encoder) error {
	if err := e.PushByte(v.version.wireIndex()); err != nil {
		return err
	}
	return encodeLocation(e, v.location, v.version)
}

// Encode implements scale.Encodeable.
func (v VersionedAssetID) Encode(e scale.Encoder) error {
	if v.version == V2 {
		// VersionedAssetId starts at V3.
		return unsupported("versioned asset id", v.version)
	}
	if err := e.PushByte(v.version.wireIndex()); err != nil {
		return err
	}
	return encodeAssetID(e, v.id, v.version)
}

// Encode implements scale.Encodeable.
func (v VersionedAsset) Encode(e scale.Encoder) error {
	if err := e.PushByte(v.version.wireIndex()); err != nil {
		return err
	}
	return encodeAsset(e, v.asset, v.version)
}

// Encode implements scale.Encodeable.
func (v VersionedAssets) Encode(e scale.Encoder) error {
	if err := e.PushByte(v.version.wireIndex()); err != nil {
		return err
	}
	if err := compactUint(e, uint64(len(v.assets))); err != nil {
		return err
	}
	for _, a := range v.assets {
		if err := encodeAsset(e, a, v.version); err != nil {
			return err
		}
	}
	return nil
}

// Encode implements scale.Encodeable.
func (w WeightLimit) Encode(e scale.Encoder) error {
	if !w.Limited {
		return e.PushByte(0)
	}
	if err := e.PushByte(1); err != nil {
		return err
	}
	if err := compactUint(e, w.RefTime); err != nil {
		return err
	}
	return compactUint(e, w.ProofSize)
}

// EncodeToHex returns the 0x-prefixed SCALE encoding of any encodable value.
func EncodeToHex(value scale.Encodeable) (string, error) {
	return codec.EncodeToHex(value)
}
