package xcm

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/holiman/uint256"
)

// AssetID identifies a class of assets by location.
type AssetID struct {
	Location Location
}

// NewAssetID wraps a location.
func NewAssetID(l Location) AssetID { return AssetID{Location: l} }

func (id AssetID) Equal(other AssetID) bool {
	return CompareAssetID(id, other) == 0
}

func (id AssetID) String() string { return id.Location.String() }

// Fungibility is Fungible or NonFungible.
type Fungibility interface {
	IsFungible() bool
	String() string
	fungibility()
}

// Fungible is a divisible quantity. Amount must fit in u128 on the wire.
type Fungible struct {
	Amount uint256.Int
}

// NonFungible is a single asset instance.
type NonFungible struct {
	Instance AssetInstance
}

func (Fungible) IsFungible() bool    { return true }
func (NonFungible) IsFungible() bool { return false }
func (Fungible) fungibility()        {}
func (NonFungible) fungibility()     {}

func (f Fungible) String() string    { return f.Amount.Dec() }
func (n NonFungible) String() string { return n.Instance.String() }

// InstanceKind enumerates AssetInstance variants.
type InstanceKind uint8

const (
	InstanceUndefined InstanceKind = iota
	InstanceIndex
	InstanceArray4
	InstanceArray8
	InstanceArray16
	InstanceArray32
	// InstanceBlob only exists in V2.
	InstanceBlob
)

var instanceNames = [...]string{"Undefined", "Index", "Array4", "Array8", "Array16", "Array32", "Blob"}

func (k InstanceKind) String() string {
	if int(k) < len(instanceNames) {
		return instanceNames[k]
	}
	return fmt.Sprintf("InstanceKind(%d)", uint8(k))
}

// arrayLen is the payload size of the fixed array kinds.
func (k InstanceKind) arrayLen() int {
	switch k {
	case InstanceArray4:
		return 4
	case InstanceArray8:
		return 8
	case InstanceArray16:
		return 16
	case InstanceArray32:
		return 32
	}
	return 0
}

// AssetInstance identifies one non-fungible instance. Data holds the array
// kinds left aligned; Blob holds the V2 blob payload.
type AssetInstance struct {
	Kind  InstanceKind
	Index uint256.Int
	Data  [32]byte
	Blob  string
}

// IndexInstance builds an Index instance.
func IndexInstance(i uint64) AssetInstance {
	a := AssetInstance{Kind: InstanceIndex}
	a.Index.SetUint64(i)
	return a
}

func (a AssetInstance) validate() error {
	want := AssetInstance{Kind: a.Kind}
	switch a.Kind {
	case InstanceUndefined:
	case InstanceIndex:
		if !fitsU128(&a.Index) {
			return fmt.Errorf("%w: instance index exceeds u128", ErrInvalidAsset)
		}
		want.Index = a.Index
	case InstanceArray4, InstanceArray8, InstanceArray16, InstanceArray32:
		copy(want.Data[:a.Kind.arrayLen()], a.Data[:a.Kind.arrayLen()])
	case InstanceBlob:
		want.Blob = a.Blob
	default:
		return fmt.Errorf("%w: unknown instance kind %d", ErrInvalidAsset, a.Kind)
	}
	if want != a {
		return fmt.Errorf("%w: instance %s carries unused payload", ErrInvalidAsset, a.Kind)
	}
	return nil
}

// CompareAssetInstance orders instances by kind, then payload.
func CompareAssetInstance(a, b AssetInstance) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := a.Index.Cmp(&b.Index); c != 0 {
		return c
	}
	if c := bytes.Compare(a.Data[:], b.Data[:]); c != 0 {
		return c
	}
	return cmp.Compare(a.Blob, b.Blob)
}

// Asset is an asset id with its fungibility.
type Asset struct {
	ID  AssetID
	Fun Fungibility
}

// NewFungible builds a fungible asset.
func NewFungible(id Location, amount uint256.Int) Asset {
	return Asset{ID: NewAssetID(id), Fun: Fungible{Amount: amount}}
}

// NewFungibleUint64 builds a fungible asset from a uint64 amount.
func NewFungibleUint64(id Location, amount uint64) Asset {
	return NewFungible(id, *uint256.NewInt(amount))
}

// NewNonFungible builds a non-fungible asset.
func NewNonFungible(id Location, instance AssetInstance) Asset {
	return Asset{ID: NewAssetID(id), Fun: NonFungible{Instance: instance}}
}

// Amount returns the fungible amount and true, or false for non-fungibles.
func (a Asset) Amount() (uint256.Int, bool) {
	f, ok := a.Fun.(Fungible)
	if !ok {
		return uint256.Int{}, false
	}
	return f.Amount, true
}

// Validate checks the id path and the fungibility payload.
func (a Asset) Validate() error {
	if err := a.ID.Location.Validate(); err != nil {
		return fmt.Errorf("asset id: %w", err)
	}
	switch f := a.Fun.(type) {
	case Fungible:
		if !fitsU128(&f.Amount) {
			return fmt.Errorf("%w: amount %s exceeds u128", ErrInvalidAsset, f.Amount.Dec())
		}
	case NonFungible:
		return f.Instance.validate()
	case nil:
		return fmt.Errorf("%w: missing fungibility for %s", ErrInvalidAsset, a.ID)
	}
	return nil
}

func (a Asset) checkVersion(v Version) error {
	if err := a.ID.Location.Interior.checkVersion(v); err != nil {
		return err
	}
	if nf, ok := a.Fun.(NonFungible); ok && v > V2 && nf.Instance.Kind == InstanceBlob {
		return unsupported("asset instance Blob", v)
	}
	return nil
}

func (a Asset) wireForm(v Version) Asset {
	return Asset{ID: AssetID{Location: a.ID.Location.wireForm(v)}, Fun: a.Fun}
}

// WithAmount returns a copy of a holding a new fungible amount.
func (a Asset) WithAmount(amount uint256.Int) Asset {
	return Asset{ID: a.ID, Fun: Fungible{Amount: amount}}
}
