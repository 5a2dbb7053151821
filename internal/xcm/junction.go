package xcm

import (
	"fmt"

	"github.com/holiman/uint256"
)

// JunctionKind enumerates junction variants. The declaration order is the
// canonical kind precedence used by CompareJunction.
type JunctionKind uint8

const (
	KindParachain JunctionKind = iota
	KindAccountID32
	KindAccountIndex64
	KindAccountKey20
	KindPalletInstance
	KindGeneralIndex
	KindGeneralKey
	KindOnlyChild
	KindPlurality
	KindGlobalConsensus
)

var junctionKindNames = [...]string{
	"Parachain", "AccountId32", "AccountIndex64", "AccountKey20", "PalletInstance",
	"GeneralIndex", "GeneralKey", "OnlyChild", "Plurality", "GlobalConsensus",
}

func (k JunctionKind) String() string {
	if int(k) < len(junctionKindNames) {
		return junctionKindNames[k]
	}
	return fmt.Sprintf("JunctionKind(%d)", uint8(k))
}

// Junction is one step of an interior path. The set of implementations is
// closed: Parachain, AccountID32, AccountIndex64, AccountKey20,
// PalletInstance, GeneralIndex, GeneralKey, OnlyChild, Plurality and
// GlobalConsensus. All of them are comparable value types.
type Junction interface {
	Kind() JunctionKind
	String() string

	validate() error
	checkVersion(v Version) error
}

type Parachain uint32

type AccountID32 struct {
	Network NetworkID
	ID      [32]byte
}

type AccountIndex64 struct {
	Network NetworkID
	Index   uint64
}

type AccountKey20 struct {
	Network NetworkID
	Key     [20]byte
}

type PalletInstance uint8

// GeneralIndex carries a u128 index.
type GeneralIndex struct {
	Index uint256.Int
}

// GeneralKey is an opaque key of Length significant bytes, zero padded.
type GeneralKey struct {
	Length uint8
	Data   [32]byte
}

type OnlyChild struct{}

type Plurality struct {
	ID   BodyID
	Part BodyPart
}

type GlobalConsensus struct {
	Network NetworkID
}

// NewGeneralIndex builds a GeneralIndex from a uint64.
func NewGeneralIndex(i uint64) GeneralIndex {
	var g GeneralIndex
	g.Index.SetUint64(i)
	return g
}

// NewGeneralKey pads key into a GeneralKey. Keys longer than 32 bytes fail.
func NewGeneralKey(key []byte) (GeneralKey, error) {
	if len(key) > 32 {
		return GeneralKey{}, fmt.Errorf("%w: general key of %d bytes exceeds 32", ErrInvalidJunction, len(key))
	}
	g := GeneralKey{Length: uint8(len(key))}
	copy(g.Data[:], key)
	return g, nil
}

// Bytes returns the significant bytes of the key.
func (g GeneralKey) Bytes() []byte {
	n := min(int(g.Length), len(g.Data))
	return g.Data[:n]
}

func (Parachain) Kind() JunctionKind       { return KindParachain }
func (AccountID32) Kind() JunctionKind     { return KindAccountID32 }
func (AccountIndex64) Kind() JunctionKind  { return KindAccountIndex64 }
func (AccountKey20) Kind() JunctionKind    { return KindAccountKey20 }
func (PalletInstance) Kind() JunctionKind  { return KindPalletInstance }
func (GeneralIndex) Kind() JunctionKind    { return KindGeneralIndex }
func (GeneralKey) Kind() JunctionKind      { return KindGeneralKey }
func (OnlyChild) Kind() JunctionKind       { return KindOnlyChild }
func (Plurality) Kind() JunctionKind       { return KindPlurality }
func (GlobalConsensus) Kind() JunctionKind { return KindGlobalConsensus }

func (Parachain) validate() error      { return nil }
func (PalletInstance) validate() error { return nil }
func (OnlyChild) validate() error      { return nil }

func (j AccountID32) validate() error    { return j.Network.validate() }
func (j AccountIndex64) validate() error { return j.Network.validate() }
func (j AccountKey20) validate() error   { return j.Network.validate() }

func (j GeneralIndex) validate() error {
	if !fitsU128(&j.Index) {
		return fmt.Errorf("%w: general index exceeds u128", ErrInvalidJunction)
	}
	return nil
}

func (j GeneralKey) validate() error {
	if j.Length > 32 {
		return fmt.Errorf("%w: general key length %d exceeds 32", ErrInvalidJunction, j.Length)
	}
	for _, b := range j.Data[j.Length:] {
		if b != 0 {
			return fmt.Errorf("%w: general key has non-zero padding", ErrInvalidJunction)
		}
	}
	return nil
}

func (j Plurality) validate() error {
	if err := j.ID.validate(); err != nil {
		return err
	}
	return j.Part.validate()
}

func (j GlobalConsensus) validate() error {
	if j.Network.IsAny() {
		return fmt.Errorf("%w: GlobalConsensus requires a network", ErrInvalidJunction)
	}
	return j.Network.validate()
}

func (Parachain) checkVersion(Version) error      { return nil }
func (PalletInstance) checkVersion(Version) error { return nil }
func (GeneralIndex) checkVersion(Version) error   { return nil }
func (GeneralKey) checkVersion(Version) error     { return nil }
func (OnlyChild) checkVersion(Version) error      { return nil }

func (j AccountID32) checkVersion(v Version) error    { return j.Network.checkVersion(v) }
func (j AccountIndex64) checkVersion(v Version) error { return j.Network.checkVersion(v) }
func (j AccountKey20) checkVersion(v Version) error   { return j.Network.checkVersion(v) }

func (j Plurality) checkVersion(v Version) error {
	if v > V2 && j.ID.Kind == BodyNamed {
		return unsupported("body Named", v)
	}
	return nil
}

func (j GlobalConsensus) checkVersion(v Version) error {
	if v == V2 {
		return unsupported("junction GlobalConsensus", v)
	}
	return j.Network.checkVersion(v)
}

var maxU128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

func fitsU128(x *uint256.Int) bool {
	return x.BitLen() <= 128
}

// MaxU128 returns 2^128-1.
func MaxU128() uint256.Int {
	return *maxU128
}
