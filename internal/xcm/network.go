package xcm

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
)

// NetworkKind enumerates NetworkID variants in canonical precedence order.
// NetworkAny is the absent network and sorts first.
type NetworkKind uint8

const (
	NetworkAny NetworkKind = iota
	NetworkByGenesis
	NetworkByFork
	NetworkPolkadot
	NetworkKusama
	NetworkWestend
	NetworkRococo
	NetworkWococo
	NetworkEthereum
	NetworkBitcoinCore
	NetworkBitcoinCash
	NetworkPolkadotBulletin
	// NetworkNamed only exists in V2.
	NetworkNamed
)

var networkNames = map[NetworkKind]string{
	NetworkAny:              "Any",
	NetworkByGenesis:        "ByGenesis",
	NetworkByFork:           "ByFork",
	NetworkPolkadot:         "Polkadot",
	NetworkKusama:           "Kusama",
	NetworkWestend:          "Westend",
	NetworkRococo:           "Rococo",
	NetworkWococo:           "Wococo",
	NetworkEthereum:         "Ethereum",
	NetworkBitcoinCore:      "BitcoinCore",
	NetworkBitcoinCash:      "BitcoinCash",
	NetworkPolkadotBulletin: "PolkadotBulletin",
	NetworkNamed:            "Named",
}

func (k NetworkKind) String() string {
	if name, ok := networkNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NetworkKind(%d)", uint8(k))
}

// NetworkID identifies a consensus system. Only the fields relevant to Kind
// are set; the zero value is NetworkAny.
type NetworkID struct {
	Kind NetworkKind
	// Hash is the genesis hash for ByGenesis and the block hash for ByFork.
	Hash        [32]byte
	BlockNumber uint64
	ChainID     uint64
	Name        string
}

func Polkadot() NetworkID { return NetworkID{Kind: NetworkPolkadot} }
func Kusama() NetworkID   { return NetworkID{Kind: NetworkKusama} }

func Ethereum(chainID uint64) NetworkID {
	return NetworkID{Kind: NetworkEthereum, ChainID: chainID}
}

func ByGenesis(hash [32]byte) NetworkID {
	return NetworkID{Kind: NetworkByGenesis, Hash: hash}
}

func ByFork(block uint64, hash [32]byte) NetworkID {
	return NetworkID{Kind: NetworkByFork, BlockNumber: block, Hash: hash}
}

// IsAny reports whether the network is absent.
func (n NetworkID) IsAny() bool { return n.Kind == NetworkAny }

func (n NetworkID) validate() error {
	if n.Kind > NetworkNamed {
		return fmt.Errorf("%w: unknown network kind %d", ErrInvalidJunction, n.Kind)
	}
	var zero NetworkID
	zero.Kind = n.Kind
	switch n.Kind {
	case NetworkByGenesis:
		zero.Hash = n.Hash
	case NetworkByFork:
		zero.Hash, zero.BlockNumber = n.Hash, n.BlockNumber
	case NetworkEthereum:
		zero.ChainID = n.ChainID
	case NetworkNamed:
		if n.Name == "" || len(n.Name) > 32 {
			return fmt.Errorf("%w: named network must be 1..32 bytes", ErrInvalidJunction)
		}
		zero.Name = n.Name
	}
	if zero != n {
		return fmt.Errorf("%w: network %s carries unused payload", ErrInvalidJunction, n.Kind)
	}
	return nil
}

func (n NetworkID) checkVersion(v Version) error {
	switch v {
	case V2:
		switch n.Kind {
		case NetworkAny, NetworkNamed, NetworkPolkadot, NetworkKusama:
			return nil
		}
		return unsupported("network "+n.Kind.String(), v)
	case V3:
		if n.Kind == NetworkPolkadotBulletin {
			return unsupported("network PolkadotBulletin", v)
		}
	}
	if n.Kind == NetworkNamed {
		return unsupported("network Named", v)
	}
	return nil
}

// CompareNetwork orders by kind, then by payload.
func CompareNetwork(a, b NetworkID) int {
	return compareNetwork(MaxVersion, a, b)
}

// networkRank is the position of k in version v's NetworkId enum. V2
// declares Named right after Any.
func networkRank(v Version, k NetworkKind) int {
	if v != V2 || k == NetworkAny {
		return int(k)
	}
	if k == NetworkNamed {
		return int(NetworkAny) + 1
	}
	return int(k) + 1
}

func compareNetwork(v Version, a, b NetworkID) int {
	if c := cmp.Compare(networkRank(v, a.Kind), networkRank(v, b.Kind)); c != 0 {
		return c
	}
	switch a.Kind {
	case NetworkByFork:
		if c := cmp.Compare(a.BlockNumber, b.BlockNumber); c != 0 {
			return c
		}
	case NetworkEthereum:
		if c := cmp.Compare(a.ChainID, b.ChainID); c != 0 {
			return c
		}
	case NetworkNamed:
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
	}
	if c := bytes.Compare(a.Hash[:], b.Hash[:]); c != 0 {
		return c
	}
	// Remaining fields only differ on unsanitized values; keep the order total.
	if c := cmp.Compare(a.BlockNumber, b.BlockNumber); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ChainID, b.ChainID); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// BodyKind enumerates plurality body identifiers.
type BodyKind uint8

const (
	BodyUnit BodyKind = iota
	BodyMoniker
	BodyIndex
	BodyExecutive
	BodyTechnical
	BodyLegislative
	BodyJudicial
	BodyDefense
	BodyAdministration
	BodyTreasury
	// BodyNamed only exists in V2.
	BodyNamed
)

var bodyNames = [...]string{
	"Unit", "Moniker", "Index", "Executive", "Technical", "Legislative",
	"Judicial", "Defense", "Administration", "Treasury", "Named",
}

func (k BodyKind) String() string {
	if int(k) < len(bodyNames) {
		return bodyNames[k]
	}
	return fmt.Sprintf("BodyKind(%d)", uint8(k))
}

// BodyID identifies a plurality body.
type BodyID struct {
	Kind    BodyKind
	Moniker [4]byte
	Index   uint32
	Name    string
}

func (b BodyID) validate() error {
	if b.Kind > BodyNamed {
		return fmt.Errorf("%w: unknown body kind %d", ErrInvalidJunction, b.Kind)
	}
	want := BodyID{Kind: b.Kind}
	switch b.Kind {
	case BodyMoniker:
		want.Moniker = b.Moniker
	case BodyIndex:
		want.Index = b.Index
	case BodyNamed:
		if b.Name == "" || len(b.Name) > 32 {
			return fmt.Errorf("%w: named body must be 1..32 bytes", ErrInvalidJunction)
		}
		want.Name = b.Name
	}
	if want != b {
		return fmt.Errorf("%w: body %s carries unused payload", ErrInvalidJunction, b.Kind)
	}
	return nil
}

// bodyRank is the position of k in version v's BodyId enum. V2 has Named
// where later versions have Moniker.
func bodyRank(v Version, k BodyKind) int {
	if v == V2 && k == BodyNamed {
		return int(BodyMoniker)
	}
	return int(k)
}

func compareBody(v Version, a, b BodyID) int {
	if c := cmp.Compare(bodyRank(v, a.Kind), bodyRank(v, b.Kind)); c != 0 {
		return c
	}
	if v == V2 && a.Kind != b.Kind {
		// A moniker and a name share one V2 encoding.
		return bytes.Compare(a.wireName(), b.wireName())
	}
	if c := bytes.Compare(a.Moniker[:], b.Moniker[:]); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Index, b.Index); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

func (b BodyID) wireName() []byte {
	if b.Kind == BodyMoniker {
		return b.Moniker[:]
	}
	return []byte(b.Name)
}

// BodyPartKind enumerates which part of a body a plurality speaks for.
type BodyPartKind uint8

const (
	PartVoice BodyPartKind = iota
	PartMembers
	PartFraction
	PartAtLeastProportion
	PartMoreThanProportion
)

var bodyPartNames = [...]string{"Voice", "Members", "Fraction", "AtLeastProportion", "MoreThanProportion"}

func (k BodyPartKind) String() string {
	if int(k) < len(bodyPartNames) {
		return bodyPartNames[k]
	}
	return fmt.Sprintf("BodyPartKind(%d)", uint8(k))
}

// BodyPart is the portion of a body. Count is used by Members; Nom and Denom
// by the proportional kinds.
type BodyPart struct {
	Kind  BodyPartKind
	Count uint32
	Nom   uint32
	Denom uint32
}

func (p BodyPart) validate() error {
	switch p.Kind {
	case PartVoice:
		if p != (BodyPart{}) {
			return fmt.Errorf("%w: Voice carries payload", ErrInvalidJunction)
		}
	case PartMembers:
		if p.Nom != 0 || p.Denom != 0 {
			return fmt.Errorf("%w: Members carries a proportion", ErrInvalidJunction)
		}
	case PartFraction, PartAtLeastProportion, PartMoreThanProportion:
		if p.Count != 0 {
			return fmt.Errorf("%w: %s carries a member count", ErrInvalidJunction, p.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown body part kind %d", ErrInvalidJunction, p.Kind)
	}
	return nil
}

func compareBodyPart(a, b BodyPart) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Count, b.Count); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Nom, b.Nom); c != 0 {
		return c
	}
	return cmp.Compare(a.Denom, b.Denom)
}
