package xcm

import (
	"bytes"
	"cmp"
	"fmt"
)

// CompareJunction orders junctions by kind precedence first, then by payload
// within the same kind, following the newest version's runtime types. It
// returns -1, 0 or +1.
func CompareJunction(a, b Junction) int {
	return compareJunction(MaxVersion, a, b)
}

// compareJunction is the order the runtime of version v checks when it
// decodes an asset vector.
func compareJunction(v Version, a, b Junction) int {
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	switch x := a.(type) {
	case Parachain:
		return cmp.Compare(x, b.(Parachain))
	case AccountID32:
		y := b.(AccountID32)
		if c := compareNetwork(v, x.Network, y.Network); c != 0 {
			return c
		}
		return bytes.Compare(x.ID[:], y.ID[:])
	case AccountIndex64:
		y := b.(AccountIndex64)
		if c := compareNetwork(v, x.Network, y.Network); c != 0 {
			return c
		}
		return cmp.Compare(x.Index, y.Index)
	case AccountKey20:
		y := b.(AccountKey20)
		if c := compareNetwork(v, x.Network, y.Network); c != 0 {
			return c
		}
		return bytes.Compare(x.Key[:], y.Key[:])
	case PalletInstance:
		return cmp.Compare(x, b.(PalletInstance))
	case GeneralIndex:
		y := b.(GeneralIndex)
		return x.Index.Cmp(&y.Index)
	case GeneralKey:
		y := b.(GeneralKey)
		if v == V2 {
			// V2 keys are plain byte strings.
			return bytes.Compare(x.Bytes(), y.Bytes())
		}
		if c := cmp.Compare(x.Length, y.Length); c != 0 {
			return c
		}
		return bytes.Compare(x.Data[:], y.Data[:])
	case OnlyChild:
		return 0
	case Plurality:
		y := b.(Plurality)
		if c := compareBody(v, x.ID, y.ID); c != 0 {
			return c
		}
		return compareBodyPart(x.Part, y.Part)
	case GlobalConsensus:
		return compareNetwork(v, x.Network, b.(GlobalConsensus).Network)
	}
	panic(fmt.Sprintf("xcm: unknown junction type %T", a))
}

// CompareInterior orders paths lexicographically by CompareJunction; a
// strict prefix sorts before the longer path.
func CompareInterior(a, b Interior) int {
	return compareInterior(MaxVersion, a, b)
}

func compareInterior(v Version, a, b Interior) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := compareJunction(v, a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// IsInteriorEqual reports whether two paths compare equal.
func IsInteriorEqual(a, b Interior) bool {
	return CompareInterior(a, b) == 0
}

// CompareLocation orders by parents ascending, then by interior.
func CompareLocation(a, b Location) int {
	return compareLocation(MaxVersion, a, b)
}

func compareLocation(v Version, a, b Location) int {
	if c := cmp.Compare(a.Parents, b.Parents); c != 0 {
		return c
	}
	return compareInterior(v, a.Interior, b.Interior)
}

// CompareAssetID delegates to the wrapped locations.
func CompareAssetID(a, b AssetID) int {
	return compareLocation(MaxVersion, a.Location, b.Location)
}

// CompareAsset orders assets by id only. Fungibility and amount never take
// part, so rewriting an amount cannot move an asset.
func CompareAsset(a, b Asset) int {
	return compareAsset(MaxVersion, a, b)
}

func compareAsset(v Version, a, b Asset) int {
	return compareLocation(v, a.ID.Location, b.ID.Location)
}
