package xcm

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Text form
//
//	junction  Parachain(1000), PalletInstance(50), GeneralIndex(1984),
//	          AccountId32([network,]0x..), GeneralKey(0x..), OnlyChild,
//	          Plurality(body,part), GlobalConsensus(network)
//	interior  junctions joined by "/", or "Here"
//	location  one "../" per parent followed by the interior
//	asset     location ":" amount, or location "#" instance

func (n NetworkID) String() string {
	switch n.Kind {
	case NetworkByGenesis:
		return fmt.Sprintf("ByGenesis(%s)", hexString(n.Hash[:]))
	case NetworkByFork:
		return fmt.Sprintf("ByFork(%d,%s)", n.BlockNumber, hexString(n.Hash[:]))
	case NetworkEthereum:
		return fmt.Sprintf("Ethereum(%d)", n.ChainID)
	case NetworkNamed:
		return fmt.Sprintf("Named(%s)", n.Name)
	}
	return n.Kind.String()
}

func (b BodyID) String() string {
	switch b.Kind {
	case BodyMoniker:
		return fmt.Sprintf("Moniker(%s)", hexString(b.Moniker[:]))
	case BodyIndex:
		return fmt.Sprintf("Index(%d)", b.Index)
	case BodyNamed:
		return fmt.Sprintf("Named(%s)", b.Name)
	}
	return b.Kind.String()
}

func (p BodyPart) String() string {
	switch p.Kind {
	case PartMembers:
		return fmt.Sprintf("Members(%d)", p.Count)
	case PartFraction, PartAtLeastProportion, PartMoreThanProportion:
		return fmt.Sprintf("%s(%d,%d)", p.Kind, p.Nom, p.Denom)
	}
	return p.Kind.String()
}

func withNetwork(kind JunctionKind, n NetworkID, payload string) string {
	if n.IsAny() {
		return fmt.Sprintf("%s(%s)", kind, payload)
	}
	return fmt.Sprintf("%s(%s,%s)", kind, n, payload)
}

func (j Parachain) String() string      { return fmt.Sprintf("Parachain(%d)", uint32(j)) }
func (j PalletInstance) String() string { return fmt.Sprintf("PalletInstance(%d)", uint8(j)) }
func (j GeneralIndex) String() string   { return fmt.Sprintf("GeneralIndex(%s)", j.Index.Dec()) }
func (j GeneralKey) String() string     { return fmt.Sprintf("GeneralKey(%s)", hexString(j.Bytes())) }
func (OnlyChild) String() string        { return "OnlyChild" }

func (j AccountID32) String() string {
	return withNetwork(KindAccountID32, j.Network, hexString(j.ID[:]))
}

func (j AccountIndex64) String() string {
	return withNetwork(KindAccountIndex64, j.Network, strconv.FormatUint(j.Index, 10))
}

func (j AccountKey20) String() string {
	return withNetwork(KindAccountKey20, j.Network, hexString(j.Key[:]))
}

func (j Plurality) String() string {
	return fmt.Sprintf("Plurality(%s,%s)", j.ID, j.Part)
}

func (j GlobalConsensus) String() string {
	return fmt.Sprintf("GlobalConsensus(%s)", j.Network)
}

func (i Interior) String() string {
	if len(i) == 0 {
		return "Here"
	}
	parts := make([]string, len(i))
	for idx, j := range i {
		parts[idx] = j.String()
	}
	return strings.Join(parts, "/")
}

func (l Location) String() string {
	return strings.Repeat("../", int(l.Parents)) + l.Interior.String()
}

func (a AssetInstance) String() string {
	switch a.Kind {
	case InstanceIndex:
		return fmt.Sprintf("Index(%s)", a.Index.Dec())
	case InstanceArray4, InstanceArray8, InstanceArray16, InstanceArray32:
		return fmt.Sprintf("%s(%s)", a.Kind, hexString(a.Data[:a.Kind.arrayLen()]))
	case InstanceBlob:
		return fmt.Sprintf("Blob(%s)", hexString([]byte(a.Blob)))
	}
	return a.Kind.String()
}

func (a Asset) String() string {
	switch f := a.Fun.(type) {
	case Fungible:
		return a.ID.String() + ":" + f.String()
	case NonFungible:
		return a.ID.String() + "#" + f.String()
	}
	return a.ID.String()
}

func hexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func parseHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("%w: expected 0x-prefixed hex, got %q", ErrInvalidLookup, s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLookup, err)
	}
	return b, nil
}

func parseFixedHex(s string, out []byte) error {
	b, err := parseHex(s)
	if err != nil {
		return err
	}
	if len(b) != len(out) {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLookup, len(out), len(b))
	}
	copy(out, b)
	return nil
}

// term splits "Name(a,b(c),d)" into its name and top-level arguments.
func term(s string) (string, []string, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if s == "" {
			return "", nil, fmt.Errorf("%w: empty term", ErrInvalidLookup)
		}
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidLookup, s)
	}
	args, err := splitTopLevel(s[open+1:len(s)-1], ',')
	if err != nil {
		return "", nil, err
	}
	return s[:open], args, nil
}

func splitTopLevel(s string, sep byte) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidLookup, s)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidLookup, s)
	}
	return append(parts, strings.TrimSpace(s[start:])), nil
}

func wantArgs(name string, args []string, n ...int) error {
	for _, want := range n {
		if len(args) == want {
			return nil
		}
	}
	return fmt.Errorf("%w: %s takes %v arguments, got %d", ErrInvalidLookup, name, n, len(args))
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLookup, err)
	}
	return v, nil
}

func parseU128(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %q: %v", ErrInvalidLookup, s, err)
	}
	if !fitsU128(v) {
		return uint256.Int{}, fmt.Errorf("%w: %s exceeds u128", ErrInvalidLookup, s)
	}
	return *v, nil
}

// ParseNetwork parses the text form of a NetworkID.
func ParseNetwork(s string) (NetworkID, error) {
	name, args, err := term(s)
	if err != nil {
		return NetworkID{}, err
	}
	switch name {
	case "ByGenesis":
		if err := wantArgs(name, args, 1); err != nil {
			return NetworkID{}, err
		}
		var h [32]byte
		if err := parseFixedHex(args[0], h[:]); err != nil {
			return NetworkID{}, err
		}
		return ByGenesis(h), nil
	case "ByFork":
		if err := wantArgs(name, args, 2); err != nil {
			return NetworkID{}, err
		}
		block, err := parseUint(args[0], 64)
		if err != nil {
			return NetworkID{}, err
		}
		var h [32]byte
		if err := parseFixedHex(args[1], h[:]); err != nil {
			return NetworkID{}, err
		}
		return ByFork(block, h), nil
	case "Ethereum":
		if err := wantArgs(name, args, 1); err != nil {
			return NetworkID{}, err
		}
		id, err := parseUint(args[0], 64)
		if err != nil {
			return NetworkID{}, err
		}
		return Ethereum(id), nil
	case "Named":
		if err := wantArgs(name, args, 1); err != nil {
			return NetworkID{}, err
		}
		return NetworkID{Kind: NetworkNamed, Name: args[0]}, nil
	}
	if args != nil {
		return NetworkID{}, fmt.Errorf("%w: network %s takes no arguments", ErrInvalidLookup, name)
	}
	for kind, kindName := range networkNames {
		if kindName == name && kind != NetworkByGenesis && kind != NetworkByFork && kind != NetworkEthereum && kind != NetworkNamed {
			return NetworkID{Kind: kind}, nil
		}
	}
	return NetworkID{}, fmt.Errorf("%w: unknown network %q", ErrInvalidLookup, name)
}

func parseBody(s string) (BodyID, error) {
	name, args, err := term(s)
	if err != nil {
		return BodyID{}, err
	}
	switch name {
	case "Moniker":
		if err := wantArgs(name, args, 1); err != nil {
			return BodyID{}, err
		}
		b := BodyID{Kind: BodyMoniker}
		if err := parseFixedHex(args[0], b.Moniker[:]); err != nil {
			return BodyID{}, err
		}
		return b, nil
	case "Index":
		if err := wantArgs(name, args, 1); err != nil {
			return BodyID{}, err
		}
		idx, err := parseUint(args[0], 32)
		return BodyID{Kind: BodyIndex, Index: uint32(idx)}, err
	case "Named":
		if err := wantArgs(name, args, 1); err != nil {
			return BodyID{}, err
		}
		return BodyID{Kind: BodyNamed, Name: args[0]}, nil
	}
	for i, n := range bodyNames {
		if n == name && args == nil {
			return BodyID{Kind: BodyKind(i)}, nil
		}
	}
	return BodyID{}, fmt.Errorf("%w: unknown body %q", ErrInvalidLookup, s)
}

func parseBodyPart(s string) (BodyPart, error) {
	name, args, err := term(s)
	if err != nil {
		return BodyPart{}, err
	}
	switch name {
	case "Voice":
		return BodyPart{Kind: PartVoice}, wantArgs(name, args, 0)
	case "Members":
		if err := wantArgs(name, args, 1); err != nil {
			return BodyPart{}, err
		}
		count, err := parseUint(args[0], 32)
		return BodyPart{Kind: PartMembers, Count: uint32(count)}, err
	}
	for i, n := range bodyPartNames {
		if n != name || i < int(PartFraction) {
			continue
		}
		if err := wantArgs(name, args, 2); err != nil {
			return BodyPart{}, err
		}
		nom, err := parseUint(args[0], 32)
		if err != nil {
			return BodyPart{}, err
		}
		denom, err := parseUint(args[1], 32)
		return BodyPart{Kind: BodyPartKind(i), Nom: uint32(nom), Denom: uint32(denom)}, err
	}
	return BodyPart{}, fmt.Errorf("%w: unknown body part %q", ErrInvalidLookup, s)
}

// networkAndPayload splits the optional leading network argument.
func networkAndPayload(name string, args []string) (NetworkID, string, error) {
	if err := wantArgs(name, args, 1, 2); err != nil {
		return NetworkID{}, "", err
	}
	if len(args) == 1 {
		return NetworkID{}, args[0], nil
	}
	n, err := ParseNetwork(args[0])
	return n, args[1], err
}

// ParseJunction parses the text form of a single junction.
func ParseJunction(s string) (Junction, error) {
	name, args, err := term(s)
	if err != nil {
		return nil, err
	}
	var j Junction
	switch name {
	case "Parachain":
		if err = wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		id, perr := parseUint(args[0], 32)
		j, err = Parachain(id), perr
	case "AccountId32":
		n, payload, perr := networkAndPayload(name, args)
		if perr != nil {
			return nil, perr
		}
		var id [32]byte
		err = parseFixedHex(payload, id[:])
		j = AccountID32{Network: n, ID: id}
	case "AccountIndex64":
		n, payload, perr := networkAndPayload(name, args)
		if perr != nil {
			return nil, perr
		}
		idx, perr := parseUint(payload, 64)
		j, err = AccountIndex64{Network: n, Index: idx}, perr
	case "AccountKey20":
		n, payload, perr := networkAndPayload(name, args)
		if perr != nil {
			return nil, perr
		}
		var key [20]byte
		err = parseFixedHex(payload, key[:])
		j = AccountKey20{Network: n, Key: key}
	case "PalletInstance":
		if err = wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		idx, perr := parseUint(args[0], 8)
		j, err = PalletInstance(idx), perr
	case "GeneralIndex":
		if err = wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		idx, perr := parseU128(args[0])
		j, err = GeneralIndex{Index: idx}, perr
	case "GeneralKey":
		if err = wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		raw, perr := parseHex(args[0])
		if perr != nil {
			return nil, perr
		}
		j, err = NewGeneralKey(raw)
	case "OnlyChild":
		j, err = OnlyChild{}, wantArgs(name, args, 0)
	case "Plurality":
		if err = wantArgs(name, args, 2); err != nil {
			return nil, err
		}
		body, perr := parseBody(args[0])
		if perr != nil {
			return nil, perr
		}
		part, perr := parseBodyPart(args[1])
		j, err = Plurality{ID: body, Part: part}, perr
	case "GlobalConsensus":
		if err = wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		n, perr := ParseNetwork(args[0])
		j, err = GlobalConsensus{Network: n}, perr
	default:
		return nil, fmt.Errorf("%w: unknown junction %q", ErrInvalidLookup, name)
	}
	if err != nil {
		return nil, err
	}
	if err := j.validate(); err != nil {
		return nil, err
	}
	return j, nil
}

// ParseInterior parses "Here" or "/"-separated junctions.
func ParseInterior(s string) (Interior, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Here" {
		return nil, nil
	}
	parts, err := splitTopLevel(s, '/')
	if err != nil {
		return nil, err
	}
	out := make(Interior, 0, len(parts))
	for _, p := range parts {
		j, err := ParseJunction(p)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseLocation parses a location, one "../" per parent. A leading "./" is
// accepted and ignored.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	var parents int
	for strings.HasPrefix(s, "../") {
		parents++
		s = s[3:]
	}
	switch {
	case s == "..":
		parents++
		s = ""
	case s == ".":
		s = ""
	default:
		s = strings.TrimPrefix(s, "./")
	}
	if parents > 255 {
		return Location{}, fmt.Errorf("%w: %d parents", ErrInvalidLookup, parents)
	}
	interior, err := ParseInterior(s)
	if err != nil {
		return Location{}, err
	}
	return Location{Parents: uint8(parents), Interior: interior}, nil
}

// ParseAssetInstance parses the text form of an AssetInstance.
func ParseAssetInstance(s string) (AssetInstance, error) {
	name, args, err := term(s)
	if err != nil {
		return AssetInstance{}, err
	}
	switch name {
	case "Undefined":
		return AssetInstance{}, wantArgs(name, args, 0)
	case "Index":
		if err := wantArgs(name, args, 1); err != nil {
			return AssetInstance{}, err
		}
		idx, err := parseU128(args[0])
		return AssetInstance{Kind: InstanceIndex, Index: idx}, err
	case "Blob":
		if err := wantArgs(name, args, 1); err != nil {
			return AssetInstance{}, err
		}
		raw, err := parseHex(args[0])
		return AssetInstance{Kind: InstanceBlob, Blob: string(raw)}, err
	}
	for k := InstanceArray4; k <= InstanceArray32; k++ {
		if k.String() != name {
			continue
		}
		if err := wantArgs(name, args, 1); err != nil {
			return AssetInstance{}, err
		}
		inst := AssetInstance{Kind: k}
		if err := parseFixedHex(args[0], inst.Data[:k.arrayLen()]); err != nil {
			return AssetInstance{}, err
		}
		return inst, nil
	}
	return AssetInstance{}, fmt.Errorf("%w: unknown asset instance %q", ErrInvalidLookup, s)
}

// ParseAsset parses "location:amount" or "location#instance".
func ParseAsset(s string) (Asset, error) {
	if i := strings.LastIndexByte(s, '#'); i >= 0 {
		loc, err := ParseLocation(s[:i])
		if err != nil {
			return Asset{}, err
		}
		inst, err := ParseAssetInstance(s[i+1:])
		if err != nil {
			return Asset{}, err
		}
		return NewNonFungible(loc, inst), nil
	}
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return Asset{}, fmt.Errorf("%w: asset %q needs \":amount\" or \"#instance\"", ErrInvalidLookup, s)
	}
	loc, err := ParseLocation(s[:i])
	if err != nil {
		return Asset{}, err
	}
	amount, err := parseU128(s[i+1:])
	if err != nil {
		return Asset{}, err
	}
	return NewFungible(loc, amount), nil
}
