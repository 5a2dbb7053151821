package xcm

import (
	"fmt"
	"strings"
)

// LocationLookup is how a caller names a location before it is resolved
// against a chain: a registry name, a location relative to the chain, or a
// universal interior path.
type LocationLookup interface {
	String() string
	lookup()
}

// NamedLocation is a registry key such as "Acala" or "polkadot".
type NamedLocation string

// RelativeLookup is a location already expressed relative to the chain.
type RelativeLookup struct {
	Location Location
}

// InteriorLookup is an interior path below the universal root, such as
// GlobalConsensus(Polkadot)/Parachain(2000).
type InteriorLookup struct {
	Interior Interior
}

func (NamedLocation) lookup()  {}
func (RelativeLookup) lookup() {}
func (InteriorLookup) lookup() {}

func (n NamedLocation) String() string { return string(n) }

func (r RelativeLookup) String() string {
	if r.Location.Parents == 0 {
		return "./" + r.Location.Interior.String()
	}
	return r.Location.String()
}

func (i InteriorLookup) String() string { return i.Interior.String() }

// SanitizeLookup validates the structural parts of a lookup. Names are
// passed through untouched.
func SanitizeLookup(l LocationLookup) (LocationLookup, error) {
	switch v := l.(type) {
	case NamedLocation:
		if strings.TrimSpace(string(v)) == "" {
			return nil, fmt.Errorf("%w: empty location name", ErrInvalidLookup)
		}
		return v, nil
	case RelativeLookup:
		loc, err := SanitizeLocation(v.Location)
		if err != nil {
			return nil, err
		}
		return RelativeLookup{Location: loc}, nil
	case InteriorLookup:
		interior, err := SanitizeInterior(v.Interior)
		if err != nil {
			return nil, err
		}
		return InteriorLookup{Interior: interior}, nil
	case nil:
		return nil, fmt.Errorf("%w: nil lookup", ErrInvalidLookup)
	}
	return nil, fmt.Errorf("%w: unexpected lookup %T", ErrInvalidLookup, l)
}

// ParseLocationLookup parses user input. Paths starting with "./" or "../"
// are relative, junction paths and "Here" are interior, and anything else is
// a registry name.
func ParseLocationLookup(s string) (LocationLookup, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("%w: empty lookup", ErrInvalidLookup)
	case s == "." || s == ".." || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../"):
		loc, err := ParseLocation(s)
		if err != nil {
			return nil, err
		}
		return RelativeLookup{Location: loc}, nil
	case s == "Here" || s == "OnlyChild" || strings.ContainsAny(s, "(/"):
		interior, err := ParseInterior(s)
		if err != nil {
			return nil, err
		}
		return InteriorLookup{Interior: interior}, nil
	}
	return NamedLocation(s), nil
}
