package xcm

import (
	"fmt"
	"slices"
)

// MaxJunctions bounds the length of an interior path.
const MaxJunctions = 8

// Interior is an ordered junction path relative to an implicit origin.
// Values are treated as immutable; every helper returns a fresh slice.
type Interior []Junction

// NewInterior copies the junctions into a new Interior.
func NewInterior(junctions ...Junction) Interior {
	if len(junctions) == 0 {
		return nil
	}
	return slices.Clone(Interior(junctions))
}

// Len returns the number of junctions.
func (i Interior) Len() int { return len(i) }

// Append returns i followed by junctions.
func (i Interior) Append(junctions ...Junction) Interior {
	out := make(Interior, 0, len(i)+len(junctions))
	out = append(out, i...)
	return append(out, junctions...)
}

// Concat returns i followed by other.
func (i Interior) Concat(other Interior) Interior {
	return i.Append(other...)
}

// Prefix returns the first n junctions.
func (i Interior) Prefix(n int) Interior {
	return NewInterior(i[:n]...)
}

// Equal reports structural equality.
func (i Interior) Equal(other Interior) bool {
	return IsInteriorEqual(i, other)
}

// Validate checks the path length and the shape of every junction.
func (i Interior) Validate() error {
	if len(i) > MaxJunctions {
		return fmt.Errorf("%w: %d > %d", ErrTooManyJunctions, len(i), MaxJunctions)
	}
	for idx, j := range i {
		if j == nil {
			return fmt.Errorf("%w: nil junction at %d", ErrInvalidJunction, idx)
		}
		if err := j.validate(); err != nil {
			return fmt.Errorf("junction %d (%s): %w", idx, j.Kind(), err)
		}
	}
	return nil
}

// wireForm rewrites junctions that version v encodes like another variant.
// V2 has no Moniker; a moniker travels as a four byte name.
func (l Location) wireForm(v Version) Location {
	if v != V2 {
		return l
	}
	var out Interior
	for idx, j := range l.Interior {
		p, ok := j.(Plurality)
		if !ok || p.ID.Kind != BodyMoniker {
			continue
		}
		if out == nil {
			out = NewInterior(l.Interior...)
		}
		p.ID = BodyID{Kind: BodyNamed, Name: string(p.ID.Moniker[:])}
		out[idx] = p
	}
	if out == nil {
		return l
	}
	return Location{Parents: l.Parents, Interior: out}
}

func (i Interior) checkVersion(v Version) error {
	for _, j := range i {
		if err := j.checkVersion(v); err != nil {
			return err
		}
	}
	return nil
}

// Location is a relative location: ascend Parents levels, then follow Interior.
type Location struct {
	Parents  uint8
	Interior Interior
}

// NewLocation builds a location from parents and junctions.
func NewLocation(parents uint8, junctions ...Junction) Location {
	return Location{Parents: parents, Interior: NewInterior(junctions...)}
}

// Here is the location of the origin itself.
func Here() Location { return Location{} }

// ParentLocation is one level up with no interior.
func ParentLocation() Location { return Location{Parents: 1} }

// IsHere reports whether l addresses its own origin.
func (l Location) IsHere() bool {
	return l.Parents == 0 && len(l.Interior) == 0
}

// IsInterior reports whether l does not ascend.
func (l Location) IsInterior() bool {
	return l.Parents == 0
}

// Equal reports structural equality.
func (l Location) Equal(other Location) bool {
	return CompareLocation(l, other) == 0
}

// Validate checks the interior path.
func (l Location) Validate() error {
	return l.Interior.Validate()
}

// SanitizeLocation validates l and returns a copy of it.
func SanitizeLocation(l Location) (Location, error) {
	if err := l.Validate(); err != nil {
		return Location{}, err
	}
	return Location{Parents: l.Parents, Interior: NewInterior(l.Interior...)}, nil
}

// SanitizeInterior validates i and returns a copy of it.
func SanitizeInterior(i Interior) (Interior, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return NewInterior(i...), nil
}
