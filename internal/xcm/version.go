package xcm

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an XCM protocol version tag.
type Version uint8

const (
	V2 Version = 2
	V3 Version = 3
	V4 Version = 4

	MinVersion = V2
	MaxVersion = V4
)

// Valid reports whether the version is one this package can encode.
func (v Version) Valid() bool {
	return v >= MinVersion && v <= MaxVersion
}

func (v Version) String() string {
	return "V" + strconv.Itoa(int(v))
}

// wireIndex is the variant index of a versioned enum on the wire. V2 sits at
// index 1 because index 0 (V0) was removed from the runtime enums.
func (v Version) wireIndex() byte {
	if v == V2 {
		return 1
	}
	return byte(v)
}

// ParseVersion accepts "4", "v4" and "V4".
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "V"), "v")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return CheckVersion(Version(n))
}

// CheckVersion returns v unchanged if it is valid.
func CheckVersion(v Version) (Version, error) {
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVersion, uint8(v))
	}
	return v, nil
}

// Versioned is implemented by every version-tagged wire value.
type Versioned interface {
	Version() Version
}

// ExtractVersion reads the version tag without touching the payload.
func ExtractVersion(v Versioned) Version {
	return v.Version()
}
