package xcm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidJunction is returned when a junction payload is malformed.
	ErrInvalidJunction = errors.New("invalid junction")
	// ErrTooManyJunctions is returned when an interior exceeds MaxJunctions.
	ErrTooManyJunctions = errors.New("too many junctions")
	// ErrInvalidAsset is returned when an asset is missing its fungibility or
	// carries an out of range amount.
	ErrInvalidAsset = errors.New("invalid asset")
	// ErrInvalidVersion is returned for version tags outside MinVersion..MaxVersion.
	ErrInvalidVersion = errors.New("invalid xcm version")
	// ErrUnsupportedInVersion is matched by every *UnsupportedError.
	ErrUnsupportedInVersion = errors.New("feature not supported in xcm version")
	// ErrConflictingFungibility is returned when fungible and non-fungible
	// assets share one id.
	ErrConflictingFungibility = errors.New("conflicting fungibility")
	// ErrAmountOverflow is returned when summed amounts exceed u128.
	ErrAmountOverflow = errors.New("amount overflows u128")
	// ErrMixedVersions is returned when versioned values of different
	// versions are combined.
	ErrMixedVersions = errors.New("mixed xcm versions")
	// ErrInvalidLookup is returned for malformed lookup text or shapes.
	ErrInvalidLookup = errors.New("invalid location lookup")
)

// UnsupportedError reports a payload feature that cannot be expressed in
// the requested protocol version.
type UnsupportedError struct {
	Feature string
	Version Version
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported in xcm %s", e.Feature, e.Version)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedInVersion
}

func unsupported(feature string, v Version) error {
	return &UnsupportedError{Feature: feature, Version: v}
}
