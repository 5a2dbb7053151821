// Package amount converts human readable decimal amounts to the integer
// base units carried by fungible assets.
package amount

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest precision a u128 amount can carry.
const MaxDecimals = 38

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrLeadingZero        = errors.New("amount has a leading zero")
	ErrTooManyDecimals    = errors.New("amount has more fractional digits than the currency's decimals")
	ErrDecimalsOutOfRange = errors.New("decimals out of range")
	ErrAmountOverflow     = errors.New("amount overflows u128")
)

var (
	amountPattern  = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.[0-9]+)?$`)
	leadingPattern = regexp.MustCompile(`^0[0-9]`)
	integerPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)
)

var maxU128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// Parse converts s, a non-negative decimal such as "1.5", into base units of
// a currency with the given number of decimals.
func Parse(s string, decimals uint8) (uint256.Int, error) {
	if decimals > MaxDecimals {
		return uint256.Int{}, fmt.Errorf("%w: %d > %d", ErrDecimalsOutOfRange, decimals, MaxDecimals)
	}
	if err := Validate(s); err != nil {
		return uint256.Int{}, err
	}
	m := amountPattern.FindStringSubmatch(s)
	if frac := len(strings.TrimPrefix(m[2], ".")); frac > int(decimals) {
		return uint256.Int{}, fmt.Errorf("%w: %q has %d, currency allows %d", ErrTooManyDecimals, s, frac, decimals)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return fromBig(d.Shift(int32(decimals)), s)
}

// Validate checks the syntax of a decimal amount without knowing the
// currency's precision.
func Validate(s string) error {
	if amountPattern.MatchString(s) {
		return nil
	}
	if leadingPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrLeadingZero, s)
	}
	return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
}

// ParseRaw parses an integer amount already expressed in base units.
func ParseRaw(s string) (uint256.Int, error) {
	if !integerPattern.MatchString(s) {
		if leadingPattern.MatchString(s) {
			return uint256.Int{}, fmt.Errorf("%w: %q", ErrLeadingZero, s)
		}
		return uint256.Int{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return fromBig(d, s)
}

func fromBig(d decimal.Decimal, input string) (uint256.Int, error) {
	v, overflow := uint256.FromBig(d.BigInt())
	if overflow || v.Gt(maxU128) {
		return uint256.Int{}, fmt.Errorf("%w: %s", ErrAmountOverflow, input)
	}
	return *v, nil
}

// Format renders base units as a decimal string with trailing zeros removed.
func Format(v uint256.Int, decimals uint8) string {
	return decimal.NewFromBigInt(v.ToBig(), -int32(decimals)).String()
}
