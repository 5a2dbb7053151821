package fees

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

var (
	// ErrNotConverged is returned when shortfalls keep coming after
	// MaxIterations estimates.
	ErrNotConverged = errors.New("fee estimation did not converge")
	// ErrFinalDryRun wraps a failure of the dry run of the assembled call.
	ErrFinalDryRun = errors.New("final dry run failed")
)

// TooExpensiveError reports that the fee reservation on one hop fell short
// by Missing.
type TooExpensiveError struct {
	Chain   string
	Missing uint256.Int
}

func (e *TooExpensiveError) Error() string {
	return fmt.Sprintf("fee reservation too low on %s: missing %s", e.Chain, e.Missing.Dec())
}

// AggregateError collects the per-hop failures of one estimate.
type AggregateError struct {
	Errs []error
}

func (e *AggregateError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d hop errors: %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *AggregateError) Unwrap() []error { return e.Errs }

// Shortfall sums the missing amounts carried by err. It reports false when
// err, or any error joined into it, is not a shortfall.
func Shortfall(err error) (uint256.Int, bool) {
	switch e := err.(type) {
	case *TooExpensiveError:
		return e.Missing, true
	case interface{ Unwrap() []error }:
		parts := e.Unwrap()
		if len(parts) == 0 {
			return uint256.Int{}, false
		}
		var total uint256.Int
		for _, part := range parts {
			missing, ok := Shortfall(part)
			if !ok {
				return uint256.Int{}, false
			}
			if _, overflow := total.AddOverflow(&total, &missing); overflow {
				return uint256.Int{}, false
			}
		}
		return total, true
	case interface{ Unwrap() error }:
		return Shortfall(e.Unwrap())
	}
	return uint256.Int{}, false
}
