/*
errors.go - Error types for the period engine

PURPOSE:
  Two failure policies coexist in this package and both are deliberate:

  1. Degrade-and-log (StartOfPeriod, EndOfPeriod, EndOfX, AddPeriod,
     PeriodShow): an unknown code is logged at error level and the input is
     returned unchanged. Report pages keep rendering.

  2. Fail-fast (SubtractPeriod, UpdateStartDate, UpdateEndDate): an unknown
     code returns *UnsupportedFrequencyError. Settings validation and report
     range selection must surface it to the user.

USAGE:
    if errors.Is(err, navigation.ErrUnsupportedFrequency) {
        // configuration or input error, retrying won't help
    }
*/
package navigation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnsupportedFrequency is returned when a frequency code is not in the
	// known code set.
	ErrUnsupportedFrequency = errors.New("unsupported frequency")

	// ErrInvalidFiscalYearStart is returned for a malformed "MM-DD" fiscal
	// year start.
	ErrInvalidFiscalYearStart = errors.New("invalid fiscal year start")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// UnsupportedFrequencyError names the offending code and the operation that
// refused it.
type UnsupportedFrequencyError struct {
	Code      string
	Operation string
}

func (e *UnsupportedFrequencyError) Error() string {
	return fmt.Sprintf("%s cannot handle frequency %q", e.Operation, e.Code)
}

func (e *UnsupportedFrequencyError) Unwrap() error {
	return ErrUnsupportedFrequency
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is caused by caller input and should
// be reported back rather than retried.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedFrequency) ||
		errors.Is(err, ErrInvalidFiscalYearStart)
}
