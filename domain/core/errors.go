package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrUnknownColumn     = errors.New("unknown column")
	ErrMissingColumnType = errors.New("column has no declared type")
	ErrInvalidTypeMap    = errors.New("invalid type map")

	// Data quality errors. These are reported per pair and never abort a batch.
	ErrInsufficientData      = errors.New("insufficient data for analysis")
	ErrInsufficientGroups    = fmt.Errorf("%w: fewer than 2 groups", ErrInsufficientData)
	ErrInsufficientColumns   = fmt.Errorf("%w: fewer than 2 columns", ErrInsufficientData)
	ErrDegenerateInput       = errors.New("degenerate input")
	ErrMissingOrdinalMapping = errors.New("value has no declared ordinal rank")
)

// Error constructors with context
func NewUnknownColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

func NewMissingTypeError(column string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumnType, column)
}

func NewInsufficientGroupsError(categorical string, groups int) error {
	return fmt.Errorf("%w: column %q has %d non-empty group(s)", ErrInsufficientGroups, categorical, groups)
}

func NewDegenerateError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateInput, reason)
}

func NewMissingOrdinalError(column, value string) error {
	return fmt.Errorf("%w: column %q value %q", ErrMissingOrdinalMapping, column, value)
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsDegenerate(err error) bool {
	return errors.Is(err, ErrDegenerateInput)
}

// IsDataQualityError reports whether err describes the data rather than a malformed call.
func IsDataQualityError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrDegenerateInput) ||
		errors.Is(err, ErrMissingOrdinalMapping)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrMissingColumnType) ||
		errors.Is(err, ErrInvalidTypeMap)
}
