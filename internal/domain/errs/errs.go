package errs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a uniqueness or occupancy violation.
var ErrConflict = errors.New("conflict")

// ErrInvalidInput indicates the request payload or query cannot be processed.
var ErrInvalidInput = errors.New("invalid input")

// ErrInsufficientStock indicates a subtraction would drive a stock record negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrMissingReference indicates a required fixed reference record (such as the
// wet or dry condition) is absent from reference data.
var ErrMissingReference = errors.New("missing reference configuration")

// NotFoundf builds a NotFound error with a formatted description.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Conflictf builds a Conflict error with a formatted description.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Invalidf builds an InvalidInput error with a formatted description.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// MissingReferencef builds a MissingReference error with a formatted description.
func MissingReferencef(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrMissingReference)
}

// InsufficientStock carries the details of a rejected stock subtraction.
type InsufficientStock struct {
	Subject   string
	Current   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock of %s: have %s, requested %s",
		e.Subject, e.Current.String(), e.Requested.String())
}

// Is makes errors.Is(err, ErrInsufficientStock) match the carrier struct.
func (e *InsufficientStock) Is(target error) bool {
	return target == ErrInsufficientStock
}
