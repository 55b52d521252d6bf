package extraction

import (
	"errors"
	"fmt"
	"math"

	"sparams/internal/models"
)

// ErrInvalidInput matches every *InvalidInputError through errors.Is
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a height map or configuration value that the
// engine refuses before doing any cache work
type InvalidInputError struct {
	// Field names the offending input (heightMap, dx, dy, M)
	Field string

	// Reason is a short human readable explanation
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) match
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...interface{}) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// validateGrid checks the height map shape and the resolution parameter
func validateGrid(hm models.HeightMap, m int) error {
	if len(hm.Data) == 0 {
		return invalid("heightMap", "grid is empty")
	}
	if !hm.IsSquare() {
		return invalid("heightMap", "grid is not square (%d samples, side %d)", len(hm.Data), hm.Dim)
	}
	if m <= 0 {
		return invalid("M", "must be positive, got %d", m)
	}
	if m < 2 || m%2 != 0 {
		return invalid("M", "must be even and at least 2, got %d", m)
	}
	return nil
}

// validateSpacing checks the physical pixel spacing
func validateSpacing(dx, dy float64) error {
	if !(dx > 0) || math.IsInf(dx, 0) {
		return invalid("dx", "must be a finite positive spacing, got %g", dx)
	}
	if !(dy > 0) || math.IsInf(dy, 0) {
		return invalid("dy", "must be a finite positive spacing, got %g", dy)
	}
	return nil
}
