package geometry

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyLayout     = errors.New("vertex layout has no attributes")
	ErrInvalidCount    = errors.New("invalid attribute component count")
	ErrUnsupportedType = errors.New("unsupported attribute type")
	ErrLayoutMismatch  = errors.New("vertex layout offsets do not match stride")
	ErrEmptyBuffer     = errors.New("buffer data is empty")
)

// UnsupportedTypeError reports a scalar type with no known size.
type UnsupportedTypeError struct {
	Index int
	Type  ScalarType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("attribute %d: unsupported type 0x%04x", e.Index, uint32(e.Type))
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// CountError reports a component count outside 1..4.
type CountError struct {
	Index int
	Count int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("attribute %d: component count %d not in 1..4", e.Index, e.Count)
}

func (e *CountError) Is(target error) bool {
	return target == ErrInvalidCount
}
