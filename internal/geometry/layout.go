// Package geometry uploads vertex and index data and describes how vertex
// attributes are laid out in the bound buffer.
package geometry

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/quadgl/internal/gl"
)

// ScalarType is the GL type of one attribute component.
type ScalarType uint32

const (
	Byte          ScalarType = gl.Byte
	UnsignedByte  ScalarType = gl.UnsignedByte
	Short         ScalarType = gl.Short
	UnsignedShort ScalarType = gl.UnsignedShort
	Int           ScalarType = gl.Int
	UnsignedInt   ScalarType = gl.UnsignedInt
	Float         ScalarType = gl.Float
)

// Size returns the byte size of t, or 0 for unknown types.
func (t ScalarType) Size() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case Int, UnsignedInt, Float:
		return 4
	default:
		return 0
	}
}

// Attribute describes one interleaved vertex attribute.
type Attribute struct {
	Type  ScalarType
	Count int
}

// Layout is the computed stride and per-attribute byte offsets.
type Layout struct {
	Stride  int
	Offsets []int
}

// ComputeLayout returns the stride and the prefix-sum offsets of attrs.
func ComputeLayout(attrs []Attribute) (Layout, error) {
	if len(attrs) == 0 {
		return Layout{}, ErrEmptyLayout
	}

	stride := 0
	for i, a := range attrs {
		size := a.Type.Size()
		if size == 0 {
			return Layout{}, &UnsupportedTypeError{Index: i, Type: a.Type}
		}
		if a.Count < 1 || a.Count > 4 {
			return Layout{}, &CountError{Index: i, Count: a.Count}
		}
		stride += a.Count * size
	}

	l := Layout{Stride: stride, Offsets: make([]int, len(attrs))}
	offset := 0
	for i, a := range attrs {
		l.Offsets[i] = offset
		offset += a.Count * a.Type.Size()
	}
	if offset != stride {
		return Layout{}, fmt.Errorf("%w: end %d, stride %d", ErrLayoutMismatch, offset, stride)
	}
	return l, nil
}

// Verify checks that l matches attrs: one offset per attribute, each the sum
// of the sizes before it, ending at the stride.
func (l Layout) Verify(attrs []Attribute) error {
	if len(l.Offsets) != len(attrs) {
		return fmt.Errorf("%w: %d offsets for %d attributes", ErrLayoutMismatch, len(l.Offsets), len(attrs))
	}
	offset := 0
	for i, a := range attrs {
		if l.Offsets[i] != offset {
			return fmt.Errorf("%w: attribute %d at %d, expected %d", ErrLayoutMismatch, i, l.Offsets[i], offset)
		}
		offset += a.Count * a.Type.Size()
	}
	if offset != l.Stride {
		return fmt.Errorf("%w: end %d, stride %d", ErrLayoutMismatch, offset, l.Stride)
	}
	return nil
}

// DescribeLayout enables attribute i for each entry of attrs, in order, and
// points it into the currently bound ARRAY_BUFFER of the bound vertex array.
// A nil logger uses slog.Default.
func DescribeLayout(g gl.OpenGL, attrs []Attribute, logger *slog.Logger) (Layout, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := ComputeLayout(attrs)
	if err == nil {
		err = l.Verify(attrs)
	}
	if err != nil {
		logger.Error("invalid vertex layout", "category", "layout", "error", err)
		return Layout{}, err
	}

	for i, a := range attrs {
		g.EnableVertexAttribArray(uint32(i))
		g.VertexAttribPointer(uint32(i), int32(a.Count), uint32(a.Type), false, int32(l.Stride), uintptr(l.Offsets[i]))
	}

	logger.Debug("described vertex layout", "category", "layout", "attributes", len(attrs), "stride", l.Stride)
	return l, nil
}
