package geometry

import (
	"unsafe"

	"github.com/tinyrange/quadgl/internal/gl"
)

// Buffer is an uploaded GPU buffer. Its contents are not changed after upload.
type Buffer struct {
	Handle uint32
	Target uint32
	Size   int
	Usage  uint32

	gl gl.OpenGL
}

// Upload creates a buffer for target and fills it with data. The buffer is
// left bound to target.
func Upload(g gl.OpenGL, target uint32, data []byte, usage uint32) (*Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBuffer
	}

	b := &Buffer{Target: target, Size: len(data), Usage: usage, gl: g}
	g.GenBuffers(1, &b.Handle)
	g.BindBuffer(target, b.Handle)
	g.BufferData(target, data, usage)
	return b, nil
}

func (b *Buffer) Bind() {
	b.gl.BindBuffer(b.Target, b.Handle)
}

// Delete releases the buffer. Calling it again is a no-op.
func (b *Buffer) Delete() {
	if b.Handle == 0 {
		return
	}
	b.gl.DeleteBuffers(1, &b.Handle)
	b.Handle = 0
}

// VertexArray records attribute state and the element buffer binding.
type VertexArray struct {
	Handle uint32

	gl gl.OpenGL
}

// NewVertexArray creates a vertex array and binds it.
func NewVertexArray(g gl.OpenGL) *VertexArray {
	va := &VertexArray{gl: g}
	g.GenVertexArrays(1, &va.Handle)
	g.BindVertexArray(va.Handle)
	return va
}

func (va *VertexArray) Bind() {
	va.gl.BindVertexArray(va.Handle)
}

func (va *VertexArray) Delete() {
	if va.Handle == 0 {
		return
	}
	va.gl.DeleteVertexArrays(1, &va.Handle)
	va.Handle = 0
}

// Float32Bytes views v as bytes in native order without copying.
func Float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// Uint32Bytes views v as bytes in native order without copying.
func Uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// QuadLayout is the attribute layout of Quad's vertices: position then
// texture coordinate.
var QuadLayout = []Attribute{
	{Type: Float, Count: 2},
	{Type: Float, Count: 2},
}

// Quad returns a unit quad centered on the origin as interleaved
// {x, y, u, v} vertices and two counter-clockwise triangles.
func Quad() (vertices []float32, indices []uint32) {
	vertices = []float32{
		-0.5, +0.5, 0.0, 1.0,
		-0.5, -0.5, 0.0, 0.0,
		+0.5, -0.5, 1.0, 0.0,
		+0.5, +0.5, 1.0, 1.0,
	}
	indices = []uint32{
		0, 1, 2,
		2, 3, 0,
	}
	return vertices, indices
}
