package gl

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrMissingEntryPoint is returned by Load when the driver does not
	// export a required GL function.
	ErrMissingEntryPoint = errors.New("missing GL entry point")
	// ErrUnsupportedPlatform is returned by Load where entry points cannot
	// be called without cgo.
	ErrUnsupportedPlatform = errors.New("OpenGL loading not supported on this platform")
)

// ProcAddressFunc resolves a GL entry point by its C name (e.g. "glClear").
// It returns nil when the entry point is unavailable.
type ProcAddressFunc func(name string) unsafe.Pointer

const (
	// ColorBufferBit is a mask used with Clear to clear the color buffer.
	ColorBufferBit = 0x00004000

	// NoError is returned by GetError when the error queue is empty.
	NoError          = 0x0000
	InvalidEnum      = 0x0500
	InvalidValue     = 0x0501
	InvalidOperation = 0x0502
	StackOverflow    = 0x0503
	StackUnderflow   = 0x0504
	OutOfMemory      = 0x0505
	// InvalidFramebufferOperation is reported for draws against an incomplete framebuffer.
	InvalidFramebufferOperation = 0x0506
	ContextLost                 = 0x0507

	// Texture2D is the texture target for 2D textures.
	Texture2D = 0x0DE1

	// UnpackAlignment specifies the alignment requirements for pixel data
	// when uploading textures (PixelStorei).
	UnpackAlignment = 0x0CF5

	TextureWrapS     = 0x2802
	TextureWrapT     = 0x2803
	TextureMinFilter = 0x2801
	TextureMagFilter = 0x2800

	Linear      = 0x2601
	ClampToEdge = 0x812F

	// Pixel formats.
	Red  = 0x1903
	RGB  = 0x1907
	RGBA = 0x1908

	// Sized internal formats.
	R8    = 0x8229
	RGB8  = 0x8051
	RGBA8 = 0x8058

	// Scalar data types.
	Byte          = 0x1400
	UnsignedByte  = 0x1401
	Short         = 0x1402
	UnsignedShort = 0x1403
	Int           = 0x1404
	UnsignedInt   = 0x1405
	Float         = 0x1406

	Triangles = 0x0004

	// Buffer targets.
	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893

	// StaticDraw is the usage hint for data uploaded once.
	StaticDraw = 0x88E4

	VertexShader   = 0x8B31
	FragmentShader = 0x8B30

	CompileStatus  = 0x8B81
	LinkStatus     = 0x8B82
	ValidateStatus = 0x8B83
	InfoLogLength  = 0x8B84

	Texture0 = 0x84C0

	Blend            = 0x0BE2
	SrcAlpha         = 0x0302
	OneMinusSrcAlpha = 0x0303

	// GetString parameters.
	Vendor   = 0x1F00
	Renderer = 0x1F01
	Version  = 0x1F02
)

// OpenGL describes the subset of OpenGL entry points used by quadgl.
//
// All methods operate on the context that is current for the calling thread.
// Implementations are not safe for concurrent use.
type OpenGL interface {
	// GetError pops one error flag from the driver's error queue, or returns
	// NoError when the queue is empty.
	GetError() uint32
	GetString(name uint32) string

	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Viewport(x, y, width, height int32)
	Enable(cap uint32)
	BlendFunc(sfactor, dfactor uint32)

	// Texture operations
	GenTextures(n int32, textures *uint32)
	DeleteTextures(n int32, textures *uint32)
	BindTexture(target, texture uint32)
	ActiveTexture(texture uint32)
	TexParameteri(target, pname uint32, param int32)
	PixelStorei(pname uint32, param int32)
	// TexImage2D uploads a full image. pixels may be nil to allocate storage only.
	TexImage2D(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels []byte)

	// Buffer operations
	GenBuffers(n int32, buffers *uint32)
	DeleteBuffers(n int32, buffers *uint32)
	BindBuffer(target uint32, buffer uint32)
	BufferData(target uint32, data []byte, usage uint32)

	// Vertex Array Object operations
	GenVertexArrays(n int32, arrays *uint32)
	DeleteVertexArrays(n int32, arrays *uint32)
	BindVertexArray(array uint32)
	EnableVertexAttribArray(index uint32)
	// VertexAttribPointer describes attribute index of the bound ARRAY_BUFFER.
	// offset is a byte offset into the buffer, not a client pointer.
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)

	// Shader operations
	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname uint32, params *int32)
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	// Program operations
	CreateProgram() uint32
	AttachShader(program uint32, shader uint32)
	DetachShader(program uint32, shader uint32)
	LinkProgram(program uint32)
	ValidateProgram(program uint32)
	GetProgramiv(program uint32, pname uint32, params *int32)
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// Uniform operations
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v0 int32)
	Uniform4f(location int32, v0, v1, v2, v3 float32)
	UniformMatrix4fv(location int32, count int32, transpose bool, value *float32)

	// Drawing
	// DrawElements draws from the bound ELEMENT_ARRAY_BUFFER; offset is in bytes.
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
}

// ErrorName returns the symbolic name of a GetError code.
func ErrorName(code uint32) string {
	switch code {
	case NoError:
		return "NO_ERROR"
	case InvalidEnum:
		return "INVALID_ENUM"
	case InvalidValue:
		return "INVALID_VALUE"
	case InvalidOperation:
		return "INVALID_OPERATION"
	case StackOverflow:
		return "STACK_OVERFLOW"
	case StackUnderflow:
		return "STACK_UNDERFLOW"
	case OutOfMemory:
		return "OUT_OF_MEMORY"
	case InvalidFramebufferOperation:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case ContextLost:
		return "CONTEXT_LOST"
	default:
		return fmt.Sprintf("0x%04x", code)
	}
}
