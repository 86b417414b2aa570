//go:build darwin || freebsd || linux || netbsd || windows

package gl

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"
)

// functions holds the raw entry points. Argument types mirror the C
// prototypes; GLboolean is passed as uint8 and pointers as unsafe.Pointer.
type functions struct {
	getError  func() uint32
	getString func(name uint32) *byte

	clearColor func(r, g, b, a float32)
	clear      func(mask uint32)
	viewport   func(x, y, width, height int32)
	enable     func(cap uint32)
	blendFunc  func(sfactor, dfactor uint32)

	genTextures    func(n int32, textures *uint32)
	deleteTextures func(n int32, textures *uint32)
	bindTexture    func(target, texture uint32)
	activeTexture  func(texture uint32)
	texParameteri  func(target, pname uint32, param int32)
	pixelStorei    func(pname uint32, param int32)
	texImage2D     func(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels unsafe.Pointer)

	genBuffers    func(n int32, buffers *uint32)
	deleteBuffers func(n int32, buffers *uint32)
	bindBuffer    func(target, buffer uint32)
	bufferData    func(target uint32, size int, data unsafe.Pointer, usage uint32)

	genVertexArrays         func(n int32, arrays *uint32)
	deleteVertexArrays      func(n int32, arrays *uint32)
	bindVertexArray         func(array uint32)
	enableVertexAttribArray func(index uint32)
	vertexAttribPointer     func(index uint32, size int32, xtype uint32, normalized uint8, stride int32, offset uintptr)

	createShader     func(xtype uint32) uint32
	shaderSource     func(shader uint32, count int32, src **byte, length *int32)
	compileShader    func(shader uint32)
	getShaderiv      func(shader, pname uint32, params *int32)
	getShaderInfoLog func(shader uint32, bufSize int32, length *int32, infoLog *byte)
	deleteShader     func(shader uint32)

	createProgram     func() uint32
	attachShader      func(program, shader uint32)
	detachShader      func(program, shader uint32)
	linkProgram       func(program uint32)
	validateProgram   func(program uint32)
	getProgramiv      func(program, pname uint32, params *int32)
	getProgramInfoLog func(program uint32, bufSize int32, length *int32, infoLog *byte)
	useProgram        func(program uint32)
	deleteProgram     func(program uint32)

	getUniformLocation func(program uint32, name *byte) int32
	uniform1i          func(location, v0 int32)
	uniform4f          func(location int32, v0, v1, v2, v3 float32)
	uniformMatrix4fv   func(location, count int32, transpose uint8, value *float32)

	drawElements func(mode uint32, count int32, xtype uint32, offset uintptr)
}

// Load resolves every entry point the OpenGL interface needs through
// getProcAddress and binds them with purego, without cgo. The context the
// addresses belong to must be current on the calling thread.
func Load(getProcAddress ProcAddressFunc) (OpenGL, error) {
	f := &functions{}
	var missing []string
	bind := func(fptr any, name string) {
		addr := getProcAddress(name)
		if addr == nil {
			missing = append(missing, name)
			return
		}
		purego.RegisterFunc(fptr, uintptr(addr))
	}

	bind(&f.getError, "glGetError")
	bind(&f.getString, "glGetString")
	bind(&f.clearColor, "glClearColor")
	bind(&f.clear, "glClear")
	bind(&f.viewport, "glViewport")
	bind(&f.enable, "glEnable")
	bind(&f.blendFunc, "glBlendFunc")

	bind(&f.genTextures, "glGenTextures")
	bind(&f.deleteTextures, "glDeleteTextures")
	bind(&f.bindTexture, "glBindTexture")
	bind(&f.activeTexture, "glActiveTexture")
	bind(&f.texParameteri, "glTexParameteri")
	bind(&f.pixelStorei, "glPixelStorei")
	bind(&f.texImage2D, "glTexImage2D")

	bind(&f.genBuffers, "glGenBuffers")
	bind(&f.deleteBuffers, "glDeleteBuffers")
	bind(&f.bindBuffer, "glBindBuffer")
	bind(&f.bufferData, "glBufferData")

	bind(&f.genVertexArrays, "glGenVertexArrays")
	bind(&f.deleteVertexArrays, "glDeleteVertexArrays")
	bind(&f.bindVertexArray, "glBindVertexArray")
	bind(&f.enableVertexAttribArray, "glEnableVertexAttribArray")
	bind(&f.vertexAttribPointer, "glVertexAttribPointer")

	bind(&f.createShader, "glCreateShader")
	bind(&f.shaderSource, "glShaderSource")
	bind(&f.compileShader, "glCompileShader")
	bind(&f.getShaderiv, "glGetShaderiv")
	bind(&f.getShaderInfoLog, "glGetShaderInfoLog")
	bind(&f.deleteShader, "glDeleteShader")

	bind(&f.createProgram, "glCreateProgram")
	bind(&f.attachShader, "glAttachShader")
	bind(&f.detachShader, "glDetachShader")
	bind(&f.linkProgram, "glLinkProgram")
	bind(&f.validateProgram, "glValidateProgram")
	bind(&f.getProgramiv, "glGetProgramiv")
	bind(&f.getProgramInfoLog, "glGetProgramInfoLog")
	bind(&f.useProgram, "glUseProgram")
	bind(&f.deleteProgram, "glDeleteProgram")

	bind(&f.getUniformLocation, "glGetUniformLocation")
	bind(&f.uniform1i, "glUniform1i")
	bind(&f.uniform4f, "glUniform4f")
	bind(&f.uniformMatrix4fv, "glUniformMatrix4fv")

	bind(&f.drawElements, "glDrawElements")

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntryPoint, strings.Join(missing, ", "))
	}
	return f, nil
}

func glBool(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// cString returns a NUL-terminated copy of s.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

func (f *functions) GetError() uint32 { return f.getError() }

func (f *functions) GetString(name uint32) string { return goString(f.getString(name)) }

func (f *functions) ClearColor(r, g, b, a float32) { f.clearColor(r, g, b, a) }

func (f *functions) Clear(mask uint32) { f.clear(mask) }

func (f *functions) Viewport(x, y, width, height int32) { f.viewport(x, y, width, height) }

func (f *functions) Enable(cap uint32) { f.enable(cap) }

func (f *functions) BlendFunc(sfactor, dfactor uint32) { f.blendFunc(sfactor, dfactor) }

func (f *functions) GenTextures(n int32, textures *uint32) { f.genTextures(n, textures) }

func (f *functions) DeleteTextures(n int32, textures *uint32) { f.deleteTextures(n, textures) }

func (f *functions) BindTexture(target, texture uint32) { f.bindTexture(target, texture) }

func (f *functions) ActiveTexture(texture uint32) { f.activeTexture(texture) }

func (f *functions) TexParameteri(target, pname uint32, param int32) {
	f.texParameteri(target, pname, param)
}

func (f *functions) PixelStorei(pname uint32, param int32) { f.pixelStorei(pname, param) }

func (f *functions) TexImage2D(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = unsafe.Pointer(&pixels[0])
	}
	f.texImage2D(target, level, internalformat, width, height, border, format, xtype, ptr)
	runtime.KeepAlive(pixels)
}

func (f *functions) GenBuffers(n int32, buffers *uint32) { f.genBuffers(n, buffers) }

func (f *functions) DeleteBuffers(n int32, buffers *uint32) { f.deleteBuffers(n, buffers) }

func (f *functions) BindBuffer(target, buffer uint32) { f.bindBuffer(target, buffer) }

func (f *functions) BufferData(target uint32, data []byte, usage uint32) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	f.bufferData(target, len(data), ptr, usage)
	runtime.KeepAlive(data)
}

func (f *functions) GenVertexArrays(n int32, arrays *uint32) { f.genVertexArrays(n, arrays) }

func (f *functions) DeleteVertexArrays(n int32, arrays *uint32) { f.deleteVertexArrays(n, arrays) }

func (f *functions) BindVertexArray(array uint32) { f.bindVertexArray(array) }

func (f *functions) EnableVertexAttribArray(index uint32) { f.enableVertexAttribArray(index) }

func (f *functions) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	f.vertexAttribPointer(index, size, xtype, glBool(normalized), stride, offset)
}

func (f *functions) CreateShader(xtype uint32) uint32 { return f.createShader(xtype) }

func (f *functions) ShaderSource(shader uint32, source string) {
	src := cString(source)
	ptr := &src[0]
	length := int32(len(source))
	f.shaderSource(shader, 1, &ptr, &length)
	runtime.KeepAlive(src)
}

func (f *functions) CompileShader(shader uint32) { f.compileShader(shader) }

func (f *functions) GetShaderiv(shader, pname uint32, params *int32) {
	f.getShaderiv(shader, pname, params)
}

func (f *functions) GetShaderInfoLog(shader uint32) string {
	var n int32
	f.getShaderiv(shader, InfoLogLength, &n)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	var written int32
	f.getShaderInfoLog(shader, n, &written, &buf[0])
	return string(buf[:written])
}

func (f *functions) DeleteShader(shader uint32) { f.deleteShader(shader) }

func (f *functions) CreateProgram() uint32 { return f.createProgram() }

func (f *functions) AttachShader(program, shader uint32) { f.attachShader(program, shader) }

func (f *functions) DetachShader(program, shader uint32) { f.detachShader(program, shader) }

func (f *functions) LinkProgram(program uint32) { f.linkProgram(program) }

func (f *functions) ValidateProgram(program uint32) { f.validateProgram(program) }

func (f *functions) UseProgram(program uint32) { f.useProgram(program) }

func (f *functions) DeleteProgram(program uint32) { f.deleteProgram(program) }

func (f *functions) Uniform1i(location int32, v0 int32) { f.uniform1i(location, v0) }

func (f *functions) GetProgramiv(program, pname uint32, params *int32) {
	f.getProgramiv(program, pname, params)
}

func (f *functions) GetProgramInfoLog(program uint32) string {
	var n int32
	f.getProgramiv(program, InfoLogLength, &n)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	var written int32
	f.getProgramInfoLog(program, n, &written, &buf[0])
	return string(buf[:written])
}

func (f *functions) GetUniformLocation(program uint32, name string) int32 {
	cname := cString(name)
	loc := f.getUniformLocation(program, &cname[0])
	runtime.KeepAlive(cname)
	return loc
}

func (f *functions) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	f.uniform4f(location, v0, v1, v2, v3)
}

func (f *functions) UniformMatrix4fv(location int32, count int32, transpose bool, value *float32) {
	f.uniformMatrix4fv(location, count, glBool(transpose), value)
}

func (f *functions) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	f.drawElements(mode, count, xtype, offset)
}
