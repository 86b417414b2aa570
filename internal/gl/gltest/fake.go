// Package gltest provides an in-memory gl.OpenGL implementation that records
// calls and tracks object lifetimes, so GPU-facing code can be tested
// without a context.
package gltest

import (
	"fmt"
	"regexp"
	"strings"
	"unsafe"

	"github.com/tinyrange/quadgl/internal/gl"
)

type ShaderState struct {
	Type     uint32
	Source   string
	Compiled bool
	Log      string
}

type ProgramState struct {
	Attached  []uint32
	Sources   map[uint32]string
	Linked    bool
	Validated bool
	Log       string
	// Locations maps uniform name to location, assigned at link time in
	// declaration order.
	Locations map[string]int32
	// Values holds the last value written to each location.
	Values map[int32][]float32
}

type BufferState struct {
	Target uint32
	Data   []byte
	Usage  uint32
}

type TextureState struct {
	Params         map[uint32]int32
	Level          int32
	InternalFormat int32
	Format         uint32
	Type           uint32
	Width, Height  int32
	Pixels         []byte
	Unpack         int32
}

type Attrib struct {
	Enabled    bool
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
	Buffer     uint32
}

type VertexArrayState struct {
	Attribs map[uint32]*Attrib
	Element uint32
}

type Draw struct {
	Program     uint32
	VertexArray uint32
	Texture     uint32
	Mode        uint32
	Count       int32
}

// Counts reports how many objects of each kind are alive.
type Counts struct {
	Shaders, Programs, Buffers, Textures, VertexArrays int
}

// Fake is a recording gl.OpenGL. The zero value is not usable; call New.
type Fake struct {
	// VersionString is returned for GetString(gl.Version).
	VersionString string
	// CompileHook decides whether a shader compiles. A nil hook fails sources
	// containing an #error directive or lacking a main function.
	CompileHook func(stage uint32, src string) (log string, ok bool)
	// LinkHook decides whether a program links after both stages compiled.
	LinkHook func(sources map[uint32]string) (log string, ok bool)
	// ValidateOK is reported through VALIDATE_STATUS.
	ValidateOK bool

	nextID  uint32
	errs    []uint32
	calls   []string
	draws   []Draw
	unpack  int32
	shaders map[uint32]*ShaderState

	programs  map[uint32]*ProgramState
	buffers   map[uint32]*BufferState
	textures  map[uint32]*TextureState
	vaos      map[uint32]*VertexArrayState
	bound     map[uint32]uint32
	units     map[uint32]uint32
	active    uint32
	vao       uint32
	program   uint32
	enabled   map[uint32]bool
	clearMask []uint32
}

var _ gl.OpenGL = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		VersionString: "3.3.0 gltest",
		ValidateOK:    true,
		unpack:        4,
		shaders:       make(map[uint32]*ShaderState),
		programs:      make(map[uint32]*ProgramState),
		buffers:       make(map[uint32]*BufferState),
		textures:      make(map[uint32]*TextureState),
		vaos:          make(map[uint32]*VertexArrayState),
		bound:         make(map[uint32]uint32),
		units:         make(map[uint32]uint32),
		active:        gl.Texture0,
		enabled:       make(map[uint32]bool),
	}
}

// PushError queues error flags as if a previous call had raised them.
func (f *Fake) PushError(codes ...uint32) { f.errs = append(f.errs, codes...) }

// Pending returns the number of queued error flags.
func (f *Fake) Pending() int { return len(f.errs) }

// Calls returns the names of all GL calls made so far, in order.
func (f *Fake) Calls() []string { return append([]string(nil), f.calls...) }

// CallCount returns how many times the named call was made.
func (f *Fake) CallCount(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *Fake) Draws() []Draw { return append([]Draw(nil), f.draws...) }

func (f *Fake) Clears() []uint32 { return append([]uint32(nil), f.clearMask...) }

func (f *Fake) Enabled(cap uint32) bool { return f.enabled[cap] }

func (f *Fake) Live() Counts {
	return Counts{
		Shaders:      len(f.shaders),
		Programs:     len(f.programs),
		Buffers:      len(f.buffers),
		Textures:     len(f.textures),
		VertexArrays: len(f.vaos),
	}
}

func (f *Fake) Shader(id uint32) *ShaderState { return f.shaders[id] }

func (f *Fake) Program(id uint32) *ProgramState { return f.programs[id] }

func (f *Fake) Buffer(id uint32) *BufferState { return f.buffers[id] }

func (f *Fake) Texture(id uint32) *TextureState { return f.textures[id] }

func (f *Fake) VertexArray(id uint32) *VertexArrayState { return f.vaos[id] }

// CurrentProgram returns the program bound with UseProgram.
func (f *Fake) CurrentProgram() uint32 { return f.program }

// ActiveUnit returns the texture unit selected with ActiveTexture.
func (f *Fake) ActiveUnit() uint32 { return f.active }

func (f *Fake) record(name string) { f.calls = append(f.calls, name) }

func (f *Fake) fail(code uint32) { f.errs = append(f.errs, code) }

func (f *Fake) gen() uint32 {
	f.nextID++
	return f.nextID
}

func (f *Fake) GetError() uint32 {
	f.record("GetError")
	if len(f.errs) == 0 {
		return gl.NoError
	}
	code := f.errs[0]
	f.errs = f.errs[1:]
	return code
}

func (f *Fake) GetString(name uint32) string {
	f.record("GetString")
	switch name {
	case gl.Version:
		return f.VersionString
	case gl.Vendor:
		return "gltest"
	case gl.Renderer:
		return "gltest fake renderer"
	}
	f.fail(gl.InvalidEnum)
	return ""
}

func (f *Fake) ClearColor(r, g, b, a float32) { f.record("ClearColor") }

func (f *Fake) Clear(mask uint32) {
	f.record("Clear")
	f.clearMask = append(f.clearMask, mask)
}

func (f *Fake) Viewport(x, y, width, height int32) {
	f.record("Viewport")
	if width < 0 || height < 0 {
		f.fail(gl.InvalidValue)
	}
}

func (f *Fake) Enable(cap uint32) {
	f.record("Enable")
	f.enabled[cap] = true
}

func (f *Fake) BlendFunc(sfactor, dfactor uint32) { f.record("BlendFunc") }

func (f *Fake) GenTextures(n int32, textures *uint32) {
	f.record("GenTextures")
	if n != 1 {
		f.fail(gl.InvalidValue)
		return
	}
	id := f.gen()
	f.textures[id] = &TextureState{Params: make(map[uint32]int32)}
	*textures = id
}

func (f *Fake) DeleteTextures(n int32, textures *uint32) {
	f.record("DeleteTextures")
	id := *textures
	delete(f.textures, id)
	for unit, t := range f.units {
		if t == id {
			delete(f.units, unit)
		}
	}
}

func (f *Fake) BindTexture(target, texture uint32) {
	f.record("BindTexture")
	if target != gl.Texture2D {
		f.fail(gl.InvalidEnum)
		return
	}
	if _, ok := f.textures[texture]; texture != 0 && !ok {
		f.fail(gl.InvalidOperation)
		return
	}
	f.units[f.active] = texture
}

func (f *Fake) ActiveTexture(texture uint32) {
	f.record("ActiveTexture")
	if texture < gl.Texture0 || texture >= gl.Texture0+32 {
		f.fail(gl.InvalidEnum)
		return
	}
	f.active = texture
}

func (f *Fake) boundTexture() *TextureState {
	return f.textures[f.units[f.active]]
}

// BoundTexture returns the texture bound to the given unit (0-based).
func (f *Fake) BoundTexture(unit int) uint32 { return f.units[gl.Texture0+uint32(unit)] }

func (f *Fake) TexParameteri(target, pname uint32, param int32) {
	f.record("TexParameteri")
	tex := f.boundTexture()
	if tex == nil {
		f.fail(gl.InvalidOperation)
		return
	}
	tex.Params[pname] = param
}

func (f *Fake) PixelStorei(pname uint32, param int32) {
	f.record("PixelStorei")
	if pname != gl.UnpackAlignment {
		f.fail(gl.InvalidEnum)
		return
	}
	switch param {
	case 1, 2, 4, 8:
		f.unpack = param
	default:
		f.fail(gl.InvalidValue)
	}
}

func (f *Fake) TexImage2D(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels []byte) {
	f.record("TexImage2D")
	tex := f.boundTexture()
	if tex == nil {
		f.fail(gl.InvalidOperation)
		return
	}
	if width < 0 || height < 0 || border != 0 {
		f.fail(gl.InvalidValue)
		return
	}
	tex.Level = level
	tex.InternalFormat = internalformat
	tex.Format = format
	tex.Type = xtype
	tex.Width = width
	tex.Height = height
	tex.Unpack = f.unpack
	tex.Pixels = append([]byte(nil), pixels...)
}

func (f *Fake) GenBuffers(n int32, buffers *uint32) {
	f.record("GenBuffers")
	id := f.gen()
	f.buffers[id] = &BufferState{}
	*buffers = id
}

func (f *Fake) DeleteBuffers(n int32, buffers *uint32) {
	f.record("DeleteBuffers")
	id := *buffers
	delete(f.buffers, id)
	for target, b := range f.bound {
		if b == id {
			delete(f.bound, target)
		}
	}
	for _, va := range f.vaos {
		if va.Element == id {
			va.Element = 0
		}
	}
}

func (f *Fake) BindBuffer(target uint32, buffer uint32) {
	f.record("BindBuffer")
	if target != gl.ArrayBuffer && target != gl.ElementArrayBuffer {
		f.fail(gl.InvalidEnum)
		return
	}
	if buffer != 0 {
		b, ok := f.buffers[buffer]
		if !ok {
			f.fail(gl.InvalidOperation)
			return
		}
		if b.Target == 0 {
			b.Target = target
		}
	}
	f.bound[target] = buffer
	if target == gl.ElementArrayBuffer {
		if va := f.vaos[f.vao]; va != nil {
			va.Element = buffer
		}
	}
}

// BoundBuffer returns the buffer bound to target.
func (f *Fake) BoundBuffer(target uint32) uint32 { return f.bound[target] }

func (f *Fake) BufferData(target uint32, data []byte, usage uint32) {
	f.record("BufferData")
	b := f.buffers[f.bound[target]]
	if b == nil {
		f.fail(gl.InvalidOperation)
		return
	}
	// Only the static hint is modelled.
	if usage != gl.StaticDraw {
		f.fail(gl.InvalidEnum)
		return
	}
	b.Data = append([]byte(nil), data...)
	b.Usage = usage
}

func (f *Fake) GenVertexArrays(n int32, arrays *uint32) {
	f.record("GenVertexArrays")
	id := f.gen()
	f.vaos[id] = &VertexArrayState{Attribs: make(map[uint32]*Attrib)}
	*arrays = id
}

func (f *Fake) DeleteVertexArrays(n int32, arrays *uint32) {
	f.record("DeleteVertexArrays")
	delete(f.vaos, *arrays)
	if f.vao == *arrays {
		f.vao = 0
	}
}

func (f *Fake) BindVertexArray(array uint32) {
	f.record("BindVertexArray")
	va, ok := f.vaos[array]
	if array != 0 && !ok {
		f.fail(gl.InvalidOperation)
		return
	}
	f.vao = array
	if va != nil {
		f.bound[gl.ElementArrayBuffer] = va.Element
	}
}

// CurrentVertexArray returns the bound vertex array object.
func (f *Fake) CurrentVertexArray() uint32 { return f.vao }

func (f *Fake) attrib(index uint32) *Attrib {
	va := f.vaos[f.vao]
	if va == nil {
		return nil
	}
	a := va.Attribs[index]
	if a == nil {
		a = &Attrib{}
		va.Attribs[index] = a
	}
	return a
}

func (f *Fake) EnableVertexAttribArray(index uint32) {
	f.record("EnableVertexAttribArray")
	a := f.attrib(index)
	if a == nil || index >= 16 {
		f.fail(gl.InvalidOperation)
		return
	}
	a.Enabled = true
}

func (f *Fake) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	f.record("VertexAttribPointer")
	if size < 1 || size > 4 || stride < 0 || index >= 16 {
		f.fail(gl.InvalidValue)
		return
	}
	a := f.attrib(index)
	if a == nil || f.bound[gl.ArrayBuffer] == 0 {
		f.fail(gl.InvalidOperation)
		return
	}
	a.Size = size
	a.Type = xtype
	a.Normalized = normalized
	a.Stride = stride
	a.Offset = offset
	a.Buffer = f.bound[gl.ArrayBuffer]
}

func (f *Fake) CreateShader(xtype uint32) uint32 {
	f.record("CreateShader")
	if xtype != gl.VertexShader && xtype != gl.FragmentShader {
		f.fail(gl.InvalidEnum)
		return 0
	}
	id := f.gen()
	f.shaders[id] = &ShaderState{Type: xtype}
	return id
}

func (f *Fake) ShaderSource(shader uint32, source string) {
	f.record("ShaderSource")
	if sh := f.shaders[shader]; sh != nil {
		sh.Source = source
		return
	}
	f.fail(gl.InvalidValue)
}

func defaultCompile(stage uint32, src string) (string, bool) {
	if i := strings.Index(src, "#error"); i >= 0 {
		line := 1 + strings.Count(src[:i], "\n")
		msg := strings.TrimSpace(strings.SplitN(src[i+len("#error"):], "\n", 2)[0])
		return fmt.Sprintf("ERROR: 0:%d: '#error' : %s\n", line, msg), false
	}
	if !strings.Contains(src, "void main") {
		return "ERROR: 0:1: 'main' : function not defined\n", false
	}
	return "", true
}

func (f *Fake) CompileShader(shader uint32) {
	f.record("CompileShader")
	sh := f.shaders[shader]
	if sh == nil {
		f.fail(gl.InvalidValue)
		return
	}
	hook := f.CompileHook
	if hook == nil {
		hook = defaultCompile
	}
	sh.Log, sh.Compiled = hook(sh.Type, sh.Source)
}

func (f *Fake) GetShaderiv(shader uint32, pname uint32, params *int32) {
	f.record("GetShaderiv")
	sh := f.shaders[shader]
	if sh == nil {
		f.fail(gl.InvalidValue)
		return
	}
	switch pname {
	case gl.CompileStatus:
		*params = boolInt(sh.Compiled)
	case gl.InfoLogLength:
		*params = logLength(sh.Log)
	default:
		f.fail(gl.InvalidEnum)
	}
}

func (f *Fake) GetShaderInfoLog(shader uint32) string {
	f.record("GetShaderInfoLog")
	if sh := f.shaders[shader]; sh != nil {
		return sh.Log
	}
	f.fail(gl.InvalidValue)
	return ""
}

func (f *Fake) DeleteShader(shader uint32) {
	f.record("DeleteShader")
	if shader == 0 {
		return
	}
	if _, ok := f.shaders[shader]; !ok {
		f.fail(gl.InvalidValue)
		return
	}
	delete(f.shaders, shader)
}

func (f *Fake) CreateProgram() uint32 {
	f.record("CreateProgram")
	id := f.gen()
	f.programs[id] = &ProgramState{
		Sources:   make(map[uint32]string),
		Locations: make(map[string]int32),
		Values:    make(map[int32][]float32),
	}
	return id
}

func (f *Fake) AttachShader(program uint32, shader uint32) {
	f.record("AttachShader")
	p, sh := f.programs[program], f.shaders[shader]
	if p == nil || sh == nil {
		f.fail(gl.InvalidValue)
		return
	}
	p.Attached = append(p.Attached, shader)
}

func (f *Fake) DetachShader(program uint32, shader uint32) {
	f.record("DetachShader")
	p := f.programs[program]
	if p == nil {
		f.fail(gl.InvalidValue)
		return
	}
	for i, id := range p.Attached {
		if id == shader {
			p.Attached = append(p.Attached[:i], p.Attached[i+1:]...)
			return
		}
	}
	f.fail(gl.InvalidOperation)
}

var uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*(?:\[\d+\])?\s*;`)

func (f *Fake) LinkProgram(program uint32) {
	f.record("LinkProgram")
	p := f.programs[program]
	if p == nil {
		f.fail(gl.InvalidValue)
		return
	}
	p.Linked = false
	p.Locations = make(map[string]int32)
	sources := make(map[uint32]string)
	for _, id := range p.Attached {
		sh := f.shaders[id]
		if sh == nil || !sh.Compiled {
			p.Log = "error: attached shader is not compiled\n"
			return
		}
		sources[sh.Type] = sh.Source
	}
	if sources[gl.VertexShader] == "" || sources[gl.FragmentShader] == "" {
		p.Log = "error: program requires a vertex and a fragment shader\n"
		return
	}
	if f.LinkHook != nil {
		log, ok := f.LinkHook(sources)
		if !ok {
			p.Log = log
			return
		}
	}
	p.Sources = sources
	var next int32
	for _, stage := range []uint32{gl.VertexShader, gl.FragmentShader} {
		for _, m := range uniformDecl.FindAllStringSubmatch(sources[stage], -1) {
			if _, ok := p.Locations[m[1]]; !ok {
				p.Locations[m[1]] = next
				next++
			}
		}
	}
	p.Log = ""
	p.Linked = true
}

func (f *Fake) ValidateProgram(program uint32) {
	f.record("ValidateProgram")
	p := f.programs[program]
	if p == nil {
		f.fail(gl.InvalidValue)
		return
	}
	p.Validated = p.Linked && f.ValidateOK
	if !p.Validated && p.Log == "" {
		p.Log = "validation failed: sampler units not configured\n"
	}
}

func (f *Fake) GetProgramiv(program uint32, pname uint32, params *int32) {
	f.record("GetProgramiv")
	p := f.programs[program]
	if p == nil {
		f.fail(gl.InvalidValue)
		return
	}
	switch pname {
	case gl.LinkStatus:
		*params = boolInt(p.Linked)
	case gl.ValidateStatus:
		*params = boolInt(p.Validated)
	case gl.InfoLogLength:
		*params = logLength(p.Log)
	default:
		f.fail(gl.InvalidEnum)
	}
}

func (f *Fake) GetProgramInfoLog(program uint32) string {
	f.record("GetProgramInfoLog")
	if p := f.programs[program]; p != nil {
		return p.Log
	}
	f.fail(gl.InvalidValue)
	return ""
}

func (f *Fake) UseProgram(program uint32) {
	f.record("UseProgram")
	if program != 0 {
		p := f.programs[program]
		if p == nil || !p.Linked {
			f.fail(gl.InvalidOperation)
			return
		}
	}
	f.program = program
}

func (f *Fake) DeleteProgram(program uint32) {
	f.record("DeleteProgram")
	if program == 0 {
		return
	}
	delete(f.programs, program)
	if f.program == program {
		f.program = 0
	}
}

func (f *Fake) GetUniformLocation(program uint32, name string) int32 {
	f.record("GetUniformLocation")
	p := f.programs[program]
	if p == nil || !p.Linked {
		f.fail(gl.InvalidOperation)
		return -1
	}
	if loc, ok := p.Locations[name]; ok {
		return loc
	}
	return -1
}

func (f *Fake) setUniform(location int32, values ...float32) {
	p := f.programs[f.program]
	if p == nil {
		f.fail(gl.InvalidOperation)
		return
	}
	if location == -1 {
		return
	}
	p.Values[location] = values
}

func (f *Fake) Uniform1i(location int32, v0 int32) {
	f.record("Uniform1i")
	f.setUniform(location, float32(v0))
}

func (f *Fake) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	f.record("Uniform4f")
	f.setUniform(location, v0, v1, v2, v3)
}

func (f *Fake) UniformMatrix4fv(location int32, count int32, transpose bool, value *float32) {
	f.record("UniformMatrix4fv")
	if count != 1 || value == nil {
		f.fail(gl.InvalidValue)
		return
	}
	m := unsafe.Slice(value, 16)
	f.setUniform(location, append([]float32(nil), m...)...)
}

func (f *Fake) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	f.record("DrawElements")
	if xtype != gl.UnsignedInt && xtype != gl.UnsignedShort && xtype != gl.UnsignedByte {
		f.fail(gl.InvalidEnum)
		return
	}
	haveData := f.bound[gl.ElementArrayBuffer] != 0
	if count < 0 {
		f.fail(gl.InvalidValue)
		return
	}
	if f.program == 0 || f.vao == 0 || !haveData {
		f.fail(gl.InvalidOperation)
		return
	}
	f.draws = append(f.draws, Draw{
		Program:     f.program,
		VertexArray: f.vao,
		Texture:     f.units[f.active],
		Mode:        mode,
		Count:       count,
	})
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// logLength mimics drivers, which include the NUL terminator in INFO_LOG_LENGTH.
func logLength(log string) int32 {
	if log == "" {
		return 0
	}
	return int32(len(log) + 1)
}
