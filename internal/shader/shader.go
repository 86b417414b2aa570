// Package shader compiles GLSL stages and links them into programs.
package shader

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tinyrange/quadgl/internal/gl"
)

// Stage is a programmable pipeline stage.
type Stage uint32

const (
	Vertex   Stage = gl.VertexShader
	Fragment Stage = gl.FragmentShader
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(0x%04x)", uint32(s))
	}
}

// Source is the text of one stage.
type Source struct {
	Stage Stage
	Text  string
}

// Compiled is a successfully compiled stage. It is only needed until link.
type Compiled struct {
	Handle uint32
	Stage  Stage
}

// Compile compiles src for stage. On failure the shader object is deleted and
// the driver log is returned in a *CompileError. A nil logger uses
// slog.Default.
func Compile(g gl.OpenGL, stage Stage, src string, logger *slog.Logger) (Compiled, error) {
	if logger == nil {
		logger = slog.Default()
	}
	handle := g.CreateShader(uint32(stage))
	if handle == 0 {
		return Compiled{}, fmt.Errorf("create %s shader: %w", stage, ErrCompile)
	}

	g.ShaderSource(handle, src)
	g.CompileShader(handle)

	var status int32
	g.GetShaderiv(handle, gl.CompileStatus, &status)
	if status == 0 {
		log := g.GetShaderInfoLog(handle)
		g.DeleteShader(handle)
		logger.Error("shader compilation failed", "category", "compile", "stage", stage.String(), "log", log)
		return Compiled{}, &CompileError{Stage: stage, Log: log}
	}

	return Compiled{Handle: handle, Stage: stage}, nil
}

// Build compiles and links a program from a vertex and a fragment source.
// It either returns a linked program or leaves no GL objects behind.
func Build(g gl.OpenGL, vertexSrc, fragmentSrc string, logger *slog.Logger) (*Program, error) {
	if logger == nil {
		logger = slog.Default()
	}
	stages := []Source{
		{Stage: Vertex, Text: vertexSrc},
		{Stage: Fragment, Text: fragmentSrc},
	}

	var compiled []Compiled
	defer func() {
		for _, c := range compiled {
			g.DeleteShader(c.Handle)
		}
	}()

	for _, src := range stages {
		c, err := Compile(g, src.Stage, src.Text, logger)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, c)
	}

	handle := g.CreateProgram()
	if handle == 0 {
		return nil, fmt.Errorf("create program: %w", ErrLink)
	}
	for _, c := range compiled {
		g.AttachShader(handle, c.Handle)
	}
	g.LinkProgram(handle)
	for _, c := range compiled {
		g.DetachShader(handle, c.Handle)
	}

	var status int32
	g.GetProgramiv(handle, gl.LinkStatus, &status)
	if status == 0 {
		log := g.GetProgramInfoLog(handle)
		g.DeleteProgram(handle)
		logger.Error("program link failed", "category", "link", "log", log)
		return nil, &LinkError{Log: log}
	}

	// Validation depends on state set later (sampler units), so a failure
	// here is only worth a warning.
	g.ValidateProgram(handle)
	g.GetProgramiv(handle, gl.ValidateStatus, &status)
	if status == 0 {
		logger.Warn("program validation failed", "category", "link", "log", g.GetProgramInfoLog(handle))
	}

	return &Program{
		Handle:    handle,
		gl:        g,
		logger:    logger,
		locations: make(map[string]int32),
	}, nil
}

// Program is a linked shader program with a cache of resolved uniforms.
type Program struct {
	Handle uint32

	gl        gl.OpenGL
	logger    *slog.Logger
	locations map[string]int32
}

// Uniform returns the location of name, querying the driver only once per
// name.
func (p *Program) Uniform(name string) (int32, error) {
	if loc, ok := p.locations[name]; ok {
		return loc, nil
	}
	loc := p.gl.GetUniformLocation(p.Handle, name)
	if loc == -1 {
		return -1, &UniformError{Name: name}
	}
	p.locations[name] = loc
	return loc, nil
}

// Resolve looks up every name and reports all that are missing.
func (p *Program) Resolve(names ...string) error {
	var errs []error
	for _, name := range names {
		if _, err := p.Uniform(name); err != nil {
			p.logger.Error("required uniform missing", "category", "uniform", "name", name)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Program) Use() {
	p.gl.UseProgram(p.Handle)
}

// Delete releases the program. Calling it again is a no-op.
func (p *Program) Delete() {
	if p.Handle == 0 {
		return
	}
	p.gl.DeleteProgram(p.Handle)
	p.Handle = 0
	clear(p.locations)
}

// The setters below write to the program currently in use.

func (p *Program) SetInt(name string, v int32) error {
	loc, err := p.Uniform(name)
	if err != nil {
		return err
	}
	p.gl.Uniform1i(loc, v)
	return nil
}

func (p *Program) SetFloat4(name string, v mgl32.Vec4) error {
	loc, err := p.Uniform(name)
	if err != nil {
		return err
	}
	p.gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	return nil
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) error {
	loc, err := p.Uniform(name)
	if err != nil {
		return err
	}
	p.gl.UniformMatrix4fv(loc, 1, false, &m[0])
	return nil
}
