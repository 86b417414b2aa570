// Package render sets up the textured quad and runs the fixed-step frame
// loop.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tinyrange/quadgl/internal/config"
	"github.com/tinyrange/quadgl/internal/geometry"
	"github.com/tinyrange/quadgl/internal/gl"
	"github.com/tinyrange/quadgl/internal/glcheck"
	"github.com/tinyrange/quadgl/internal/loader"
	"github.com/tinyrange/quadgl/internal/shader"
	"github.com/tinyrange/quadgl/internal/texture"
	"github.com/tinyrange/quadgl/internal/window"
)

// Uniform names the shaders share with the renderer. uTexture and uMvp are
// required; uPulse is written only when declared.
const (
	UniformTexture = "uTexture"
	UniformMVP     = "uMvp"
	UniformPulse   = "uPulse"
)

type Option func(*Renderer)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// MaxFrames stops Run after n frames. Zero runs until the window closes.
func MaxFrames(n int) Option {
	return func(r *Renderer) { r.maxFrames = n }
}

func WithLoader(l *loader.Loader) Option {
	return func(r *Renderer) { r.loader = l }
}

// WithDebugger overrides debugger detection.
func WithDebugger(d glcheck.Debugger) Option {
	return func(r *Renderer) { r.debugger = &d }
}

// WithClock replaces time.Now for frame statistics.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

type Renderer struct {
	gl     gl.OpenGL
	win    window.Window
	cfg    config.Config
	check  *glcheck.Checker
	logger *slog.Logger
	loader *loader.Loader
	now    func() time.Time

	debugger  *glcheck.Debugger
	maxFrames int
	overlay   *Overlay

	vao        *geometry.VertexArray
	vertices   *geometry.Buffer
	indices    *geometry.Buffer
	indexCount int32
	drawExpr   string
	program    *shader.Program
	texture    *texture.Texture
	hasPulse   bool

	width, height int
	closed        bool
}

// Setup creates every GPU resource the loop needs. On error, whatever was
// created is released before returning.
func Setup(ctx context.Context, win window.Window, cfg config.Config, opts ...Option) (_ *Renderer, err error) {
	r := &Renderer{
		win:       win,
		cfg:       cfg,
		logger:    slog.Default(),
		loader:    &loader.Loader{},
		now:       time.Now,
		maxFrames: cfg.Frames,
		overlay:   NewOverlay(cfg.Window.Title),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader.Logger == nil {
		r.loader.Logger = r.logger
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.gl, err = win.GL()
	if err != nil {
		r.logger.Error("failed to load OpenGL", "category", "window", "error", err)
		return nil, err
	}

	version := r.gl.GetString(gl.Version)
	r.logger.Info("OpenGL context",
		"category", "gl",
		"version", version,
		"vendor", r.gl.GetString(gl.Vendor),
		"renderer", r.gl.GetString(gl.Renderer),
	)
	if err := CheckVersion(version); err != nil {
		r.logger.Error("OpenGL version too old", "category", "gl", "error", err)
		return nil, err
	}

	debugger := glcheck.Debugger{}
	if cfg.Debug.Trap {
		if r.debugger != nil {
			debugger = *r.debugger
		} else {
			debugger = glcheck.DetectDebugger()
		}
	}
	if debugger.Attached {
		r.logger.Info("debugger attached, GL errors will trap", "category", "gl")
	}
	r.check = glcheck.New(r.gl, debugger, r.logger)

	defer func() {
		if err != nil {
			r.Close()
		}
	}()

	r.gl.Enable(gl.Blend)
	r.gl.BlendFunc(gl.SrcAlpha, gl.OneMinusSrcAlpha)
	c := cfg.ClearColor
	r.gl.ClearColor(c[0], c[1], c[2], c[3])
	r.resize()

	if err := r.setupGeometry(); err != nil {
		return nil, err
	}
	if err := r.setupProgram(); err != nil {
		return nil, err
	}
	if err := r.setupTexture(); err != nil {
		return nil, err
	}
	if err := r.setupUniforms(); err != nil {
		return nil, err
	}

	if errs := r.check.Call("setup", func() {}); len(errs) > 0 {
		r.logger.Warn("GL errors raised during setup", "category", "gl", "count", len(errs))
	}
	return r, nil
}

func (r *Renderer) setupGeometry() error {
	r.vao = geometry.NewVertexArray(r.gl)

	vertices, indices := geometry.Quad()
	var err error
	r.vertices, err = geometry.Upload(r.gl, gl.ArrayBuffer, geometry.Float32Bytes(vertices), gl.StaticDraw)
	if err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}
	if _, err := geometry.DescribeLayout(r.gl, geometry.QuadLayout, r.logger); err != nil {
		return fmt.Errorf("describe vertex layout: %w", err)
	}
	r.indices, err = geometry.Upload(r.gl, gl.ElementArrayBuffer, geometry.Uint32Bytes(indices), gl.StaticDraw)
	if err != nil {
		return fmt.Errorf("upload indices: %w", err)
	}
	r.indexCount = int32(len(indices))
	r.drawExpr = fmt.Sprintf("DrawElements(TRIANGLES, %d, UNSIGNED_INT, 0)", r.indexCount)
	return nil
}

func (r *Renderer) setupProgram() error {
	vertexSrc, err := r.loader.ReadText(r.cfg.Shaders.Vertex)
	if err != nil {
		return fmt.Errorf("load vertex shader: %w", err)
	}
	fragmentSrc, err := r.loader.ReadText(r.cfg.Shaders.Fragment)
	if err != nil {
		return fmt.Errorf("load fragment shader: %w", err)
	}

	r.program, err = shader.Build(r.gl, vertexSrc, fragmentSrc, r.logger)
	if err != nil {
		return err
	}
	r.program.Use()
	return nil
}

func (r *Renderer) setupTexture() error {
	data, err := r.loader.ReadFile(r.cfg.Image.Path)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	img, err := texture.Decode(bytes.NewReader(data), r.cfg.Image.Flip, r.logger)
	if err != nil {
		r.logger.Error("failed to decode image", "category", "format", "path", r.cfg.Image.Path, "error", err)
		return fmt.Errorf("%s: %w", r.cfg.Image.Path, err)
	}
	r.texture, err = texture.Upload(r.gl, img, r.cfg.Image.Slot, r.logger)
	if err != nil {
		return fmt.Errorf("%s: %w", r.cfg.Image.Path, err)
	}
	return nil
}

func (r *Renderer) setupUniforms() error {
	if err := r.program.Resolve(UniformTexture, UniformMVP); err != nil {
		return err
	}
	if err := r.program.SetInt(UniformTexture, int32(r.cfg.Image.Slot)); err != nil {
		return err
	}
	_, err := r.program.Uniform(UniformPulse)
	r.hasPulse = err == nil
	return nil
}

// resize matches the viewport to the framebuffer when it changed.
func (r *Renderer) resize() {
	w, h := r.win.BackingSize()
	if w == r.width && h == r.height {
		return
	}
	r.width, r.height = w, h
	r.gl.Viewport(0, 0, int32(w), int32(h))
}

// Frame draws frame k and returns the uniform state it used.
func (r *Renderer) Frame(k int) FrameState {
	r.resize()
	r.gl.Clear(gl.ColorBufferBit)

	s := StateAt(k, Step, r.overlay.Scale)

	r.vao.Bind()
	r.program.Use()
	// Both uniforms were resolved in Setup.
	_ = r.program.SetMat4(UniformMVP, s.MVP)
	if r.hasPulse {
		_ = r.program.SetFloat4(UniformPulse, mgl32.Vec4{s.Pulse[0], s.Pulse[1], s.Pulse[2], 1})
	}

	r.check.Call(r.drawExpr, func() {
		r.gl.DrawElements(gl.Triangles, r.indexCount, gl.UnsignedInt, 0)
	})
	return s
}

// Run draws frames until the window closes, Escape is pressed, the frame
// limit is reached or ctx is done. It returns ctx.Err() in the last case.
func (r *Renderer) Run(ctx context.Context) error {
	for k := 0; r.win.Poll(); k++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.maxFrames > 0 && k >= r.maxFrames {
			return nil
		}
		if r.win.KeyDown(window.KeyEscape) {
			r.logger.Debug("escape pressed", "category", "window", "frame", k)
			return nil
		}

		r.Frame(k)
		if title, ok := r.overlay.Update(r.win.KeyDown, r.now()); ok {
			r.win.SetTitle(title)
		}
		r.win.Swap()
	}
	return nil
}

// Overlay exposes the interactive state, mainly for tests.
func (r *Renderer) Overlay() *Overlay { return r.overlay }

// Close releases every GPU resource. Calling it again is a no-op.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true

	if r.texture != nil {
		r.texture.Delete()
	}
	if r.program != nil {
		r.program.Delete()
	}
	if r.indices != nil {
		r.indices.Delete()
	}
	if r.vertices != nil {
		r.vertices.Delete()
	}
	if r.vao != nil {
		r.vao.Delete()
	}
}
