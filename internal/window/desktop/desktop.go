// Package desktop implements window.Window with GLFW.
package desktop

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/tinyrange/quadgl/internal/gl"
	"github.com/tinyrange/quadgl/internal/window"
)

var keys = map[window.Key]glfw.Key{
	window.KeyR:      glfw.KeyR,
	window.KeyEscape: glfw.KeyEscape,
	window.KeyLeft:   glfw.KeyLeft,
	window.KeyRight:  glfw.KeyRight,
	window.KeyUp:     glfw.KeyUp,
	window.KeyDown:   glfw.KeyDown,
}

type GLFW struct {
	win *glfw.Window
	gl  gl.OpenGL
}

var _ window.Window = (*GLFW)(nil)

// New opens a window with an OpenGL 3.3 core context made current on the
// calling thread. It must run on the main OS thread, locked by the caller
// from an init function; Close releases that lock.
func New(opts window.Options) (*GLFW, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	slog.Debug("window created", "category", "window", "title", opts.Title,
		"width", opts.Width, "height", opts.Height, "vsync", opts.VSync)
	return &GLFW{win: win}, nil
}

func (w *GLFW) GL() (gl.OpenGL, error) {
	if w.gl != nil {
		return w.gl, nil
	}
	g, err := gl.Load(glfw.GetProcAddress)
	if err != nil {
		return nil, fmt.Errorf("load OpenGL: %w", err)
	}
	w.gl = g
	return g, nil
}

func (w *GLFW) Poll() bool {
	glfw.PollEvents()
	return !w.win.ShouldClose()
}

func (w *GLFW) Swap() {
	w.win.SwapBuffers()
}

func (w *GLFW) BackingSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *GLFW) KeyDown(key window.Key) bool {
	k, ok := keys[key]
	if !ok {
		return false
	}
	return w.win.GetKey(k) == glfw.Press
}

func (w *GLFW) SetTitle(title string) {
	w.win.SetTitle(title)
}

func (w *GLFW) Close() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
	runtime.UnlockOSThread()
}
