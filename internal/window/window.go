// Package window defines the platform window the renderer draws into.
package window

import "github.com/tinyrange/quadgl/internal/gl"

type Window interface {
	// GL returns the entry points of the window's context. The context is
	// current on the thread that created the window.
	GL() (gl.OpenGL, error)
	Close()
	// Poll processes pending events and reports whether the window should
	// stay open.
	Poll() bool
	Swap()
	BackingSize() (width, height int)
	KeyDown(key Key) bool
	SetTitle(title string)
}

// Options configure a new window.
type Options struct {
	Title  string
	Width  int
	Height int
	// VSync sets the swap interval to one frame.
	VSync bool
}
