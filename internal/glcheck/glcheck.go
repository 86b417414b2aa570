// Package glcheck wraps GL calls so that errors raised by a specific call are
// reported at its call site instead of surfacing frames later.
package glcheck

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/tinyrange/quadgl/internal/gl"
)

// maxDrain bounds the drain loop. A lost context may report an error on
// every GetError call.
const maxDrain = 64

// Error is a GL error flag raised by a checked call.
type Error struct {
	Code uint32
	Expr string
	File string
	Line int
}

func (e Error) Name() string { return gl.ErrorName(e.Code) }

func (e Error) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s (0x%04x)", e.File, e.Line, e.Expr, e.Name(), e.Code)
}

// Checker runs GL calls with the error queue drained before and after.
type Checker struct {
	gl       gl.OpenGL
	debugger Debugger
	logger   *slog.Logger
}

// New returns a Checker for the given context. A nil logger uses slog.Default.
func New(g gl.OpenGL, debugger Debugger, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{gl: g, debugger: debugger, logger: logger}
}

// Drain discards pending error flags and returns how many were discarded.
func (c *Checker) Drain() int {
	n := 0
	for ; n < maxDrain; n++ {
		if c.gl.GetError() == gl.NoError {
			break
		}
	}
	return n
}

// Call drains stale errors, runs fn and reports every error it raised. The
// returned slice is empty when fn raised nothing.
func (c *Checker) Call(expr string, fn func()) []Error {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	file = filepath.Base(file)

	if n := c.Drain(); n > 0 {
		c.logger.Debug("discarded stale GL errors", "category", "gl", "count", n, "expr", expr)
	}

	fn()

	var errs []Error
	for i := 0; i < maxDrain; i++ {
		code := c.gl.GetError()
		if code == gl.NoError {
			break
		}

		e := Error{Code: code, Expr: expr, File: file, Line: line}
		errs = append(errs, e)
		c.logger.Error("[GL_CHECK ERROR]",
			"category", "gl",
			"file", file,
			"line", line,
			"expr", expr,
			"code", fmt.Sprintf("0x%04x", code),
			"name", e.Name(),
		)

		if len(errs) == 1 {
			c.debugger.Trap()
		}
	}
	return errs
}
