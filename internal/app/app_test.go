package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/tinyrange/quadgl/internal/gl"
	"github.com/tinyrange/quadgl/internal/gl/gltest"
	"github.com/tinyrange/quadgl/internal/shader"
	"github.com/tinyrange/quadgl/internal/texture"
	"github.com/tinyrange/quadgl/internal/window"
)

const vertexSrc = `#version 330 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aUV;
uniform mat4 uMvp;
out vec2 vUV;
void main() { vUV = aUV; gl_Position = uMvp * vec4(aPos, 0.0, 1.0); }
`

const fragmentSrc = `#version 330 core
in vec2 vUV;
uniform sampler2D uTexture;
out vec4 color;
void main() { color = texture(uTexture, vUV); }
`

// headless is a window that never closes on its own.
type headless struct {
	gl     *gltest.Fake
	opts   window.Options
	closed bool
}

func (h *headless) GL() (gl.OpenGL, error) { return h.gl, nil }

func (h *headless) Close() { h.closed = true }

func (h *headless) Poll() bool { return true }

func (h *headless) Swap() {}

func (h *headless) BackingSize() (int, int) { return h.opts.Width, h.opts.Height }

func (h *headless) KeyDown(window.Key) bool { return false }

func (h *headless) SetTitle(string) {}

type harness struct {
	app    *App
	win    *headless
	stderr bytes.Buffer
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}
	h.app = &App{
		Stderr: &h.stderr,
		NewWindow: func(opts window.Options) (window.Window, error) {
			h.win = &headless{gl: gltest.New(), opts: opts}
			return h.win, nil
		},
	}

	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(h.dir, name), data, 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	write("vertex.glsl", []byte(vertexSrc))
	write("fragment.glsl", []byte(fragmentSrc))

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	write("logo.png", buf.Bytes())
	return h
}

func (h *harness) args(extra ...string) []string {
	return append([]string{
		"-config", filepath.Join(h.dir, "absent.yml"),
		"-vertex", filepath.Join(h.dir, "vertex.glsl"),
		"-fragment", filepath.Join(h.dir, "fragment.glsl"),
		"-image", filepath.Join(h.dir, "logo.png"),
		"-no-trap",
	}, extra...)
}

func TestRun(t *testing.T) {
	h := newHarness(t)

	err := h.app.Run(context.Background(), h.args("-frames", "4", "-title", "smoke", "-width", "320", "-height", "240"))
	if err != nil {
		t.Fatalf("Run failed: %v\n%s", err, h.stderr.String())
	}

	if h.win.opts.Title != "smoke" || h.win.opts.Width != 320 || h.win.opts.Height != 240 {
		t.Errorf("flags not applied to window: %+v", h.win.opts)
	}
	if n := len(h.win.gl.Draws()); n != 4 {
		t.Errorf("expected 4 draws, got %d", n)
	}
	if live := h.win.gl.Live(); live != (gltest.Counts{}) {
		t.Errorf("resources leaked after Run: %+v", live)
	}
	if !h.win.closed {
		t.Errorf("window not closed")
	}
}

func TestRunConfigFile(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.dir, "quadgl.yml")
	body := fmt.Sprintf("window:\n  title: from-file\nframes: 2\nshaders:\n  vertex: %s\n  fragment: %s\nimage:\n  path: %s\n",
		filepath.Join(h.dir, "vertex.glsl"), filepath.Join(h.dir, "fragment.glsl"), filepath.Join(h.dir, "logo.png"))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := h.app.Run(context.Background(), []string{"-config", cfgPath, "-frames", "3"}); err != nil {
		t.Fatalf("Run failed: %v\n%s", err, h.stderr.String())
	}
	if h.win.opts.Title != "from-file" {
		t.Errorf("expected title from config, got %q", h.win.opts.Title)
	}
	// The flag wins over the file.
	if n := len(h.win.gl.Draws()); n != 3 {
		t.Errorf("expected 3 draws, got %d", n)
	}
}

func TestRunMissingShader(t *testing.T) {
	h := newHarness(t)
	args := h.args("-frames", "1", "-vertex", filepath.Join(h.dir, "nope.glsl"))

	err := h.app.Run(context.Background(), args)
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("expected ENOENT, got %v", err)
	}
	if code := ExitCode(err); code != int(syscall.ENOENT) {
		t.Errorf("expected exit code %d, got %d", int(syscall.ENOENT), code)
	}
	if !strings.Contains(h.stderr.String(), "category=io") {
		t.Errorf("expected io category in logs:\n%s", h.stderr.String())
	}
}

func TestRunCanceled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Setup refuses a canceled context before touching the window's GL.
	err := h.app.Run(ctx, h.args())
	if code := ExitCode(err); code != 0 {
		t.Errorf("expected exit code 0 for cancellation, got %d (%v)", code, err)
	}
}

func TestRunBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown flag", []string{"-bogus"}, 1},
		{"help", []string{"-h"}, 0},
		{"positional", []string{"extra"}, 1},
		{"bad size", []string{"-config", "absent.yml", "-width", "0"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.app.Run(context.Background(), tt.args)
			if code := ExitCode(err); code != tt.code {
				t.Errorf("expected exit code %d, got %d (%v)", tt.code, code, err)
			}
			if h.win != nil {
				t.Errorf("window must not be created")
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), 0},
		{"errno", fmt.Errorf("open: %w", &os.PathError{Op: "open", Path: "x", Err: syscall.EACCES}), int(syscall.EACCES)},
		{"channels", &texture.UnsupportedChannelsError{Channels: 2}, 1},
		{"compile", &shader.CompileError{Stage: shader.Fragment, Log: "ERROR"}, 1},
		{"plain", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
