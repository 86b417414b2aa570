// Package app implements the quadgl command: flag and config handling,
// logging setup and the window/renderer lifecycle.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/tinyrange/quadgl/internal/config"
	"github.com/tinyrange/quadgl/internal/loader"
	"github.com/tinyrange/quadgl/internal/render"
	"github.com/tinyrange/quadgl/internal/window"
)

type App struct {
	Stderr    io.Writer
	NewWindow func(window.Options) (window.Window, error)
	// Progress enables progress bars for large resource reads.
	Progress bool
}

// New returns an App writing diagnostics to stderr, with progress bars when
// stderr is a terminal.
func New(newWindow func(window.Options) (window.Window, error)) *App {
	return &App{
		Stderr:    os.Stderr,
		NewWindow: newWindow,
		Progress:  term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Run parses args, loads the configuration and renders until the window is
// closed. A canceled ctx ends the loop without error.
func (a *App) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quadgl", flag.ContinueOnError)
	fs.SetOutput(a.Stderr)

	configPath := fs.String("config", config.Filename, "Path to the YAML config file")
	vertex := fs.String("vertex", "", "Vertex shader path (overrides config)")
	fragment := fs.String("fragment", "", "Fragment shader path (overrides config)")
	imagePath := fs.String("image", "", "Texture image path (overrides config)")
	width := fs.Int("width", 0, "Window width")
	height := fs.Int("height", 0, "Window height")
	title := fs.String("title", "", "Window title")
	vsync := fs.Bool("vsync", true, "Synchronize swaps with the display refresh")
	frames := fs.Int("frames", 0, "Stop after this many frames (0 runs until closed)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	noTrap := fs.Bool("no-trap", false, "Never raise a breakpoint on GL errors")
	flip := fs.Bool("flip", true, "Flip the image vertically on load")
	fs.Usage = func() {
		fmt.Fprintf(a.Stderr, "Usage: quadgl [flags]\n\n")
		fmt.Fprintf(a.Stderr, "Draw a textured quad with OpenGL 3.3.\n\n")
		fmt.Fprintf(a.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	level := new(slog.LevelVar)
	if *debug {
		level.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "category", "io", "path", *configPath, "error", err)
		return err
	}
	if cfg.Debug.Verbose {
		level.Set(slog.LevelDebug)
	}

	// Flags override the file only when given explicitly.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "vertex":
			cfg.Shaders.Vertex = *vertex
		case "fragment":
			cfg.Shaders.Fragment = *fragment
		case "image":
			cfg.Image.Path = *imagePath
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "title":
			cfg.Window.Title = *title
		case "vsync":
			cfg.Window.VSync = *vsync
		case "frames":
			cfg.Frames = *frames
		case "no-trap":
			cfg.Debug.Trap = !*noTrap
		case "flip":
			cfg.Image.Flip = *flip
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	win, err := a.NewWindow(window.Options{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		logger.Error("failed to create window", "category", "window", "error", err)
		return err
	}
	defer win.Close()

	r, err := render.Setup(ctx, win, cfg,
		render.WithLogger(logger),
		render.WithLoader(&loader.Loader{Progress: a.Progress, ProgressOutput: a.Stderr, Logger: logger}),
	)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Debug("window closed", "category", "window")
	return nil
}

// ExitCode maps an error from Run to a process exit status: the system
// error number when one is wrapped, 1 otherwise.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	return 1
}
