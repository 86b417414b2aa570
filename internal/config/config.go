// Package config holds quadgl's settings, read from an optional YAML file
// and overridden by command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	Filename = "quadgl.yml"

	maxConfigSize  = 1024 * 1024 // 1MB
	maxTextureUnit = 31
)

var (
	ErrWorldWritable = errors.New("config file is world-writable")
	ErrTooLarge      = errors.New("config file too large")
	ErrInvalid       = errors.New("invalid config")
)

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

type Shaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type Image struct {
	Path string `yaml:"path"`
	// Flip stores rows bottom to top so the image is upright in GL.
	Flip bool `yaml:"flip"`
	Slot int  `yaml:"slot"`
}

type Debug struct {
	// Trap raises a breakpoint on GL errors when a debugger is attached.
	Trap    bool `yaml:"trap"`
	Verbose bool `yaml:"verbose"`
}

type Config struct {
	Window     Window     `yaml:"window"`
	Shaders    Shaders    `yaml:"shaders"`
	Image      Image      `yaml:"image"`
	Debug      Debug      `yaml:"debug"`
	ClearColor [4]float32 `yaml:"clear_color"`
	// Frames stops the loop after this many frames. Zero runs until the
	// window is closed.
	Frames int `yaml:"frames"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:  "quadgl",
			Width:  1200,
			Height: 900,
			VSync:  true,
		},
		Shaders: Shaders{
			Vertex:   "shaders/vertex.glsl",
			Fragment: "shaders/fragment.glsl",
		},
		Image: Image{
			Path: "assets/logo.png",
			Flip: true,
		},
		Debug:      Debug{Trap: true},
		ClearColor: [4]float32{0, 0, 0, 1},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// World-writable and oversized files are refused.
func Load(path string) (Config, error) {
	cfg := Default()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("no config file, using defaults", "category", "io", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0002 != 0 {
		slog.Error("config is world-writable, refusing to load", "category", "io", "path", path, "mode", info.Mode())
		return cfg, fmt.Errorf("%s: %w", path, ErrWorldWritable)
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	slog.Info("loaded config", "category", "io", "path", path, "size", info.Size())
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Shaders.Vertex == "" || c.Shaders.Fragment == "":
		return fmt.Errorf("%w: shader paths must be set", ErrInvalid)
	case c.Image.Path == "":
		return fmt.Errorf("%w: image path must be set", ErrInvalid)
	case c.Image.Slot < 0 || c.Image.Slot > maxTextureUnit:
		return fmt.Errorf("%w: texture slot %d not in 0..%d", ErrInvalid, c.Image.Slot, maxTextureUnit)
	case c.Frames < 0:
		return fmt.Errorf("%w: negative frame count %d", ErrInvalid, c.Frames)
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color[%d] = %v not in [0,1]", ErrInvalid, i, v)
		}
	}
	return nil
}
