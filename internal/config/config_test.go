package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), Filename)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// Chmod explicitly; WriteFile is subject to the umask.
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Shaders.Vertex != "shaders/vertex.glsl" || cfg.Shaders.Fragment != "shaders/fragment.glsl" {
		t.Errorf("unexpected default shader paths %+v", cfg.Shaders)
	}
	if cfg.Image.Path != "assets/logo.png" || !cfg.Image.Flip {
		t.Errorf("unexpected default image %+v", cfg.Image)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  title: demo
  width: 640
  vsync: false
image:
  path: testdata/gray.png
  flip: false
debug:
  trap: false
clear_color: [0.45, 0.55, 0.6, 1]
frames: 120
`, 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Window.Title != "demo" || cfg.Window.Width != 640 || cfg.Window.VSync {
		t.Errorf("window not overridden: %+v", cfg.Window)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected default height to survive, got %d", cfg.Window.Height)
	}
	if cfg.Shaders != Default().Shaders {
		t.Errorf("expected default shaders, got %+v", cfg.Shaders)
	}
	if cfg.Image.Path != "testdata/gray.png" || cfg.Image.Flip {
		t.Errorf("image not overridden: %+v", cfg.Image)
	}
	if cfg.Debug.Trap {
		t.Errorf("expected trap disabled")
	}
	if cfg.ClearColor != [4]float32{0.45, 0.55, 0.6, 1} {
		t.Errorf("unexpected clear color %v", cfg.ClearColor)
	}
	if cfg.Frames != 120 {
		t.Errorf("expected 120 frames, got %d", cfg.Frames)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "", 0o644))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults for empty file, got %+v", cfg)
	}
}

func TestLoadRefusals(t *testing.T) {
	tests := []struct {
		name string
		body string
		mode os.FileMode
		want error
	}{
		{"world writable", "frames: 1\n", 0o666, ErrWorldWritable},
		{"too large", "# " + strings.Repeat("x", maxConfigSize) + "\n", 0o644, ErrTooLarge},
		{"invalid size", "window:\n  width: 0\n", 0o644, ErrInvalid},
		{"bad slot", "image:\n  slot: 32\n", 0o644, ErrInvalid},
		{"bad color", "clear_color: [2, 0, 0, 1]\n", 0o644, ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body, tt.mode))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "window:\n  titel: typo\n", 0o644))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "titel") {
		t.Errorf("expected error to name the unknown key, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no vertex shader", func(c *Config) { c.Shaders.Vertex = "" }},
		{"no image", func(c *Config) { c.Image.Path = "" }},
		{"negative slot", func(c *Config) { c.Image.Slot = -1 }},
		{"negative frames", func(c *Config) { c.Frames = -1 }},
		{"negative height", func(c *Config) { c.Window.Height = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
