// Package texture decodes images and uploads them as 2D textures.
package texture

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/quadgl/internal/gl"
)

// Format is the client pixel format and the GPU-side storage format.
type Format struct {
	Format         uint32
	InternalFormat int32
}

// FormatFor maps an 8-bit channel count to a pixel format pair.
func FormatFor(channels int) (Format, error) {
	switch channels {
	case 1:
		return Format{Format: gl.Red, InternalFormat: gl.R8}, nil
	case 3:
		return Format{Format: gl.RGB, InternalFormat: gl.RGB8}, nil
	case 4:
		return Format{Format: gl.RGBA, InternalFormat: gl.RGBA8}, nil
	default:
		return Format{}, &UnsupportedChannelsError{Channels: channels}
	}
}

// Texture is an uploaded 2D texture bound to a texture unit.
type Texture struct {
	Handle uint32
	Format Format
	Width  int
	Height int
	Slot   int

	gl gl.OpenGL
}

// Upload creates a linear-filtered, edge-clamped texture from img on unit
// slot. Unsupported images are rejected before any GL object is created.
// A nil logger uses slog.Default.
func Upload(g gl.OpenGL, img Image, slot int, logger *slog.Logger) (*Texture, error) {
	if logger == nil {
		logger = slog.Default()
	}
	format, err := FormatFor(img.Channels)
	if err != nil {
		logger.Error("cannot upload image", "category", "format", "channels", img.Channels, "error", err)
		return nil, err
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, ErrEmptyImage
	}
	if want := img.Width * img.Height * img.Channels; len(img.Pix) != want {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d", ErrPixelSize, len(img.Pix), img.Width, img.Height, img.Channels)
	}

	t := &Texture{Format: format, Width: img.Width, Height: img.Height, Slot: slot, gl: g}
	g.GenTextures(1, &t.Handle)
	g.ActiveTexture(gl.Texture0 + uint32(slot))
	g.BindTexture(gl.Texture2D, t.Handle)

	g.TexParameteri(gl.Texture2D, gl.TextureMinFilter, gl.Linear)
	g.TexParameteri(gl.Texture2D, gl.TextureMagFilter, gl.Linear)
	g.TexParameteri(gl.Texture2D, gl.TextureWrapS, gl.ClampToEdge)
	g.TexParameteri(gl.Texture2D, gl.TextureWrapT, gl.ClampToEdge)

	// Rows of 1 and 3 channel images are not 4-byte aligned in general.
	g.PixelStorei(gl.UnpackAlignment, 1)
	g.TexImage2D(gl.Texture2D, 0, format.InternalFormat, int32(img.Width), int32(img.Height), 0,
		format.Format, gl.UnsignedByte, img.Pix)

	logger.Debug("uploaded texture", "category", "format", "handle", t.Handle,
		"width", img.Width, "height", img.Height, "channels", img.Channels, "slot", slot)
	return t, nil
}

// Bind makes the texture current on its unit.
func (t *Texture) Bind() {
	t.gl.ActiveTexture(gl.Texture0 + uint32(t.Slot))
	t.gl.BindTexture(gl.Texture2D, t.Handle)
}

// Delete releases the texture. Calling it again is a no-op.
func (t *Texture) Delete() {
	if t.Handle == 0 {
		return
	}
	t.gl.DeleteTextures(1, &t.Handle)
	t.Handle = 0
}
