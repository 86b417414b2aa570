package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/tinyrange/quadgl/internal/gl"
	"github.com/tinyrange/quadgl/internal/gl/gltest"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		channels int
		format   uint32
		internal int32
		ok       bool
	}{
		{1, gl.Red, gl.R8, true},
		{3, gl.RGB, gl.RGB8, true},
		{4, gl.RGBA, gl.RGBA8, true},
		{0, 0, 0, false},
		{2, 0, 0, false},
		{5, 0, 0, false},
		{-1, 0, 0, false},
	}

	for _, tt := range tests {
		f, err := FormatFor(tt.channels)
		if tt.ok {
			if err != nil {
				t.Errorf("FormatFor(%d) failed: %v", tt.channels, err)
				continue
			}
			if f.Format != tt.format || f.InternalFormat != tt.internal {
				t.Errorf("FormatFor(%d) = %+v, want {%#x %#x}", tt.channels, f, tt.format, tt.internal)
			}
			continue
		}
		if !errors.Is(err, ErrUnsupportedChannels) {
			t.Errorf("FormatFor(%d): expected ErrUnsupportedChannels, got %v", tt.channels, err)
		}
	}
}

func TestUploadTwoChannelImage(t *testing.T) {
	f := gltest.New()
	img := Image{Width: 2, Height: 2, Channels: 2, Pix: make([]byte, 8)}

	tex, err := Upload(f, img, 0, nil)
	if tex != nil {
		t.Fatal("expected no texture")
	}
	if err == nil || err.Error() != "unsupported channel count: 2" {
		t.Fatalf("expected %q, got %v", "unsupported channel count: 2", err)
	}
	if n := f.CallCount("GenTextures"); n != 0 {
		t.Errorf("expected no texture handle to be created, GenTextures called %d times", n)
	}
	if f.Live().Textures != 0 {
		t.Errorf("expected no live textures")
	}
}

func TestUploadRejectsBadPixelBuffer(t *testing.T) {
	f := gltest.New()

	tests := []struct {
		name string
		img  Image
		want error
	}{
		{"short", Image{Width: 4, Height: 4, Channels: 3, Pix: make([]byte, 47)}, ErrPixelSize},
		{"long", Image{Width: 1, Height: 1, Channels: 4, Pix: make([]byte, 5)}, ErrPixelSize},
		{"empty", Image{Width: 0, Height: 4, Channels: 4}, ErrEmptyImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Upload(f, tt.img, 0, nil); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if f.Live().Textures != 0 {
		t.Errorf("rejected uploads must not create textures")
	}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		format   uint32
		internal int32
	}{
		{"red", 1, gl.Red, gl.R8},
		{"rgb", 3, gl.RGB, gl.RGB8},
		{"rgba", 4, gl.RGBA, gl.RGBA8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := gltest.New()
			// Odd width so rows are not 4-byte aligned for 1 and 3 channels.
			img := Image{Width: 3, Height: 2, Channels: tt.channels, Pix: make([]byte, 3*2*tt.channels)}
			for i := range img.Pix {
				img.Pix[i] = byte(i)
			}

			tex, err := Upload(f, img, 2, nil)
			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			defer tex.Delete()

			state := f.Texture(tex.Handle)
			if state == nil {
				t.Fatal("texture not created")
			}
			if state.Format != tt.format || state.InternalFormat != tt.internal || state.Type != gl.UnsignedByte {
				t.Errorf("unexpected format %#x/%#x/%#x", state.Format, state.InternalFormat, state.Type)
			}
			if state.Width != 3 || state.Height != 2 || state.Level != 0 {
				t.Errorf("unexpected size %dx%d level %d", state.Width, state.Height, state.Level)
			}
			if state.Unpack != 1 {
				t.Errorf("expected UNPACK_ALIGNMENT 1 at upload, got %d", state.Unpack)
			}
			if !bytes.Equal(state.Pixels, img.Pix) {
				t.Errorf("uploaded pixels differ")
			}

			params := map[uint32]int32{
				gl.TextureMinFilter: gl.Linear,
				gl.TextureMagFilter: gl.Linear,
				gl.TextureWrapS:     gl.ClampToEdge,
				gl.TextureWrapT:     gl.ClampToEdge,
			}
			for pname, want := range params {
				if got := state.Params[pname]; got != want {
					t.Errorf("param %#x = %#x, want %#x", pname, got, want)
				}
			}

			if f.ActiveUnit() != gl.Texture0+2 {
				t.Errorf("expected texture unit 2 active, got %#x", f.ActiveUnit())
			}
			if f.BoundTexture(2) != tex.Handle {
				t.Errorf("texture not bound on unit 2")
			}
			if f.Pending() != 0 {
				t.Errorf("unexpected GL errors: %d pending", f.Pending())
			}
		})
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := gltest.New()
	tex, err := Upload(f, Image{Width: 1, Height: 1, Channels: 4, Pix: []byte{1, 2, 3, 4}}, 0, nil)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	tex.Delete()
	tex.Delete()
	if n := f.CallCount("DeleteTextures"); n != 1 {
		t.Errorf("expected 1 DeleteTextures call, got %d", n)
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

// gradient returns a 2x3 image whose rows are distinguishable.
func gradient() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(y * 100), G: uint8(x * 200), B: 7, A: 128})
		}
	}
	return img
}

func TestDecodeRGBA(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, gradient())), false, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Width != 2 || img.Height != 3 || img.Channels != 4 {
		t.Fatalf("unexpected geometry %dx%dx%d", img.Width, img.Height, img.Channels)
	}
	if len(img.Pix) != 2*3*4 {
		t.Fatalf("unexpected pixel length %d", len(img.Pix))
	}
	// Row 1, column 1: non-premultiplied values survive.
	px := img.Pix[(1*2+1)*4:]
	if px[0] != 100 || px[1] != 200 || px[2] != 7 || px[3] != 128 {
		t.Errorf("unexpected pixel %v", px[:4])
	}
}

func TestDecodeFlip(t *testing.T) {
	data := encodePNG(t, gradient())

	upright, err := Decode(bytes.NewReader(data), false, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	flipped, err := Decode(bytes.NewReader(data), true, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	row := upright.Width * upright.Channels
	for y := 0; y < upright.Height; y++ {
		want := upright.Pix[y*row : (y+1)*row]
		got := flipped.Pix[(upright.Height-1-y)*row : (upright.Height-y)*row]
		if !bytes.Equal(got, want) {
			t.Errorf("row %d not mirrored", y)
		}
	}
}

func TestDecodeGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 40)
	}

	img, err := Decode(bytes.NewReader(encodePNG(t, src)), false, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Channels != 1 {
		t.Fatalf("expected 1 channel, got %d", img.Channels)
	}
	if !bytes.Equal(img.Pix, src.Pix) {
		t.Errorf("expected %v, got %v", src.Pix, img.Pix)
	}
}

func TestDecodeJPEGIsRGB(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("jpeg.Encode failed: %v", err)
	}

	img, err := Decode(&buf, false, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Channels != 3 || len(img.Pix) != 8*8*3 {
		t.Fatalf("expected 8x8 RGB, got %dx%dx%d (%d bytes)", img.Width, img.Height, img.Channels, len(img.Pix))
	}
	for i, v := range img.Pix {
		if v < 0xf0 {
			t.Fatalf("byte %d = %#x, expected near white", i, v)
		}
	}
}

func TestDecodeExtendedFormats(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*bytes.Buffer, image.Image) error
	}{
		{"bmp", func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }},
		{"tiff", func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
			for i := range src.Pix {
				src.Pix[i] = 0xff
			}
			var buf bytes.Buffer
			if err := tt.encode(&buf, src); err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			img, err := Decode(&buf, false, nil)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if img.Width != 4 || img.Height != 4 {
				t.Errorf("unexpected size %dx%d", img.Width, img.Height)
			}
			if _, err := FormatFor(img.Channels); err != nil {
				t.Errorf("decoded image not uploadable: %v", err)
			}
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image")), false, nil); err == nil {
		t.Error("expected decode error")
	}
}
