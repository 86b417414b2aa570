package texture

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a decoded image with interleaved 8-bit channels, rows top to
// bottom unless flipped.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Decode reads an image in any registered format. Gray images keep a single
// channel, YCbCr and CMYK images become RGB and everything else becomes
// non-premultiplied RGBA. With flip set the rows are stored bottom to top,
// matching the GL texture origin. A nil logger uses slog.Default.
func Decode(r io.Reader, flip bool, logger *slog.Logger) (Image, error) {
	if logger == nil {
		logger = slog.Default()
	}
	src, format, err := image.Decode(r)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	if b.Empty() {
		return Image{}, ErrEmptyImage
	}

	var img Image
	switch src := src.(type) {
	case *image.Gray:
		img = fromGray(src)
	case *image.YCbCr, *image.CMYK:
		img = toRGB(src)
	default:
		img = toRGBA(src)
	}

	if flip {
		flipRows(img)
	}

	logger.Debug("decoded image", "category", "format", "format", format,
		"width", img.Width, "height", img.Height, "channels", img.Channels)
	return img, nil
}

func fromGray(src *image.Gray) Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	img := Image{Width: w, Height: h, Channels: 1, Pix: make([]byte, w*h)}
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		copy(img.Pix[y*w:], row)
	}
	return img
}

func toRGB(src image.Image) Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	img := Image{Width: w, Height: h, Channels: 3, Pix: make([]byte, w*h*3)}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := src.At(x, y).RGBA()
			img.Pix[i+0] = uint8(r >> 8)
			img.Pix[i+1] = uint8(g >> 8)
			img.Pix[i+2] = uint8(bl >> 8)
			i += 3
		}
	}
	return img
}

func toRGBA(src image.Image) Image {
	b := src.Bounds()
	dst, ok := src.(*image.NRGBA)
	if !ok || dst.Stride != 4*b.Dx() {
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	}
	return Image{Width: b.Dx(), Height: b.Dy(), Channels: 4, Pix: dst.Pix[:4*b.Dx()*b.Dy()]}
}

func flipRows(img Image) {
	rowLen := img.Width * img.Channels
	tmp := make([]byte, rowLen)
	for top, bottom := 0, img.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*rowLen : (top+1)*rowLen]
		z := img.Pix[bottom*rowLen : (bottom+1)*rowLen]
		copy(tmp, a)
		copy(a, z)
		copy(z, tmp)
	}
}
