// Package loader reads shader sources and images from disk in a single
// sized read.
package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressThreshold is the size above which a read is mirrored into a
// progress bar when progress is enabled.
const ProgressThreshold = 1 << 20 // 1MB

// ErrShortRead is returned when fewer bytes were read than the file reported.
var ErrShortRead = errors.New("short read")

// Loader reads whole files. The zero value is ready to use.
type Loader struct {
	// Progress enables a progress bar for large files.
	Progress bool
	// ProgressOutput receives the bar. Nil means stderr.
	ProgressOutput io.Writer
	Logger         *slog.Logger
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// ReadFile returns the full contents of path. The size is taken from the end
// offset of the file, then exactly that many bytes are read from the start.
func (l *Loader) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		l.logger().Error("failed to open resource", "category", "io", "path", path, "error", err)
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	data, err := l.read(f, path)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close %s: %w", path, closeErr)
	}
	if err != nil {
		l.logger().Error("failed to read resource", "category", "io", "path", path, "error", err)
		return nil, err
	}

	l.logger().Debug("loaded resource", "category", "io", "path", path, "size", len(data))
	return data, nil
}

func (l *Loader) read(f io.ReadSeeker, path string) ([]byte, error) {
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	var r io.Reader = f
	if l.Progress && end > ProgressThreshold {
		bar := l.newBar(end, fmt.Sprintf("load %s", path))
		defer bar.Close()
		r = io.TeeReader(f, bar)
	}

	buf := make([]byte, end)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read %s: %w: got %d of %d bytes", path, ErrShortRead, n, end)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf, nil
}

// newBar mirrors progressbar.DefaultBytes with a configurable writer.
func (l *Loader) newBar(size int64, description string) *progressbar.ProgressBar {
	if l.ProgressOutput == nil {
		return progressbar.DefaultBytes(size, description)
	}
	w := l.ProgressOutput
	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowTotalBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// ReadText is ReadFile for text resources such as shader sources.
func (l *Loader) ReadText(path string) (string, error) {
	data, err := l.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFile reads path with a default Loader.
func ReadFile(path string) ([]byte, error) {
	var l Loader
	return l.ReadFile(path)
}
