package texture

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedChannels = errors.New("unsupported channel count")
	ErrPixelSize           = errors.New("pixel buffer does not match image size")
	ErrEmptyImage          = errors.New("image has no pixels")
)

// UnsupportedChannelsError reports an image whose channel count has no
// matching pixel format.
type UnsupportedChannelsError struct {
	Channels int
}

func (e *UnsupportedChannelsError) Error() string {
	return fmt.Sprintf("unsupported channel count: %d", e.Channels)
}

func (e *UnsupportedChannelsError) Is(target error) bool {
	return target == ErrUnsupportedChannels
}
