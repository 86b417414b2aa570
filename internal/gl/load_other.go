//go:build !(darwin || freebsd || linux || netbsd || windows)

package gl

import (
	"fmt"
	"runtime"
)

func Load(getProcAddress ProcAddressFunc) (OpenGL, error) {
	return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, runtime.GOOS, runtime.GOARCH)
}
