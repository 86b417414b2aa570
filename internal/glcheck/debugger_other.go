//go:build !linux && !darwin

package glcheck

import "runtime"

func debuggerAttached() bool { return false }

func trap() {
	runtime.Breakpoint()
}
