package render

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tinyrange/quadgl/internal/window"
)

// ScaleStep is how far one frame of a held arrow key moves the scale.
const ScaleStep = 0.01

// Overlay tracks the interactive scale and publishes frame timing in the
// window title.
type Overlay struct {
	Scale Scale

	title  string
	start  time.Time
	frames int
}

func NewOverlay(title string) *Overlay {
	return &Overlay{title: title}
}

// Update applies held keys to the scale and counts a frame. Once per second
// of wall time it returns a new title with the average frame time.
func (o *Overlay) Update(keyDown func(window.Key) bool, now time.Time) (string, bool) {
	if keyDown(window.KeyR) {
		o.Scale = Scale{}
	}
	if keyDown(window.KeyLeft) {
		o.Scale.X -= ScaleStep
	}
	if keyDown(window.KeyRight) {
		o.Scale.X += ScaleStep
	}
	if keyDown(window.KeyDown) {
		o.Scale.Y -= ScaleStep
	}
	if keyDown(window.KeyUp) {
		o.Scale.Y += ScaleStep
	}
	o.Scale.X = mgl32.Clamp(o.Scale.X, -1, 1)
	o.Scale.Y = mgl32.Clamp(o.Scale.Y, -1, 1)

	if o.start.IsZero() {
		o.start = now
		return "", false
	}

	o.frames++
	elapsed := now.Sub(o.start)
	if elapsed < time.Second {
		return "", false
	}

	ms := float64(elapsed) / float64(time.Millisecond) / float64(o.frames)
	fps := float64(o.frames) / elapsed.Seconds()
	o.start = now
	o.frames = 0
	return fmt.Sprintf("%s - %.3f ms/frame (%.1f FPS)", o.title, ms, fps), true
}
