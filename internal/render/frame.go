package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Step is the fixed simulation time step per frame.
const Step = 1.0 / 60.0

// Scale is the user adjustment added to the base quad scale.
type Scale struct {
	X, Y float32
}

// FrameState is everything the shaders receive for one frame.
type FrameState struct {
	Index int
	// Time is k*dt seconds, narrowed only inside the pulse values.
	Time float64
	// Pulse holds three phase-shifted oscillators in [0, 1].
	Pulse [3]float32
	MVP   mgl32.Mat4
}

// StateAt computes the uniform values for frame k. It depends only on its
// arguments.
func StateAt(k int, dt float64, scale Scale) FrameState {
	s := FrameState{Index: k, Time: float64(k) * dt}
	for i := range s.Pulse {
		s.Pulse[i] = float32((1 + math.Sin(float64(i+1)*s.Time)) / 2)
	}
	s.MVP = mgl32.Diag4(mgl32.Vec4{1.5 + scale.X, 2.0 + scale.Y, 1.5, 2.0})
	return s
}
