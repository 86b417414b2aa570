package shader

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for shader build failures.
var (
	ErrCompile         = errors.New("shader compilation failed")
	ErrLink            = errors.New("program link failed")
	ErrUniformNotFound = errors.New("uniform not found")
)

// CompileError carries the compiler log of a rejected stage.
type CompileError struct {
	Stage Stage
	Log   string // Driver info log, verbatim
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s shader: %s", e.Stage, strings.TrimSpace(e.Log))
}

func (e *CompileError) Is(target error) bool {
	return target == ErrCompile
}

// LinkError carries the linker log of a rejected program.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link program: %s", strings.TrimSpace(e.Log))
}

func (e *LinkError) Is(target error) bool {
	return target == ErrLink
}

// UniformError names a uniform the program does not expose. Uniforms the
// compiler optimized away are reported the same way.
type UniformError struct {
	Name string
}

func (e *UniformError) Error() string {
	return fmt.Sprintf("uniform %q not found in program", e.Name)
}

func (e *UniformError) Is(target error) bool {
	return target == ErrUniformNotFound
}
