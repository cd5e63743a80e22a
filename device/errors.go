package device

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when an upload, read-back or draw would touch
	// elements past a buffer's capacity.
	ErrOutOfRange = errors.New("device: range exceeds buffer capacity")
	// ErrReleased is returned when a released handle is used.
	ErrReleased = errors.New("device: resource already released")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("device: closed")
	// ErrForeignResource is returned for handles created by another Device.
	ErrForeignResource = errors.New("device: resource belongs to another device")
)

// Stage identifies a shader stage.
type Stage uint32

const (
	VertexStage   Stage = VERTEX_SHADER
	FragmentStage Stage = FRAGMENT_SHADER
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("stage(0x%x)", uint32(s))
}

// CompileError carries the compiler diagnostic for a failed shader stage.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError carries the linker diagnostic for a failed program.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// ResourceError reports that the API refused to create an object.
type ResourceError struct {
	Kind string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("device: failed to create %s", e.Kind)
}
