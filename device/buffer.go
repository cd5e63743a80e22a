package device

import (
	"fmt"
	"unsafe"
)

// Usage hints how often buffer contents change.
type Usage uint32

const (
	Static  Usage = STATIC_DRAW
	Dynamic Usage = DYNAMIC_DRAW
	Stream  Usage = STREAM_DRAW
)

func (u Usage) String() string {
	switch u {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Stream:
		return "stream"
	}
	return fmt.Sprintf("usage(0x%x)", uint32(u))
}

// VertexBuffer is interleaved float vertex storage.
type VertexBuffer struct {
	*handle
	capacity int
	stride   int
	usage    Usage
}

// Capacity is the buffer size in floats.
func (b *VertexBuffer) Capacity() int { return b.capacity }

// Stride is the number of floats per vertex.
func (b *VertexBuffer) Stride() int { return b.stride }

// Vertices is the number of whole vertices the buffer holds.
func (b *VertexBuffer) Vertices() int { return b.capacity / b.stride }

func (b *VertexBuffer) Usage() Usage { return b.usage }

// Equal reports whether both handles name the same buffer.
func (b *VertexBuffer) Equal(o *VertexBuffer) bool {
	if b == nil || o == nil || b.handle == nil || o.handle == nil {
		return false
	}
	return b.ctx == o.ctx && b.id == o.id
}

// IndexBuffer is uint32 element storage.
type IndexBuffer struct {
	*handle
	capacity int
	usage    Usage
}

// Capacity is the buffer size in indices.
func (b *IndexBuffer) Capacity() int { return b.capacity }

func (b *IndexBuffer) Usage() Usage { return b.usage }

// Equal reports whether both handles name the same buffer.
func (b *IndexBuffer) Equal(o *IndexBuffer) bool {
	if b == nil || o == nil || b.handle == nil || o.handle == nil {
		return false
	}
	return b.ctx == o.ctx && b.id == o.id
}

func floatBytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
}

func uint32Bytes(u []uint32) []byte {
	if len(u) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&u[0])), len(u)*4)
}

func inRange(offset, n, capacity int) bool {
	return offset >= 0 && n >= 0 && offset+n <= capacity
}
