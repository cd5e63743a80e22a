// Package glapi implements device.API on top of the go-gl OpenGL 4.1 core
// bindings.
package glapi

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/ckrl/device"
)

var (
	glInitOnce sync.Once
	glInitErr  error
)

// Load resolves the GL entry points for the context current on the calling
// thread. Only the first call does any work.
func Load() (device.API, error) {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	if glInitErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", glInitErr)
	}
	return API{}, nil
}

// API forwards to the package level go-gl functions.
type API struct{}

var _ device.API = API{}

func ptr(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return &data[0]
}

func (API) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (API) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (API) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (API) BufferData(target uint32, size int, data []byte, usage uint32) {
	if len(data) == 0 {
		gl.BufferData(target, size, nil, usage)
		return
	}
	gl.BufferData(target, size, gl.Ptr(ptr(data)), usage)
}

func (API) BufferSubData(target uint32, offset int, data []byte) {
	gl.BufferSubData(target, offset, len(data), gl.Ptr(ptr(data)))
}

func (API) GetBufferSubData(target uint32, offset int, data []byte) {
	gl.GetBufferSubData(target, offset, len(data), gl.Ptr(ptr(data)))
}

func (API) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (API) DeleteVertexArray(array uint32) { gl.DeleteVertexArrays(1, &array) }

func (API) BindVertexArray(array uint32) { gl.BindVertexArray(array) }

func (API) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, uintptr(offset))
}

func (API) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (API) CreateShader(xtype uint32) uint32 { return gl.CreateShader(xtype) }

func (API) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (API) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (API) GetShaderiv(shader uint32, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (API) GetShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (API) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (API) CreateProgram() uint32 { return gl.CreateProgram() }

func (API) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (API) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (API) GetProgramiv(program uint32, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (API) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (API) UseProgram(program uint32) { gl.UseProgram(program) }

func (API) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (API) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (API) Clear(mask uint32) { gl.Clear(mask) }

func (API) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (API) Enable(cap uint32) { gl.Enable(cap) }

func (API) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (API) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	gl.DrawElementsWithOffset(mode, count, xtype, uintptr(offset))
}

func (API) ReadPixels(x, y, width, height int32, format, xtype uint32, data []byte) {
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, format, xtype, gl.Ptr(ptr(data)))
}

func (API) GetString(name uint32) string {
	return gl.GoStr(gl.GetString(name))
}
