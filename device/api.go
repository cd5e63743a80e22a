package device

// OpenGL enums used by the device. Values match the Khronos registry so any
// API implementation can pass them straight through.
const (
	ARRAY_BUFFER             = 0x8892
	ELEMENT_ARRAY_BUFFER     = 0x8893
	STATIC_DRAW              = 0x88E4
	DYNAMIC_DRAW             = 0x88E8
	STREAM_DRAW              = 0x88E0
	FLOAT                    = 0x1406
	UNSIGNED_INT             = 0x1405
	UNSIGNED_BYTE            = 0x1401
	RGBA                     = 0x1908
	TRIANGLES                = 0x0004
	COLOR_BUFFER_BIT         = 0x4000
	VERTEX_SHADER            = 0x8B31
	FRAGMENT_SHADER          = 0x8B30
	COMPILE_STATUS           = 0x8B81
	LINK_STATUS              = 0x8B82
	FRAMEBUFFER_SRGB         = 0x8DB9
	VENDOR                   = 0x1F00
	RENDERER                 = 0x1F01
	VERSION                  = 0x1F02
	SHADING_LANGUAGE_VERSION = 0x8B8C
	FALSE                    = 0
	TRUE                     = 1
)

// API is the subset of OpenGL entry points the device drives. Every method
// operates on the context that is current on the calling thread.
//
// The device is the only caller of an API once it has been handed one;
// binding anything behind its back desynchronises the bind cache.
type API interface {
	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target, buffer uint32)
	// BufferData allocates size bytes. data may be nil to leave the
	// storage uninitialised.
	BufferData(target uint32, size int, data []byte, usage uint32)
	BufferSubData(target uint32, offset int, data []byte)
	GetBufferSubData(target uint32, offset int, data []byte)

	GenVertexArray() uint32
	DeleteVertexArray(array uint32)
	BindVertexArray(array uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)
	EnableVertexAttribArray(index uint32)

	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Viewport(x, y, width, height int32)
	Enable(cap uint32)
	DrawArrays(mode uint32, first, count int32)
	DrawElements(mode uint32, count int32, xtype uint32, offset int)
	ReadPixels(x, y, width, height int32, format, xtype uint32, data []byte)
	GetString(name uint32) string
}
