package renderer

import (
	"strings"

	"github.com/richinsley/ckrl/device"
	"github.com/richinsley/ckrl/graphics"
)

// countingAPI accepts everything, counts calls, and fails compilation of
// sources containing "#error".
type countingAPI struct {
	calls  map[string]int
	nextID uint32
	source map[uint32]string
	clears [][4]float32
	views  [][2]int32
	reads  int
}

func newCountingAPI() *countingAPI {
	return &countingAPI{calls: map[string]int{}, source: map[uint32]string{}}
}

func (f *countingAPI) id(name string) uint32 {
	f.calls[name]++
	f.nextID++
	return f.nextID
}

func (f *countingAPI) GenBuffer() uint32                      { return f.id("GenBuffer") }
func (f *countingAPI) DeleteBuffer(uint32)                    { f.calls["DeleteBuffer"]++ }
func (f *countingAPI) BindBuffer(uint32, uint32)              { f.calls["BindBuffer"]++ }
func (f *countingAPI) BufferData(uint32, int, []byte, uint32) { f.calls["BufferData"]++ }
func (f *countingAPI) BufferSubData(uint32, int, []byte)      { f.calls["BufferSubData"]++ }
func (f *countingAPI) GetBufferSubData(uint32, int, []byte)   { f.calls["GetBufferSubData"]++ }
func (f *countingAPI) GenVertexArray() uint32                 { return f.id("GenVertexArray") }
func (f *countingAPI) DeleteVertexArray(uint32)               { f.calls["DeleteVertexArray"]++ }
func (f *countingAPI) BindVertexArray(uint32)                 { f.calls["BindVertexArray"]++ }
func (f *countingAPI) VertexAttribPointer(uint32, int32, uint32, bool, int32, int) {
	f.calls["VertexAttribPointer"]++
}
func (f *countingAPI) EnableVertexAttribArray(uint32)       { f.calls["EnableVertexAttribArray"]++ }
func (f *countingAPI) CreateShader(uint32) uint32           { return f.id("CreateShader") }
func (f *countingAPI) ShaderSource(shader uint32, s string) { f.source[shader] = s }
func (f *countingAPI) CompileShader(uint32)                 { f.calls["CompileShader"]++ }
func (f *countingAPI) GetShaderiv(shader uint32, pname uint32) int32 {
	if strings.Contains(f.source[shader], "#error") {
		return device.FALSE
	}
	return device.TRUE
}
func (f *countingAPI) GetShaderInfoLog(uint32) string    { return "0:1(1): error: #error" }
func (f *countingAPI) DeleteShader(uint32)               { f.calls["DeleteShader"]++ }
func (f *countingAPI) CreateProgram() uint32             { return f.id("CreateProgram") }
func (f *countingAPI) AttachShader(uint32, uint32)       {}
func (f *countingAPI) LinkProgram(uint32)                { f.calls["LinkProgram"]++ }
func (f *countingAPI) GetProgramiv(uint32, uint32) int32 { return device.TRUE }
func (f *countingAPI) GetProgramInfoLog(uint32) string   { return "" }
func (f *countingAPI) UseProgram(uint32)                 { f.calls["UseProgram"]++ }
func (f *countingAPI) DeleteProgram(uint32)              { f.calls["DeleteProgram"]++ }
func (f *countingAPI) ClearColor(r, g, b, a float32) {
	f.clears = append(f.clears, [4]float32{r, g, b, a})
}
func (f *countingAPI) Clear(uint32)                            { f.calls["Clear"]++ }
func (f *countingAPI) Viewport(x, y, w, h int32)               { f.views = append(f.views, [2]int32{w, h}) }
func (f *countingAPI) Enable(uint32)                           { f.calls["Enable"]++ }
func (f *countingAPI) DrawArrays(uint32, int32, int32)         { f.calls["DrawArrays"]++ }
func (f *countingAPI) DrawElements(uint32, int32, uint32, int) { f.calls["DrawElements"]++ }
func (f *countingAPI) ReadPixels(x, y, w, h int32, format, xtype uint32, data []byte) {
	f.reads++
}
func (f *countingAPI) GetString(uint32) string { return "" }

// scriptedContext replays events and reports Close once they run out.
type scriptedContext struct {
	queue    graphics.EventQueue
	swaps    int
	requests int
	current  int
	closed   bool
}

func newScriptedContext(events ...graphics.Event) *scriptedContext {
	c := &scriptedContext{}
	for _, e := range events {
		c.queue.Push(e)
	}
	return c
}

func (c *scriptedContext) MakeCurrent()      { c.current++ }
func (c *scriptedContext) Shutdown()         {}
func (c *scriptedContext) ShouldClose() bool { return c.closed }
func (c *scriptedContext) WaitEvent() graphics.Event {
	if e, ok := c.queue.Pop(); ok {
		return e
	}
	return graphics.Event{Kind: graphics.Close}
}
func (c *scriptedContext) RequestRedraw() {
	c.requests++
	c.queue.Push(graphics.Event{Kind: graphics.Redraw})
}
func (c *scriptedContext) SwapBuffers()                   { c.swaps++ }
func (c *scriptedContext) GetFramebufferSize() (int, int) { return 800, 600 }

// memorySink keeps captured frames.
type memorySink struct {
	frames [][]byte
	closed bool
	err    error
}

func (s *memorySink) Write(p []byte) error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, p)
	return nil
}

func (s *memorySink) Close() error {
	s.closed = true
	return nil
}
