package device

import (
	"strings"
	"sync"
)

// fakeAPI records every call and keeps enough state to answer read-backs
// and compile/link queries.
type fakeAPI struct {
	mu sync.Mutex

	calls   map[string]int
	binds   []bindCall
	draws   []drawCall
	nextID  uint32
	bound   map[uint32]uint32
	storage map[uint32][]byte

	shaderSource map[uint32]string
	shaderStatus map[uint32]bool
	programOK    map[uint32]bool
	attached     map[uint32][]uint32
	liveShaders  map[uint32]bool
	liveBuffers  map[uint32]bool
	livePrograms map[uint32]bool

	// failLink makes every LinkProgram fail.
	failLink bool
	// failGen makes GenBuffer return 0.
	failGen bool
}

type bindCall struct {
	target uint32
	id     uint32
}

type drawCall struct {
	indexed bool
	count   int32
}

// compileLog is the diagnostic the fake reports for sources containing
// "#error".
const compileLog = "0:3(1): error: syntax error, unexpected end of file"

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:        map[string]int{},
		bound:        map[uint32]uint32{},
		storage:      map[uint32][]byte{},
		shaderSource: map[uint32]string{},
		shaderStatus: map[uint32]bool{},
		programOK:    map[uint32]bool{},
		attached:     map[uint32][]uint32{},
		liveShaders:  map[uint32]bool{},
		liveBuffers:  map[uint32]bool{},
		livePrograms: map[uint32]bool{},
	}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) record(name string) {
	f.calls[name]++
}

func (f *fakeAPI) id() uint32 {
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) bindsFor(target uint32) []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint32
	for _, b := range f.binds {
		if b.target == target {
			ids = append(ids, b.id)
		}
	}
	return ids
}

// vertex array and program binds are recorded under pseudo targets
const (
	targetVertexArray = 1
	targetProgram     = 2
)

func (f *fakeAPI) GenBuffer() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenBuffer")
	if f.failGen {
		return 0
	}
	id := f.id()
	f.liveBuffers[id] = true
	return id
}

func (f *fakeAPI) DeleteBuffer(buffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteBuffer")
	delete(f.liveBuffers, buffer)
	delete(f.storage, buffer)
	for t, id := range f.bound {
		if id == buffer {
			f.bound[t] = 0
		}
	}
}

func (f *fakeAPI) BindBuffer(target, buffer uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindBuffer")
	f.binds = append(f.binds, bindCall{target, buffer})
	f.bound[target] = buffer
}

func (f *fakeAPI) BufferData(target uint32, size int, data []byte, usage uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BufferData")
	buf := make([]byte, size)
	copy(buf, data)
	f.storage[f.bound[target]] = buf
}

func (f *fakeAPI) BufferSubData(target uint32, offset int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BufferSubData")
	copy(f.storage[f.bound[target]][offset:], data)
}

func (f *fakeAPI) GetBufferSubData(target uint32, offset int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetBufferSubData")
	copy(data, f.storage[f.bound[target]][offset:])
}

func (f *fakeAPI) GenVertexArray() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenVertexArray")
	return f.id()
}

func (f *fakeAPI) DeleteVertexArray(array uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteVertexArray")
}

func (f *fakeAPI) BindVertexArray(array uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BindVertexArray")
	f.binds = append(f.binds, bindCall{targetVertexArray, array})
}

func (f *fakeAPI) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("VertexAttribPointer")
}

func (f *fakeAPI) EnableVertexAttribArray(index uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("EnableVertexAttribArray")
}

func (f *fakeAPI) CreateShader(xtype uint32) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateShader")
	id := f.id()
	f.liveShaders[id] = true
	return id
}

func (f *fakeAPI) ShaderSource(shader uint32, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shaderSource[shader] = source
}

func (f *fakeAPI) CompileShader(shader uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CompileShader")
	src := f.shaderSource[shader]
	f.shaderStatus[shader] = strings.Contains(src, "void main()") && !strings.Contains(src, "#error")
}

func (f *fakeAPI) GetShaderiv(shader uint32, pname uint32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pname == COMPILE_STATUS && f.shaderStatus[shader] {
		return TRUE
	}
	return FALSE
}

func (f *fakeAPI) GetShaderInfoLog(shader uint32) string {
	return compileLog + "\x00"
}

func (f *fakeAPI) DeleteShader(shader uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteShader")
	delete(f.liveShaders, shader)
}

func (f *fakeAPI) CreateProgram() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProgram")
	id := f.id()
	f.livePrograms[id] = true
	return id
}

func (f *fakeAPI) AttachShader(program, shader uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached[program] = append(f.attached[program], shader)
}

func (f *fakeAPI) LinkProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LinkProgram")
	f.programOK[program] = !f.failLink && len(f.attached[program]) == 2
}

func (f *fakeAPI) GetProgramiv(program uint32, pname uint32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pname == LINK_STATUS && f.programOK[program] {
		return TRUE
	}
	return FALSE
}

func (f *fakeAPI) GetProgramInfoLog(program uint32) string {
	return "error: fragment shader output not written\n"
}

func (f *fakeAPI) UseProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UseProgram")
	f.binds = append(f.binds, bindCall{targetProgram, program})
}

func (f *fakeAPI) DeleteProgram(program uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProgram")
	delete(f.livePrograms, program)
}

func (f *fakeAPI) ClearColor(r, g, b, a float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearColor")
}

func (f *fakeAPI) Clear(mask uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Clear")
}

func (f *fakeAPI) Viewport(x, y, width, height int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Viewport")
}

func (f *fakeAPI) Enable(cap uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Enable")
}

func (f *fakeAPI) DrawArrays(mode uint32, first, count int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DrawArrays")
	f.draws = append(f.draws, drawCall{indexed: false, count: count})
}

func (f *fakeAPI) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DrawElements")
	f.draws = append(f.draws, drawCall{indexed: true, count: count})
}

func (f *fakeAPI) ReadPixels(x, y, width, height int32, format, xtype uint32, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReadPixels")
	for i := range data {
		data[i] = 0x7f
	}
}

func (f *fakeAPI) GetString(name uint32) string {
	switch name {
	case VENDOR:
		return "fake"
	case VERSION:
		return "4.1 fake"
	}
	return ""
}
