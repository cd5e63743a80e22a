package device

import (
	"runtime"
	"sync"

	"github.com/richinsley/ckrl/logging"
)

type resourceKind int

const (
	kindVertexBuffer resourceKind = iota
	kindIndexBuffer
	kindProgram
)

func (k resourceKind) String() string {
	switch k {
	case kindVertexBuffer:
		return "vertex buffer"
	case kindIndexBuffer:
		return "index buffer"
	case kindProgram:
		return "program"
	}
	return "resource"
}

// bindCache mirrors what the API currently has bound.
type bindCache struct {
	vertexArray  uint32
	vertexBuffer uint32
	indexBuffer  uint32
	program      uint32
}

type garbageItem struct {
	kind resourceKind
	id   uint32
}

// garbage collects ids of handles reclaimed by the Go GC. Finalizers run on
// their own goroutine, so the ids wait here until the context thread
// deletes them.
type garbage struct {
	sync.Mutex
	items []garbageItem
}

func (g *garbage) add(kind resourceKind, id uint32) {
	g.Lock()
	g.items = append(g.items, garbageItem{kind: kind, id: id})
	g.Unlock()
}

func (g *garbage) take() []garbageItem {
	g.Lock()
	defer g.Unlock()
	items := g.items
	g.items = nil
	return items
}

// sharedContext is owned jointly by the Device and every live handle. The
// persistent vertex array is deleted when the last holder lets go.
type sharedContext struct {
	api   API
	refs  int
	vao   uint32
	bound bindCache
	trash garbage
}

func newSharedContext(api API) *sharedContext {
	return &sharedContext{api: api, refs: 1}
}

func (c *sharedContext) retain() {
	c.refs++
}

func (c *sharedContext) release() {
	c.refs--
	if c.refs > 0 {
		return
	}
	if c.bound.vertexArray == c.vao {
		c.bound.vertexArray = 0
	}
	if c.vao != 0 {
		c.api.DeleteVertexArray(c.vao)
		c.vao = 0
	}
	logging.Debugf("graphics context released")
}

// destroy deletes one object and drops the reference its handle held.
// GL unbinds a deleted buffer, so its slot is reset. A deleted program
// stays current until replaced and its name is not reused meanwhile; the
// slot is reset anyway so the next bind re-issues UseProgram.
func (c *sharedContext) destroy(kind resourceKind, id uint32) {
	switch kind {
	case kindVertexBuffer:
		c.api.DeleteBuffer(id)
		if c.bound.vertexBuffer == id {
			c.bound.vertexBuffer = 0
		}
	case kindIndexBuffer:
		c.api.DeleteBuffer(id)
		if c.bound.indexBuffer == id {
			c.bound.indexBuffer = 0
		}
	case kindProgram:
		c.api.DeleteProgram(id)
		if c.bound.program == id {
			c.bound.program = 0
		}
	}
	c.release()
}

// collect deletes every object whose handle was garbage collected.
func (c *sharedContext) collect() int {
	items := c.trash.take()
	for _, it := range items {
		logging.Debugf("reclaiming dropped %s %d", it.kind, it.id)
		c.destroy(it.kind, it.id)
	}
	return len(items)
}

// handle is the shared identity of a GPU object. Handle values copy the
// pointer, so every copy observes the same release state.
type handle struct {
	ctx      *sharedContext
	kind     resourceKind
	id       uint32
	released bool
}

func newHandle(ctx *sharedContext, kind resourceKind, id uint32) *handle {
	ctx.retain()
	h := &handle{ctx: ctx, kind: kind, id: id}
	trash := &ctx.trash
	runtime.SetFinalizer(h, func(*handle) {
		trash.add(kind, id)
	})
	return h
}

// ID returns the underlying API object name.
func (h *handle) ID() uint32 {
	return h.id
}

// Released reports whether Release has been called.
func (h *handle) Released() bool {
	return h.released
}

// Release frees the GPU object. Only the first call has an effect.
func (h *handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	runtime.SetFinalizer(h, nil)
	h.ctx.destroy(h.kind, h.id)
}

func (h *handle) check(ctx *sharedContext) error {
	if h == nil {
		return ErrReleased
	}
	if h.ctx != ctx {
		return ErrForeignResource
	}
	if h.released {
		return ErrReleased
	}
	return nil
}
