// Package device wraps an OpenGL context behind a small Device that creates
// buffers and programs, issues draws, and skips bind calls whose target is
// already bound.
//
// A Device and every handle it returns must stay on the thread that owns
// the GL context.
package device

import (
	"fmt"

	"github.com/richinsley/ckrl/logging"
)

// Device is the single owner of the API table.
type Device struct {
	ctx    *sharedContext
	closed bool
}

// Option configures a Device at construction.
type Option func(*config)

type config struct {
	srgb bool
}

// WithSRGB enables sRGB conversion on writes to the framebuffer.
func WithSRGB(enabled bool) Option {
	return func(c *config) { c.srgb = enabled }
}

// New creates the Device and its persistent vertex array.
func New(api API, opts ...Option) (*Device, error) {
	if api == nil {
		return nil, fmt.Errorf("device: nil API")
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := newSharedContext(api)
	ctx.vao = api.GenVertexArray()
	if ctx.vao == 0 {
		return nil, &ResourceError{Kind: "vertex array"}
	}
	if cfg.srgb {
		api.Enable(FRAMEBUFFER_SRGB)
	}

	d := &Device{ctx: ctx}
	logging.Debugf("device ready (vao %d)", ctx.vao)
	return d, nil
}

// Info describes the driver behind the current context.
type Info struct {
	Vendor   string
	Renderer string
	Version  string
	GLSL     string
}

func (d *Device) Info() Info {
	api := d.ctx.api
	return Info{
		Vendor:   api.GetString(VENDOR),
		Renderer: api.GetString(RENDERER),
		Version:  api.GetString(VERSION),
		GLSL:     api.GetString(SHADING_LANGUAGE_VERSION),
	}
}

// Close drops the Device's hold on the context. The vertex array goes away
// once every handle has been released too.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.ctx.collect()
	d.closed = true
	d.ctx.release()
}

// Collect deletes objects whose handles were dropped without Release and
// returns how many were reclaimed. It keeps working after Close so that
// handles outliving the Device still reach the shared context.
func (d *Device) Collect() int {
	return d.ctx.collect()
}

func (d *Device) checkVertexBuffer(b *VertexBuffer) error {
	if d.closed {
		return ErrClosed
	}
	if b == nil {
		return ErrReleased
	}
	return b.handle.check(d.ctx)
}

func (d *Device) checkIndexBuffer(b *IndexBuffer) error {
	if d.closed {
		return ErrClosed
	}
	if b == nil {
		return ErrReleased
	}
	return b.handle.check(d.ctx)
}

func (d *Device) checkProgram(p *Program) error {
	if d.closed {
		return ErrClosed
	}
	if p == nil {
		return ErrReleased
	}
	return p.handle.check(d.ctx)
}

// CreateVertexBuffer allocates capacity floats of storage holding vertices
// of stride floats each.
func (d *Device) CreateVertexBuffer(capacity, stride int, usage Usage) (*VertexBuffer, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if capacity <= 0 || stride <= 0 {
		return nil, fmt.Errorf("device: invalid vertex buffer capacity %d / stride %d", capacity, stride)
	}
	api := d.ctx.api
	id := api.GenBuffer()
	if id == 0 {
		return nil, &ResourceError{Kind: kindVertexBuffer.String()}
	}
	b := &VertexBuffer{
		handle:   newHandle(d.ctx, kindVertexBuffer, id),
		capacity: capacity,
		stride:   stride,
		usage:    usage,
	}
	d.bindVertexBuffer(id)
	api.BufferData(ARRAY_BUFFER, capacity*4, nil, uint32(usage))
	logging.Debugf("created %s vertex buffer %d: %d floats, stride %d", usage, id, capacity, stride)
	return b, nil
}

// UploadVertexData copies floats into b starting at offset floats.
func (d *Device) UploadVertexData(b *VertexBuffer, floats []float32, offset int) error {
	if err := d.checkVertexBuffer(b); err != nil {
		return err
	}
	if !inRange(offset, len(floats), b.capacity) {
		return fmt.Errorf("upload of %d floats at %d into %d: %w", len(floats), offset, b.capacity, ErrOutOfRange)
	}
	if len(floats) == 0 {
		return nil
	}
	d.bindVertexBuffer(b.id)
	d.ctx.api.BufferSubData(ARRAY_BUFFER, offset*4, floatBytes(floats))
	return nil
}

// ReadVertexData reads count floats from b starting at offset floats.
func (d *Device) ReadVertexData(b *VertexBuffer, offset, count int) ([]float32, error) {
	if err := d.checkVertexBuffer(b); err != nil {
		return nil, err
	}
	if !inRange(offset, count, b.capacity) {
		return nil, fmt.Errorf("read of %d floats at %d from %d: %w", count, offset, b.capacity, ErrOutOfRange)
	}
	out := make([]float32, count)
	if count == 0 {
		return out, nil
	}
	d.bindVertexBuffer(b.id)
	d.ctx.api.GetBufferSubData(ARRAY_BUFFER, offset*4, floatBytes(out))
	return out, nil
}

// SetVertexAttribute declares attribute index as components floats at
// offset floats into each stride of b, and enables it. The layout lives on
// the device's single vertex array and applies to every later draw.
func (d *Device) SetVertexAttribute(b *VertexBuffer, index uint32, components, offset int) error {
	if err := d.checkVertexBuffer(b); err != nil {
		return err
	}
	if components < 1 || components > 4 {
		return fmt.Errorf("device: attribute component count %d not in 1..4", components)
	}
	if offset < 0 || offset+components > b.stride {
		return fmt.Errorf("attribute at %d with %d components in stride %d: %w", offset, components, b.stride, ErrOutOfRange)
	}
	api := d.ctx.api
	d.bindVertexArray()
	d.bindVertexBuffer(b.id)
	api.VertexAttribPointer(index, int32(components), FLOAT, false, int32(b.stride*4), offset*4)
	api.EnableVertexAttribArray(index)
	return nil
}

// CreateIndexBuffer allocates capacity uint32 indices of storage.
func (d *Device) CreateIndexBuffer(capacity int, usage Usage) (*IndexBuffer, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("device: invalid index buffer capacity %d", capacity)
	}
	api := d.ctx.api
	id := api.GenBuffer()
	if id == 0 {
		return nil, &ResourceError{Kind: kindIndexBuffer.String()}
	}
	b := &IndexBuffer{
		handle:   newHandle(d.ctx, kindIndexBuffer, id),
		capacity: capacity,
		usage:    usage,
	}
	d.bindIndexBuffer(id)
	api.BufferData(ELEMENT_ARRAY_BUFFER, capacity*4, nil, uint32(usage))
	logging.Debugf("created %s index buffer %d: %d indices", usage, id, capacity)
	return b, nil
}

// UploadIndexData copies indices into b starting at offset indices.
func (d *Device) UploadIndexData(b *IndexBuffer, indices []uint32, offset int) error {
	if err := d.checkIndexBuffer(b); err != nil {
		return err
	}
	if !inRange(offset, len(indices), b.capacity) {
		return fmt.Errorf("upload of %d indices at %d into %d: %w", len(indices), offset, b.capacity, ErrOutOfRange)
	}
	if len(indices) == 0 {
		return nil
	}
	d.bindIndexBuffer(b.id)
	d.ctx.api.BufferSubData(ELEMENT_ARRAY_BUFFER, offset*4, uint32Bytes(indices))
	return nil
}

// ReadIndexData reads count indices from b starting at offset.
func (d *Device) ReadIndexData(b *IndexBuffer, offset, count int) ([]uint32, error) {
	if err := d.checkIndexBuffer(b); err != nil {
		return nil, err
	}
	if !inRange(offset, count, b.capacity) {
		return nil, fmt.Errorf("read of %d indices at %d from %d: %w", count, offset, b.capacity, ErrOutOfRange)
	}
	out := make([]uint32, count)
	if count == 0 {
		return out, nil
	}
	d.bindIndexBuffer(b.id)
	d.ctx.api.GetBufferSubData(ELEMENT_ARRAY_BUFFER, offset*4, uint32Bytes(out))
	return out, nil
}

// CreateProgram compiles and links a vertex and a fragment shader. A
// failing stage yields a *CompileError, a failing link a *LinkError.
func (d *Device) CreateProgram(vertexSource, fragmentSource string) (*Program, error) {
	if d.closed {
		return nil, ErrClosed
	}
	id, err := linkProgram(d.ctx.api, vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	logging.Debugf("linked program %d", id)
	return &Program{handle: newHandle(d.ctx, kindProgram, id)}, nil
}

// BindVertexBuffer makes b the current ARRAY_BUFFER.
func (d *Device) BindVertexBuffer(b *VertexBuffer) error {
	if err := d.checkVertexBuffer(b); err != nil {
		return err
	}
	d.bindVertexBuffer(b.id)
	return nil
}

// BindIndexBuffer makes b the current ELEMENT_ARRAY_BUFFER of the device's
// vertex array.
func (d *Device) BindIndexBuffer(b *IndexBuffer) error {
	if err := d.checkIndexBuffer(b); err != nil {
		return err
	}
	d.bindIndexBuffer(b.id)
	return nil
}

// BindProgram makes p the current program.
func (d *Device) BindProgram(p *Program) error {
	if err := d.checkProgram(p); err != nil {
		return err
	}
	d.bindProgram(p.id)
	return nil
}

func (d *Device) bindVertexArray() {
	c := d.ctx
	if c.bound.vertexArray == c.vao {
		return
	}
	c.api.BindVertexArray(c.vao)
	c.bound.vertexArray = c.vao
}

func (d *Device) bindVertexBuffer(id uint32) {
	c := d.ctx
	if c.bound.vertexBuffer == id {
		return
	}
	c.api.BindBuffer(ARRAY_BUFFER, id)
	c.bound.vertexBuffer = id
}

// Element array bindings are vertex array state; the device's vertex array
// is bound first so the cached id always refers to it.
func (d *Device) bindIndexBuffer(id uint32) {
	d.bindVertexArray()
	c := d.ctx
	if c.bound.indexBuffer == id {
		return
	}
	c.api.BindBuffer(ELEMENT_ARRAY_BUFFER, id)
	c.bound.indexBuffer = id
}

func (d *Device) bindProgram(id uint32) {
	c := d.ctx
	if c.bound.program == id {
		return
	}
	c.api.UseProgram(id)
	c.bound.program = id
}

// Clear clears the colour buffer to the given colour.
func (d *Device) Clear(r, g, b, a float32) error {
	if d.closed {
		return ErrClosed
	}
	d.ctx.api.ClearColor(r, g, b, a)
	d.ctx.api.Clear(COLOR_BUFFER_BIT)
	return nil
}

// Viewport maps the drawable to width x height pixels.
func (d *Device) Viewport(width, height int) error {
	if d.closed {
		return ErrClosed
	}
	d.ctx.api.Viewport(0, 0, int32(width), int32(height))
	return nil
}

// Draw renders count vertices of vb as a triangle list with p, indexed
// through ib when it is non-nil.
func (d *Device) Draw(vb *VertexBuffer, ib *IndexBuffer, p *Program, count int) error {
	if err := d.checkVertexBuffer(vb); err != nil {
		return err
	}
	if ib != nil {
		if err := d.checkIndexBuffer(ib); err != nil {
			return err
		}
	}
	if err := d.checkProgram(p); err != nil {
		return err
	}

	limit := vb.Vertices()
	if ib != nil {
		limit = ib.capacity
	}
	if count <= 0 || count > limit {
		return fmt.Errorf("draw of %d elements with %d available: %w", count, limit, ErrOutOfRange)
	}

	d.bindVertexArray()
	d.bindVertexBuffer(vb.id)
	if ib != nil {
		d.bindIndexBuffer(ib.id)
	}
	d.bindProgram(p.id)

	if ib != nil {
		d.ctx.api.DrawElements(TRIANGLES, int32(count), UNSIGNED_INT, 0)
	} else {
		d.ctx.api.DrawArrays(TRIANGLES, 0, int32(count))
	}
	return nil
}

// ReadPixels returns the RGBA8 contents of the lower-left width x height
// region of the current framebuffer, bottom row first.
func (d *Device) ReadPixels(width, height int) ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("device: invalid read size %dx%d", width, height)
	}
	pixels := make([]byte, width*height*4)
	d.ctx.api.ReadPixels(0, 0, int32(width), int32(height), RGBA, UNSIGNED_BYTE, pixels)
	return pixels, nil
}
