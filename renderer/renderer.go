package renderer

import (
	"fmt"

	"github.com/richinsley/ckrl/device"
	"github.com/richinsley/ckrl/graphics"
	"github.com/richinsley/ckrl/logging"
)

// FrameSink receives captured frames, bottom row first.
type FrameSink interface {
	Write(pixels []byte) error
	Close() error
}

// Renderer drives a Scene from the events of a graphics.Context.
type Renderer struct {
	context graphics.Context
	device  *device.Device

	sink          FrameSink
	captureWidth  int
	captureHeight int
	maxFrames     int
	frames        int
}

type Option func(*Renderer)

// WithRecorder captures every presented frame at width x height into sink.
func WithRecorder(sink FrameSink, width, height int) Option {
	return func(r *Renderer) {
		r.sink = sink
		r.captureWidth = width
		r.captureHeight = height
	}
}

// WithFrameLimit stops Run after n presented frames. Zero means no limit.
func WithFrameLimit(n int) Option {
	return func(r *Renderer) { r.maxFrames = n }
}

func NewRenderer(ctx graphics.Context, d *device.Device, opts ...Option) *Renderer {
	r := &Renderer{context: ctx, device: d}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Frames returns how many frames have been presented.
func (r *Renderer) Frames() int {
	return r.frames
}

// continuous renderers request the next frame themselves instead of waiting
// for the window system.
func (r *Renderer) continuous() bool {
	return r.sink != nil || r.maxFrames > 0
}

// Run makes the context current on the calling thread, then renders scene
// until the window closes or the frame limit is reached. Every event
// triggers a clear and a draw; only Redraw presents.
func (r *Renderer) Run(scene *Scene) error {
	logging.Infof("running scene %s", scene.Name)
	r.context.MakeCurrent()
	for !r.context.ShouldClose() {
		ev := r.context.WaitEvent()

		r.device.Collect()
		if err := scene.Render(r.device); err != nil {
			return fmt.Errorf("rendering %s: %w", scene.Name, err)
		}

		switch ev.Kind {
		case graphics.Close:
			logging.Infof("close requested after %d frames", r.frames)
			return nil
		case graphics.Resize:
			logging.Debugf("resize to %dx%d", ev.Width, ev.Height)
			if err := r.device.Viewport(ev.Width, ev.Height); err != nil {
				return err
			}
		case graphics.Redraw:
			if err := r.present(); err != nil {
				return err
			}
			if r.maxFrames > 0 && r.frames >= r.maxFrames {
				logging.Infof("frame limit %d reached", r.maxFrames)
				return nil
			}
			if r.continuous() {
				r.context.RequestRedraw()
			}
		}
	}
	return nil
}

// present reads the frame back for the sink before the swap leaves the
// back buffer undefined.
func (r *Renderer) present() error {
	if r.sink != nil {
		pixels, err := r.device.ReadPixels(r.captureWidth, r.captureHeight)
		if err != nil {
			return err
		}
		if err := r.sink.Write(pixels); err != nil {
			return fmt.Errorf("capturing frame %d: %w", r.frames, err)
		}
	}
	r.context.SwapBuffers()
	r.frames++
	return nil
}

// Shutdown closes the sink, if any.
func (r *Renderer) Shutdown() error {
	if r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
