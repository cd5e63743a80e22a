package glfwcontext

import (
	"fmt"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/richinsley/ckrl/device"
	"github.com/richinsley/ckrl/device/glapi"
	"github.com/richinsley/ckrl/graphics"
	"github.com/richinsley/ckrl/logging"
	"github.com/richinsley/ckrl/options"
)

// InitError reports which bootstrap stage failed.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *InitError) Cause() error { return e.Err }

func (e *InitError) Unwrap() error { return e.Err }

// Context owns a GLFW window, its GL context and the events it produced.
type Context struct {
	window *glfw.Window
	api    device.API
	queue  graphics.EventQueue
}

var _ graphics.Context = (*Context)(nil)

// New creates a window as described by opts, makes its context current on
// the calling thread and loads the GL entry points.
func New(opts *options.Options) (*Context, error) {
	requests, err := versionRequests(opts.Context)
	if err != nil {
		return nil, &InitError{Stage: "context version", Err: err}
	}

	var monitor *glfw.Monitor
	width, height := opts.Window.Width, opts.Window.Height
	if opts.Window.Fullscreen {
		monitors := glfw.GetMonitors()
		if len(monitors) == 0 {
			return nil, &InitError{Stage: "fullscreen", Err: errors.New("no monitor available")}
		}
		monitor = monitors[0]
		if mode := monitor.GetVideoMode(); mode != nil {
			width, height = mode.Width, mode.Height
		}
	}

	win, err := createWindow(requests, func(req versionRequest) (*glfw.Window, error) {
		applyHints(opts, req)
		return glfw.CreateWindow(width, height, opts.Window.Title, monitor, nil)
	})
	if err != nil {
		return nil, &InitError{Stage: "create window", Err: errors.Wrapf(err, "%dx%d", width, height)}
	}

	win.MakeContextCurrent()
	if opts.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	api, err := glapi.Load()
	if err != nil {
		win.Destroy()
		return nil, &InitError{Stage: "load gl", Err: err}
	}

	c := &Context{window: win, api: api}
	win.SetCloseCallback(func(*glfw.Window) {
		c.queue.Push(graphics.Event{Kind: graphics.Close})
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		c.queue.Push(graphics.Event{Kind: graphics.Resize, Width: w, Height: h})
	})
	win.SetRefreshCallback(func(*glfw.Window) {
		c.queue.Push(graphics.Event{Kind: graphics.Redraw})
	})

	fbw, fbh := win.GetFramebufferSize()
	c.queue.Push(graphics.Event{Kind: graphics.Resize, Width: fbw, Height: fbh})
	c.queue.Push(graphics.Event{Kind: graphics.Redraw})

	logging.Infof("window %q %dx%d (framebuffer %dx%d)", opts.Window.Title, width, height, fbw, fbh)
	return c, nil
}

type versionRequest struct {
	major, minor int
}

func (r versionRequest) String() string {
	return fmt.Sprintf("%d.%d", r.major, r.minor)
}

// latestVersions is tried in order when no exact version is requested.
var latestVersions = []versionRequest{
	{4, 6}, {4, 5}, {4, 4}, {4, 3}, {4, 2}, {4, 1}, {4, 0}, {3, 3},
}

func versionRequests(c options.ContextOptions) ([]versionRequest, error) {
	major, minor, err := c.ParseVersion()
	if err != nil {
		return nil, err
	}
	if major == 0 {
		return latestVersions, nil
	}
	return []versionRequest{{major, minor}}, nil
}

// createWindow tries each request in order and returns the first window
// created. A nil window counts as a failure even when no error came back.
func createWindow(requests []versionRequest, create func(versionRequest) (*glfw.Window, error)) (*glfw.Window, error) {
	err := errors.New("no context version requested")
	for _, req := range requests {
		win, cerr := create(req)
		if win != nil {
			return win, nil
		}
		if cerr == nil {
			cerr = errors.Errorf("glfw returned no window for %s", req)
		}
		logging.Debugf("no %s context: %v", req, cerr)
		err = cerr
	}
	return nil, err
}

func applyHints(opts *options.Options, req versionRequest) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, req.major)
	glfw.WindowHint(glfw.ContextVersionMinor, req.minor)

	if opts.Context.Profile == options.ProfileCompatibility {
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCompatProfile)
	} else {
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}

	if opts.Context.HardwareAcceleration == options.AccelOff {
		glfw.WindowHint(glfw.ContextCreationAPI, glfw.OSMesaContextAPI)
	} else {
		glfw.WindowHint(glfw.ContextCreationAPI, glfw.NativeContextAPI)
	}

	if opts.Context.SRGB {
		glfw.WindowHint(glfw.SRGBCapable, glfw.True)
	}
	glfw.WindowHint(glfw.Resizable, glfw.True)
}

// API returns the GL function table loaded for this context.
func (c *Context) API() device.API {
	return c.api
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

// WaitEvent returns the oldest queued event, sleeping in glfw.WaitEvents
// while there is none.
func (c *Context) WaitEvent() graphics.Event {
	for {
		if e, ok := c.queue.Pop(); ok {
			return e
		}
		glfw.WaitEvents()
	}
}

// RequestRedraw queues a Redraw and wakes a pending WaitEvent.
func (c *Context) RequestRedraw() {
	c.queue.Push(graphics.Event{Kind: graphics.Redraw})
	glfw.PostEmptyEvent()
}

func (c *Context) SwapBuffers() {
	c.window.SwapBuffers()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// Window returns the underlying *glfw.Window.
func (c *Context) Window() *glfw.Window {
	return c.window
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return &InitError{Stage: "glfw init", Err: errors.WithStack(err)}
	}
	logging.Infof("GLFW %s initialized", glfw.GetVersionString())
	return nil
}

// TerminateGraphics shuts down GLFW. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	logging.Infof("GLFW terminated")
}
