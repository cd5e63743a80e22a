package main

import (
	"github.com/richinsley/ckrl/capture"
	"github.com/richinsley/ckrl/device"
	"github.com/richinsley/ckrl/glfwcontext"
	"github.com/richinsley/ckrl/headless"
	"github.com/richinsley/ckrl/logging"
	"github.com/richinsley/ckrl/options"
	"github.com/richinsley/ckrl/renderer"
	"github.com/richinsley/ckrl/shader"
)

func openSurface(opts *options.Options) (headless.Surface, func(), error) {
	if opts.Capture.Headless {
		s, err := headless.New(opts.Window.Width, opts.Window.Height)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Shutdown, nil
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	c, err := glfwcontext.New(opts)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, err
	}
	return c, func() {
		c.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

func runScene(name string, opts *options.Options) error {
	scene, err := renderer.Lookup(name)
	if err != nil {
		return err
	}

	surface, shutdown, err := openSurface(opts)
	if err != nil {
		return err
	}
	defer shutdown()

	dev, err := device.New(surface.API(), device.WithSRGB(opts.Context.SRGB))
	if err != nil {
		return err
	}
	defer dev.Close()

	info := dev.Info()
	logging.Infof("OpenGL %s (%s, %s), GLSL %s", info.Version, info.Vendor, info.Renderer, info.GLSL)

	vs, fs := shader.Sources(opts.Shader.Dialect)
	vs, fs, err = shader.Prepare(opts.Shader.Dialect, vs, fs)
	if err != nil {
		return err
	}
	if err := scene.Setup(dev, vs, fs); err != nil {
		return err
	}
	defer scene.Release()

	var ropts []renderer.Option
	if opts.Capture.Frames > 0 {
		ropts = append(ropts, renderer.WithFrameLimit(opts.Capture.Frames))
	}
	if opts.Capture.Output != "" {
		w, h := surface.GetFramebufferSize()
		rec, err := capture.NewRecorder(capture.Config{
			Output:     opts.Capture.Output,
			Width:      w,
			Height:     h,
			FPS:        opts.Capture.FPS,
			FFmpegPath: opts.Capture.FFmpegPath,
		})
		if err != nil {
			return err
		}
		ropts = append(ropts, renderer.WithRecorder(rec, w, h))
	}

	r := renderer.NewRenderer(surface, dev, ropts...)
	runErr := r.Run(scene)
	if err := r.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
