// Package capture pipes rendered frames to an ffmpeg process.
package capture

import (
	"fmt"
	"io"
	"runtime"

	"github.com/richinsley/ckrl/logging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Config describes the video being recorded.
type Config struct {
	Output     string
	Width      int
	Height     int
	FPS        int
	FFmpegPath string
}

// FrameSize is the number of bytes in one RGBA8 frame.
func (c Config) FrameSize() int {
	return c.Width * c.Height * 4
}

// numBuffers is how many frames may wait for the encoder.
const numBuffers = 3

// Recorder feeds bottom-up RGBA frames to ffmpeg through a pipe. Write is
// called from the render thread; the pipe is drained by a writer goroutine.
type Recorder struct {
	cfg      Config
	frames   chan []byte
	writeErr chan error
	runErr   chan error
	pipe     *io.PipeWriter
	written  int64
	closed   bool
}

// NewRecorder starts ffmpeg and returns a Recorder ready for frames.
func NewRecorder(cfg Config) (*Recorder, error) {
	return newRecorder(cfg, func(r io.Reader) error {
		return command(cfg, r).Run()
	})
}

func newRecorder(cfg Config, run func(io.Reader) error) (*Recorder, error) {
	if cfg.Output == "" {
		return nil, fmt.Errorf("capture: no output file")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, fmt.Errorf("capture: invalid %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}

	pr, pw := io.Pipe()
	rec := &Recorder{
		cfg:      cfg,
		frames:   make(chan []byte, numBuffers),
		writeErr: make(chan error, 1),
		runErr:   make(chan error, 1),
		pipe:     pw,
	}

	go func() {
		err := run(pr)
		// unblock the writer if ffmpeg went away early
		pr.CloseWithError(io.ErrClosedPipe)
		rec.runErr <- err
	}()
	go rec.writeFrames()

	logging.Infof("recording %dx%d@%d to %s", cfg.Width, cfg.Height, cfg.FPS, cfg.Output)
	return rec, nil
}

func (r *Recorder) writeFrames() {
	var err error
	for frame := range r.frames {
		if err != nil {
			continue
		}
		if _, err = r.pipe.Write(frame); err != nil {
			logging.Errorf("writing frame to ffmpeg: %v", err)
		}
	}
	r.pipe.Close()
	r.writeErr <- err
}

// Write queues one frame. pixels must hold exactly Width*Height RGBA8
// pixels, bottom row first, as returned by a GL read-back.
func (r *Recorder) Write(pixels []byte) error {
	if r.closed {
		return fmt.Errorf("capture: recorder closed")
	}
	if len(pixels) != r.cfg.FrameSize() {
		return fmt.Errorf("capture: frame is %d bytes, want %d", len(pixels), r.cfg.FrameSize())
	}
	r.frames <- pixels
	r.written++
	return nil
}

// Frames returns the number of frames queued so far.
func (r *Recorder) Frames() int64 {
	return r.written
}

// Close flushes the queued frames and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	close(r.frames)
	werr := <-r.writeErr
	rerr := <-r.runErr
	if rerr != nil {
		return fmt.Errorf("ffmpeg: %w", rerr)
	}
	if werr != nil {
		return fmt.Errorf("capture: %w", werr)
	}
	logging.Infof("recorded %d frames to %s", r.written, r.cfg.Output)
	return nil
}

func getArgs(cfg Config) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"r":       cfg.FPS,
	}

	// GL rows come bottom-up
	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}
	switch runtime.GOOS {
	case "darwin":
		outputArgs["c:v"] = "h264_videotoolbox"
	default:
		outputArgs["c:v"] = "libx264"
	}
	return
}

func command(cfg Config, r io.Reader) *ffmpeg.Stream {
	inputArgs, outputArgs := getArgs(cfg)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.Output, outputArgs).
		OverWriteOutput().WithInput(r).ErrorToStdOut()
	if cfg.FFmpegPath != "" {
		cmd = cmd.SetFfmpegPath(cfg.FFmpegPath)
	}
	return cmd
}
