package renderer

import (
	"errors"
	"testing"

	"github.com/richinsley/ckrl/device"
	"github.com/richinsley/ckrl/graphics"
	"github.com/richinsley/ckrl/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupScene(t *testing.T, name string) (*Scene, *device.Device, *countingAPI) {
	t.Helper()
	api := newCountingAPI()
	d, err := device.New(api)
	require.NoError(t, err)

	scene, err := Lookup(name)
	require.NoError(t, err)
	require.NoError(t, scene.Setup(d, shader.VertexShaderGL, shader.FragmentShaderGL))
	return scene, d, api
}

func TestRunTriangle(t *testing.T) {
	scene, d, api := setupScene(t, "triangle")
	ctx := newScriptedContext(
		graphics.Event{Kind: graphics.Resize, Width: 640, Height: 480},
		graphics.Event{Kind: graphics.Redraw},
		graphics.Event{Kind: graphics.Redraw},
		graphics.Event{Kind: graphics.Close},
	)

	r := NewRenderer(ctx, d)
	require.NoError(t, r.Run(scene))

	assert.Equal(t, 1, ctx.current, "context made current once before the loop")
	assert.Equal(t, 2, ctx.swaps)
	assert.Equal(t, 2, r.Frames())
	assert.Zero(t, ctx.requests)
	// every event clears and draws, close included
	assert.Equal(t, 4, api.calls["DrawArrays"])
	assert.Zero(t, api.calls["DrawElements"])
	assert.Len(t, api.clears, 4)
	assert.Equal(t, [4]float32{0.2, 0.3, 0.3, 1.0}, api.clears[0])
	assert.Equal(t, [][2]int32{{640, 480}}, api.views)
	// the single program and buffer stay bound across frames
	assert.Equal(t, 1, api.calls["UseProgram"])
}

func TestRunQuadIsIndexed(t *testing.T) {
	scene, d, api := setupScene(t, "quad")
	ctx := newScriptedContext(graphics.Event{Kind: graphics.Redraw})

	require.NoError(t, NewRenderer(ctx, d).Run(scene))

	assert.Equal(t, 2, api.calls["DrawElements"])
	assert.Zero(t, api.calls["DrawArrays"])
	assert.Equal(t, 1, ctx.swaps)
}

func TestRunWindowOnlyClears(t *testing.T) {
	scene, d, api := setupScene(t, "window")
	ctx := newScriptedContext(graphics.Event{Kind: graphics.Redraw})

	require.NoError(t, NewRenderer(ctx, d).Run(scene))

	assert.Zero(t, api.calls["GenBuffer"])
	assert.Zero(t, api.calls["CreateProgram"])
	assert.Zero(t, api.calls["DrawArrays"]+api.calls["DrawElements"])
	require.NotEmpty(t, api.clears)
	assert.Equal(t, [4]float32{1.0, 0.5, 0.7, 1.0}, api.clears[0])
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	scene, d, _ := setupScene(t, "triangle")
	ctx := newScriptedContext(graphics.Event{Kind: graphics.Redraw})

	r := NewRenderer(ctx, d, WithFrameLimit(3))
	require.NoError(t, r.Run(scene))

	assert.Equal(t, 3, r.Frames())
	assert.Equal(t, 3, ctx.swaps)
	assert.Equal(t, 2, ctx.requests)
}

func TestRunStopsWhenContextCloses(t *testing.T) {
	scene, d, api := setupScene(t, "triangle")
	ctx := newScriptedContext(graphics.Event{Kind: graphics.Redraw})
	ctx.closed = true

	require.NoError(t, NewRenderer(ctx, d).Run(scene))
	assert.Zero(t, api.calls["DrawArrays"])
}

func TestRunCapturesBeforeSwap(t *testing.T) {
	scene, d, api := setupScene(t, "quad")
	ctx := newScriptedContext(graphics.Event{Kind: graphics.Resize, Width: 4, Height: 2})
	sink := &memorySink{}

	r := NewRenderer(ctx, d, WithRecorder(sink, 4, 2), WithFrameLimit(2))
	// a recording renderer asks for frames itself
	ctx.RequestRedraw()
	require.NoError(t, r.Run(scene))
	require.NoError(t, r.Shutdown())

	require.Len(t, sink.frames, 2)
	assert.Len(t, sink.frames[0], 4*2*4)
	assert.Equal(t, 2, api.reads)
	assert.Equal(t, 2, ctx.swaps)
	assert.True(t, sink.closed)
}

func TestRunPropagatesSinkError(t *testing.T) {
	scene, d, _ := setupScene(t, "triangle")
	ctx := newScriptedContext(graphics.Event{Kind: graphics.Redraw})
	boom := errors.New("pipe closed")

	r := NewRenderer(ctx, d, WithRecorder(&memorySink{err: boom}, 4, 2))
	err := r.Run(scene)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, ctx.swaps)
}

func TestRunPropagatesDeviceError(t *testing.T) {
	scene, d, _ := setupScene(t, "triangle")
	d.Close()

	err := NewRenderer(newScriptedContext(), d).Run(scene)
	assert.ErrorIs(t, err, device.ErrClosed)
}

func TestSetupReleasesOnCompileError(t *testing.T) {
	api := newCountingAPI()
	d, err := device.New(api)
	require.NoError(t, err)

	scene := QuadScene()
	err = scene.Setup(d, "#version 330 core\n#error\n", shader.FragmentShaderGL)
	var cerr *device.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, device.VertexStage, cerr.Stage)

	assert.Equal(t, 2, api.calls["GenBuffer"])
	assert.Equal(t, 2, api.calls["DeleteBuffer"])
	assert.Nil(t, scene.vb)
	assert.Nil(t, scene.ib)
}

func TestSceneReleaseLetsDeviceTearDown(t *testing.T) {
	scene, d, api := setupScene(t, "quad")

	d.Close()
	assert.Zero(t, api.calls["DeleteVertexArray"])

	scene.Release()
	scene.Release()
	assert.Equal(t, 2, api.calls["DeleteBuffer"])
	assert.Equal(t, 1, api.calls["DeleteProgram"])
	assert.Equal(t, 1, api.calls["DeleteVertexArray"])
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"quad", "triangle", "window"}, SceneNames())

	s, err := Lookup("quad")
	require.NoError(t, err)
	assert.Len(t, s.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 3, 1, 2, 3}, s.Indices)

	_, err = Lookup("cube")
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, []float32{-0.5, -0.5, 0, 0.5, -0.5, 0, 0, 0.5, 0}, flatten(TriangleScene().Vertices))
}
