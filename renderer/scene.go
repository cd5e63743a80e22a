package renderer

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/ckrl/device"
	"github.com/richinsley/ckrl/logging"
)

// Scene is one canonical example: a clear colour and at most one mesh drawn
// with a single program.
type Scene struct {
	Name     string
	Clear    mgl32.Vec4
	Vertices []mgl32.Vec3
	// Indices switches the draw to an indexed one when non-empty.
	Indices []uint32

	vb   *device.VertexBuffer
	ib   *device.IndexBuffer
	prog *device.Program
}

var background = mgl32.Vec4{0.2, 0.3, 0.3, 1.0}

// WindowScene only clears the window.
func WindowScene() *Scene {
	return &Scene{Name: "window", Clear: mgl32.Vec4{1.0, 0.5, 0.7, 1.0}}
}

// TriangleScene draws a static triangle without indices.
func TriangleScene() *Scene {
	return &Scene{
		Name:  "triangle",
		Clear: background,
		Vertices: []mgl32.Vec3{
			{-0.5, -0.5, 0.0},
			{0.5, -0.5, 0.0},
			{0.0, 0.5, 0.0},
		},
	}
}

// QuadScene draws a rectangle from four vertices and six indices.
func QuadScene() *Scene {
	return &Scene{
		Name:  "quad",
		Clear: background,
		Vertices: []mgl32.Vec3{
			{0.5, 0.5, 0.0},
			{0.5, -0.5, 0.0},
			{-0.5, -0.5, 0.0},
			{-0.5, 0.5, 0.0},
		},
		Indices: []uint32{
			0, 1, 3,
			1, 2, 3,
		},
	}
}

var scenes = map[string]func() *Scene{
	"window":   WindowScene,
	"triangle": TriangleScene,
	"quad":     QuadScene,
}

// Lookup returns a fresh scene by name.
func Lookup(name string) (*Scene, error) {
	if fn, ok := scenes[name]; ok {
		return fn(), nil
	}
	return nil, fmt.Errorf("unknown scene %q (have %v)", name, SceneNames())
}

// SceneNames lists the available scenes.
func SceneNames() []string {
	names := make([]string, 0, len(scenes))
	for name := range scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func flatten(vertices []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		out = append(out, v[:]...)
	}
	return out
}

// Setup uploads the mesh and links the program. Scenes without vertices
// create nothing.
func (s *Scene) Setup(d *device.Device, vertexSource, fragmentSource string) error {
	if len(s.Vertices) == 0 {
		return nil
	}

	floats := flatten(s.Vertices)
	vb, err := d.CreateVertexBuffer(len(floats), 3, device.Static)
	if err != nil {
		return fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	s.vb = vb
	if err := d.UploadVertexData(vb, floats, 0); err != nil {
		s.Release()
		return err
	}
	if err := d.SetVertexAttribute(vb, 0, 3, 0); err != nil {
		s.Release()
		return err
	}

	if len(s.Indices) > 0 {
		ib, err := d.CreateIndexBuffer(len(s.Indices), device.Static)
		if err != nil {
			s.Release()
			return fmt.Errorf("failed to create index buffer: %w", err)
		}
		s.ib = ib
		if err := d.UploadIndexData(ib, s.Indices, 0); err != nil {
			s.Release()
			return err
		}
	}

	prog, err := d.CreateProgram(vertexSource, fragmentSource)
	if err != nil {
		s.Release()
		return fmt.Errorf("failed to create shader program: %w", err)
	}
	s.prog = prog

	logging.Debugf("scene %s: %d vertices, %d indices", s.Name, len(s.Vertices), len(s.Indices))
	return nil
}

// Render clears and issues the scene's single draw.
func (s *Scene) Render(d *device.Device) error {
	if err := d.Clear(s.Clear[0], s.Clear[1], s.Clear[2], s.Clear[3]); err != nil {
		return err
	}
	if s.vb == nil {
		return nil
	}
	count := len(s.Vertices)
	if s.ib != nil {
		count = len(s.Indices)
	}
	return d.Draw(s.vb, s.ib, s.prog, count)
}

// Release frees whatever Setup created.
func (s *Scene) Release() {
	if s == nil {
		return
	}
	logging.Debugf("releasing scene: %s", s.Name)
	if s.prog != nil {
		s.prog.Release()
		s.prog = nil
	}
	if s.ib != nil {
		s.ib.Release()
		s.ib = nil
	}
	if s.vb != nil {
		s.vb.Release()
		s.vb = nil
	}
}
