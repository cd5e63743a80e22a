package shader

import (
	"fmt"

	"github.com/richinsley/ckrl/options"
	xlate "github.com/richinsley/ckrl/translator"
)

// ────────────────────────────────── Desktop GL ──────────────────────────────────

// VertexShaderGL passes a vec3 position at location 0 straight through.
const VertexShaderGL = `#version 330 core
layout (location = 0) in vec3 aPos;

void main()
{
    gl_Position = vec4(aPos.x, aPos.y, aPos.z, 1.0);
}
`

// FragmentShaderGL writes a constant orange.
const FragmentShaderGL = `#version 330 core
out vec4 FragColor;

void main()
{
    FragColor = vec4(1.0, 0.5, 0.2, 1.0);
}
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const VertexShaderGLES = `#version 300 es
layout (location = 0) in vec3 aPos;

void main()
{
    gl_Position = vec4(aPos.x, aPos.y, aPos.z, 1.0);
}
`

const FragmentShaderGLES = `#version 300 es
precision mediump float;
out vec4 FragColor;

void main()
{
    FragColor = vec4(1.0, 0.5, 0.2, 1.0);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// Sources returns the built-in vertex and fragment sources for dialect.
func Sources(dialect string) (vertex, fragment string) {
	if dialect == options.DialectESSL {
		return VertexShaderGLES, FragmentShaderGLES
	}
	return VertexShaderGL, FragmentShaderGL
}

// translate is swapped out in tests.
var translate = xlate.ToGLSL410

// Prepare returns sources ready for the desktop GL compiler. GLSL is passed
// through; ESSL is translated to GLSL 4.10.
func Prepare(dialect, vertex, fragment string) (string, string, error) {
	switch dialect {
	case options.DialectGLSL:
		return vertex, fragment, nil
	case options.DialectESSL:
		vs, err := translate(vertex, "vertex")
		if err != nil {
			return "", "", err
		}
		fs, err := translate(fragment, "fragment")
		if err != nil {
			return "", "", err
		}
		return vs, fs, nil
	}
	return "", "", fmt.Errorf("unknown shader dialect %q", dialect)
}
