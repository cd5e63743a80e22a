package device

import (
	"strings"

	"github.com/richinsley/ckrl/logging"
)

// Program is a linked vertex + fragment shader pair.
type Program struct {
	*handle
}

// Equal reports whether both handles name the same program.
func (p *Program) Equal(o *Program) bool {
	if p == nil || o == nil || p.handle == nil || o.handle == nil {
		return false
	}
	return p.ctx == o.ctx && p.id == o.id
}

func compileShader(api API, source string, stage Stage) (uint32, error) {
	shader := api.CreateShader(uint32(stage))
	if shader == 0 {
		return 0, &ResourceError{Kind: stage.String() + " shader"}
	}
	api.ShaderSource(shader, source)
	api.CompileShader(shader)

	if api.GetShaderiv(shader, COMPILE_STATUS) == FALSE {
		log := strings.TrimRight(api.GetShaderInfoLog(shader), "\x00\n ")
		api.DeleteShader(shader)
		logging.Errorf("failed to compile %s shader", stage)
		return 0, &CompileError{Stage: stage, Log: log}
	}
	return shader, nil
}

func linkProgram(api API, vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(api, vertexSource, VertexStage)
	if err != nil {
		return 0, err
	}
	defer api.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(api, fragmentSource, FragmentStage)
	if err != nil {
		return 0, err
	}
	defer api.DeleteShader(fragmentShader)

	program := api.CreateProgram()
	if program == 0 {
		return 0, &ResourceError{Kind: "program"}
	}
	api.AttachShader(program, vertexShader)
	api.AttachShader(program, fragmentShader)
	api.LinkProgram(program)

	if api.GetProgramiv(program, LINK_STATUS) == FALSE {
		log := strings.TrimRight(api.GetProgramInfoLog(program), "\x00\n ")
		api.DeleteProgram(program)
		logging.Errorf("failed to link program")
		return 0, &LinkError{Log: log}
	}
	return program, nil
}
